package navigation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rentora/access-layer/internal/core/domain"
)

func TestTerminal_Redirect(t *testing.T) {
	var out bytes.Buffer
	nav := NewTerminal(&out, zerolog.Nop())

	nav.Redirect(domain.RoleStaff, "/admin/login")

	if !strings.Contains(out.String(), "/admin/login") || !strings.HasPrefix(out.String(), "staff") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRecorder_KeepsOrder(t *testing.T) {
	var r Recorder
	r.Redirect(domain.RoleEndUser, "/login")
	r.Redirect(domain.RoleStaff, "/admin/login")

	got := r.Redirects()
	if len(got) != 2 || got[0].Role != domain.RoleEndUser || got[1].Target != "/admin/login" {
		t.Fatalf("unexpected redirects %+v", got)
	}

	got[0].Target = "mutated"
	if r.Redirects()[0].Target != "/login" {
		t.Fatalf("Redirects must return a copy")
	}
}
