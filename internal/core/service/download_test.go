package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rentora/access-layer/internal/core/domain"
)

func TestDownload_ReturnsExactBytes(t *testing.T) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	var accept string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export-product" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(payload)
	}))
	h.mustSet(t, domain.RoleStaff, "staff-token")

	data, err := h.client.As(domain.RoleStaff).Download(context.Background(), "/export-product")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("got %d bytes, want the %d served", len(data), len(payload))
	}
	if accept != "application/octet-stream" {
		t.Fatalf("Accept = %q", accept)
	}
}

func TestDownload_FailuresCollapseToGenericMessage(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		h := newHarness(t, jsonHandler(status, `{"message":"detail that must not leak"}`))
		h.mustSet(t, domain.RoleStaff, "staff-token")
		h.mustSet(t, domain.RoleEndUser, "user-token")

		_, err := h.client.Download(context.Background(), domain.RoleStaff, "/export-product")

		f := asFailure(t, err)
		if f.Kind != domain.KindTransfer || f.Message != "File download failed" || f.Status != 0 {
			t.Fatalf("status %d: unexpected failure %+v", status, f)
		}
		if err.Error() != domain.DownloadFailedMessage {
			t.Fatalf("status %d: message = %q", status, err.Error())
		}
		if !errors.Is(err, domain.ErrTransfer) || errors.Is(err, domain.ErrAuth) {
			t.Fatalf("status %d: misclassified transfer failure", status)
		}
		if tok, _ := h.store.Get(domain.RoleEndUser); tok != "user-token" {
			t.Fatalf("status %d: end user slot must be untouched", status)
		}

		if domain.IsAuthStatus(status) {
			if _, err := h.store.Get(domain.RoleStaff); !errors.Is(err, domain.ErrNoCredential) {
				t.Fatalf("status %d: staff slot should be cleared, got %v", status, err)
			}
			if len(h.sched.Tasks()) != 1 {
				t.Fatalf("status %d: expected one redirect, got %d", status, len(h.sched.Tasks()))
			}
			continue
		}
		if tok, _ := h.store.Get(domain.RoleStaff); tok != "staff-token" {
			t.Fatalf("status %d: staff slot must survive a non-auth failure", status)
		}
		if len(h.sched.Tasks()) != 0 {
			t.Fatalf("status %d: non-auth failure must not schedule redirects", status)
		}
	}
}

func TestDownload_ExpiredTokenRedirectsToLogin(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusUnauthorized, `{"message":"Invalid or expired token"}`))
	h.mustSet(t, domain.RoleStaff, "expired-staff-token")

	_, err := h.client.As(domain.RoleStaff).Download(context.Background(), "/export-product")
	if err == nil || err.Error() != domain.DownloadFailedMessage {
		t.Fatalf("expected generic download failure, got %v", err)
	}
	if h.policy.State(domain.RoleStaff) != StateUnauthenticated {
		t.Fatalf("rejected token should be cleared")
	}

	h.sched.RunAll()
	redirects := h.nav.Redirects()
	if len(redirects) != 1 || redirects[0].Role != domain.RoleStaff || redirects[0].Target != "/admin/login" {
		t.Fatalf("unexpected redirects %+v", redirects)
	}
}

func TestDownload_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	h := newHarnessFor(t, url, http.DefaultClient)

	_, err := h.client.Download(context.Background(), domain.RoleStaff, "/export-product")
	if err == nil || err.Error() != domain.DownloadFailedMessage {
		t.Fatalf("expected generic download failure, got %v", err)
	}
}
