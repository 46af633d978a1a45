package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rentora/access-layer/internal/core/domain"
)

type order struct {
	ID       string `json:"id"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

func TestAPIClient_RoleScopeCRUD(t *testing.T) {
	h, _ := newBackendHarness(t)
	sessions := NewSessionService(h.client, h.store, testLoginEndpoints, h.dispatch.log)
	if _, err := sessions.SignIn(context.Background(), domain.RoleEndUser, domain.SignInInput{Email: "user@example.com", Password: "user-pass"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	user := h.client.As(domain.RoleEndUser)
	ctx := context.Background()

	raw, err := user.Create(ctx, "/orders", domain.JSON(order{Product: "lamp", Quantity: 1}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created, err := Decode[order](raw)
	if err != nil || created.ID == "" {
		t.Fatalf("decode created: %+v %v", created, err)
	}

	raw, err = user.Replace(ctx, "/orders/"+created.ID, domain.JSON(order{Product: "lamp", Quantity: 5}))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced, _ := Decode[order](raw); replaced.Quantity != 5 {
		t.Fatalf("replace not applied: %+v", replaced)
	}

	list, err := user.Get(ctx, "/orders")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	items, _ := Decode[struct{ Items []order }](list)
	if len(items.Items) != 1 {
		t.Fatalf("expected one order, got %+v", items)
	}

	raw, err = user.Delete(ctx, "/orders/"+created.ID)
	if err != nil || len(raw) != 0 {
		t.Fatalf("delete: %q %v", raw, err)
	}
	if _, err := Decode[order](raw); err != nil {
		t.Fatalf("decode of empty body should be a no-op: %v", err)
	}

	if user.Role() != domain.RoleEndUser {
		t.Fatalf("scope lost its role")
	}
}

func TestAPIClient_EndUserForbiddenOnStaffRoute(t *testing.T) {
	h, _ := newBackendHarness(t)
	sessions := NewSessionService(h.client, h.store, testLoginEndpoints, h.dispatch.log)
	if _, err := sessions.SignIn(context.Background(), domain.RoleEndUser, domain.SignInInput{Email: "user@example.com", Password: "user-pass"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	_, err := h.client.Get(context.Background(), domain.RoleEndUser, "/reports")
	var f *domain.Failure
	if !errors.As(err, &f) || f.Status != 403 || f.Role != domain.RoleEndUser {
		t.Fatalf("expected 403 auth failure for end user, got %v", err)
	}
	h.sched.RunAll()
	if r := h.nav.Redirects(); len(r) != 1 || r[0].Target != "/login" {
		t.Fatalf("unexpected redirects %+v", r)
	}
}

func TestAPIClient_MultipartUpload(t *testing.T) {
	h, backend := newBackendHarness(t)
	token, _ := backend.IssueToken("staff@example.com", domain.RoleStaff, time.Minute)
	h.mustSet(t, domain.RoleStaff, token)

	payload, err := domain.NewMultipartPayload(map[string]string{"sku": "A-1"}, []domain.FilePart{
		{Field: "image", FileName: "a.bin", Content: strings.NewReader("12345")},
	})
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}

	raw, err := h.client.As(domain.RoleStaff).Create(context.Background(), "/uploads", payload)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	res, _ := Decode[struct {
		Fields map[string]string `json:"fields"`
		Files  int               `json:"files"`
		Bytes  int64             `json:"bytes"`
	}](raw)
	if res.Files != 1 || res.Bytes != 5 || res.Fields["sku"] != "A-1" {
		t.Fatalf("unexpected upload result %+v", res)
	}
}

func TestAPIClient_DownloadFromBackend(t *testing.T) {
	h, backend := newBackendHarness(t)
	token, _ := backend.IssueToken("staff@example.com", domain.RoleStaff, time.Minute)
	h.mustSet(t, domain.RoleStaff, token)

	data, err := h.client.Download(context.Background(), domain.RoleStaff, "/export-product")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("unexpected export %q", data)
	}
}
