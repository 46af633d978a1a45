package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/metrics"
)

func asFailure(t *testing.T, err error) *domain.Failure {
	t.Helper()
	var f *domain.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *domain.Failure, got %T: %v", err, err)
	}
	return f
}

func TestDispatch_SuccessReturnsBodyWithoutSideEffects(t *testing.T) {
	var gotAuth string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		jsonHandler(http.StatusOK, `{"items":[]}`)(w, r)
	}))
	h.mustSet(t, domain.RoleEndUser, "user-token")

	body, err := h.client.Get(context.Background(), domain.RoleEndUser, "/orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"items":[]}` {
		t.Fatalf("body = %s", body)
	}
	if gotAuth != "Bearer user-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if len(h.sched.Tasks()) != 0 || len(h.nav.Redirects()) != 0 {
		t.Fatalf("success must not schedule a redirect")
	}
	if tok, err := h.store.Get(domain.RoleEndUser); err != nil || tok != "user-token" {
		t.Fatalf("credential must be untouched, got %q %v", tok, err)
	}
}

func TestDispatch_ForbiddenClearsRoleAndRedirectsOnce(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusForbidden, `{"message":"Invalid or expired token"}`))
	h.mustSet(t, domain.RoleStaff, "staff-token")
	h.mustSet(t, domain.RoleEndUser, "user-token")

	cleared := metrics.CredentialsClearedTotal.WithLabelValues("staff", "403")
	before := testutil.ToFloat64(cleared)

	_, err := h.client.Get(context.Background(), domain.RoleStaff, "/reports")

	f := asFailure(t, err)
	if f.Kind != domain.KindAuth || f.Status != http.StatusForbidden {
		t.Fatalf("expected auth failure with 403, got %+v", f)
	}
	if f.Message != "API error: 403 - Invalid or expired token" {
		t.Fatalf("message = %q", f.Message)
	}
	if !errors.Is(err, domain.ErrAuth) || !errors.Is(err, domain.ErrHTTP) {
		t.Fatalf("auth failure should match ErrAuth and ErrHTTP")
	}

	if _, err := h.store.Get(domain.RoleStaff); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("staff slot should be absent, got %v", err)
	}
	if tok, err := h.store.Get(domain.RoleEndUser); err != nil || tok != "user-token" {
		t.Fatalf("end user slot must be untouched, got %q %v", tok, err)
	}
	if got := testutil.ToFloat64(cleared) - before; got != 1 {
		t.Fatalf("cleared counter delta = %v, want 1", got)
	}

	tasks := h.sched.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one scheduled redirect, got %d", len(tasks))
	}
	if tasks[0].delay != DefaultRedirectDelay {
		t.Fatalf("redirect delay = %v", tasks[0].delay)
	}
	if len(h.nav.Redirects()) != 0 {
		t.Fatalf("redirect must wait for the delay")
	}

	h.sched.RunAll()
	redirects := h.nav.Redirects()
	if len(redirects) != 1 || redirects[0].Role != domain.RoleStaff || redirects[0].Target != "/admin/login" {
		t.Fatalf("unexpected redirects %+v", redirects)
	}
	if h.policy.State(domain.RoleStaff) != StateUnauthenticated || h.policy.State(domain.RoleEndUser) != StateAuthenticated {
		t.Fatalf("unexpected states after auth failure")
	}
}

func TestDispatch_UnauthorizedScopedToRequestRole(t *testing.T) {
	// The backend message names the token, but only the calling role is
	// cleared.
	h := newHarness(t, jsonHandler(http.StatusUnauthorized, `{"message":"Invalid or expired token"}`))
	h.mustSet(t, domain.RoleStaff, "staff-token")
	h.mustSet(t, domain.RoleEndUser, "user-token")

	_, err := h.client.Get(context.Background(), domain.RoleEndUser, "/orders")
	if f := asFailure(t, err); f.Kind != domain.KindAuth || f.Status != http.StatusUnauthorized {
		t.Fatalf("expected auth 401, got %+v", f)
	}

	if _, err := h.store.Get(domain.RoleEndUser); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("end user slot should be cleared")
	}
	if tok, _ := h.store.Get(domain.RoleStaff); tok != "staff-token" {
		t.Fatalf("staff slot must survive, got %q", tok)
	}

	h.sched.RunAll()
	redirects := h.nav.Redirects()
	if len(redirects) != 1 || redirects[0].Target != "/login" {
		t.Fatalf("unexpected redirects %+v", redirects)
	}
}

func TestDispatch_NotFoundHasNoSideEffects(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusNotFound, `{"message":"order not found"}`))
	h.mustSet(t, domain.RoleEndUser, "user-token")

	_, err := h.client.Get(context.Background(), domain.RoleEndUser, "/orders/42")

	f := asFailure(t, err)
	if f.Kind != domain.KindHTTP || f.Status != http.StatusNotFound {
		t.Fatalf("expected http 404, got %+v", f)
	}
	if f.Message != "API error: 404 - order not found" {
		t.Fatalf("message = %q", f.Message)
	}
	if errors.Is(err, domain.ErrAuth) {
		t.Fatalf("404 must not be an auth failure")
	}
	if tok, _ := h.store.Get(domain.RoleEndUser); tok != "user-token" {
		t.Fatalf("credential must survive a 404")
	}
	if len(h.sched.Tasks()) != 0 {
		t.Fatalf("404 must not schedule a redirect")
	}
}

func TestDispatch_GenericMessageWithoutBackendMessage(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))

	_, err := h.client.Delete(context.Background(), domain.RoleStaff, "/orders/1")
	f := asFailure(t, err)
	if f.Message != "API error: 500 - request failed with status code 500" {
		t.Fatalf("message = %q", f.Message)
	}
}

func TestDispatch_ErrorFieldUsedWhenNoMessage(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusConflict, `{"error":"already exists"}`))

	_, err := h.client.Create(context.Background(), domain.RoleStaff, "/orders", domain.JSON(map[string]string{}))
	if f := asFailure(t, err); f.Message != "API error: 409 - already exists" {
		t.Fatalf("message = %q", f.Message)
	}
}

func TestDispatch_NetworkFailureIsNeverAuth(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := newHarnessFor(t, url, http.DefaultClient)

	_, err := h.client.Get(context.Background(), domain.RoleStaff, "/reports")

	f := asFailure(t, err)
	if f.Kind != domain.KindNetwork || f.Status != 0 {
		t.Fatalf("expected network failure, got %+v", f)
	}
	if !errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrHTTP) {
		t.Fatalf("network failure misclassified: %v", err)
	}
	if len(h.sched.Tasks()) != 0 {
		t.Fatalf("network failure must not schedule a redirect")
	}
}

func TestDispatch_RepeatedAuthFailuresScheduleIndependently(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusUnauthorized, `{}`))
	h.mustSet(t, domain.RoleStaff, "staff-token")

	for i := 0; i < 2; i++ {
		if _, err := h.client.Get(context.Background(), domain.RoleStaff, "/reports"); !errors.Is(err, domain.ErrAuth) {
			t.Fatalf("call %d: expected auth failure, got %v", i, err)
		}
	}
	if len(h.sched.Tasks()) != 2 {
		t.Fatalf("expected one redirect per failure, got %d", len(h.sched.Tasks()))
	}
	if _, err := h.store.Get(domain.RoleStaff); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("staff slot should stay absent")
	}
}

func TestDispatch_WithoutPolicyOnlyClassifies(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusUnauthorized, `{}`))
	defer srv.Close()

	h := newHarnessFor(t, srv.URL, srv.Client())
	h.mustSet(t, domain.RoleStaff, "staff-token")
	d := NewDispatcher(h.builder, srv.Client(), nil, h.dispatch.log)

	_, err := d.Dispatch(context.Background(), domain.RequestDescriptor{Role: domain.RoleStaff, Path: "/reports"})
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if tok, _ := h.store.Get(domain.RoleStaff); tok != "staff-token" {
		t.Fatalf("credential must survive without a policy")
	}
}

func TestLogin_ReturnsRawBodyAndSkipsCredential(t *testing.T) {
	var gotAuth, gotCT string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		jsonHandler(http.StatusOK, `{"token":"abc","extra":1}`)(w, r)
	}))
	h.mustSet(t, domain.RoleStaff, "staff-token")

	body, err := h.client.Login(context.Background(), "/admin/auth/login", domain.JSON(map[string]string{"email": "a"}))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if string(body) != `{"token":"abc","extra":1}` {
		t.Fatalf("body = %s", body)
	}
	if gotAuth != "" || gotCT != "application/json" {
		t.Fatalf("unexpected headers auth=%q ct=%q", gotAuth, gotCT)
	}
}

func TestLogin_ErrorsAreNotNormalized(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusUnauthorized, `{"message":"invalid credentials"}`))
	h.mustSet(t, domain.RoleStaff, "staff-token")

	_, err := h.client.Login(context.Background(), "/admin/auth/login", nil)

	var raw *domain.RawResponseError
	if !errors.As(err, &raw) {
		t.Fatalf("expected *RawResponseError, got %T", err)
	}
	if raw.StatusCode != http.StatusUnauthorized || string(raw.Body) != `{"message":"invalid credentials"}` {
		t.Fatalf("unexpected raw error %+v", raw)
	}
	var f *domain.Failure
	if errors.As(err, &f) {
		t.Fatalf("login errors must not be classified")
	}
	if len(h.sched.Tasks()) != 0 {
		t.Fatalf("login failure must not trigger the auth policy")
	}
	if tok, _ := h.store.Get(domain.RoleStaff); tok != "staff-token" {
		t.Fatalf("login failure must not clear credentials")
	}
}
