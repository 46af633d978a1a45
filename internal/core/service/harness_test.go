package service

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
	"github.com/rentora/access-layer/internal/infrastructure/credentials"
	"github.com/rentora/access-layer/internal/infrastructure/navigation"
)

var testLoginPaths = map[domain.Role]string{
	domain.RoleStaff:   "/admin/login",
	domain.RoleEndUser: "/login",
}

// manualScheduler records tasks and runs them only when asked.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	ran     bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.ran {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) ports.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{delay: d, fn: f}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *manualScheduler) Tasks() []*manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*manualTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// RunAll fires every pending task as if its delay had elapsed.
func (s *manualScheduler) RunAll() {
	for _, task := range s.Tasks() {
		if task.stopped || task.ran {
			continue
		}
		task.ran = true
		task.fn()
	}
}

type harness struct {
	store     *credentials.MemoryStore
	nav       *navigation.Recorder
	sched     *manualScheduler
	builder   *RequestBuilder
	dispatch  *Dispatcher
	client    *APIClient
	policy    *AuthPolicy
	serverURL string
}

func newHarness(t *testing.T, handler http.Handler) *harness {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newHarnessFor(t, srv.URL, srv.Client())
}

func newHarnessFor(t *testing.T, baseURL string, doer ports.HTTPDoer) *harness {
	t.Helper()
	h := &harness{
		store:     credentials.NewMemoryStore(),
		nav:       &navigation.Recorder{},
		sched:     &manualScheduler{},
		serverURL: baseURL,
	}
	h.builder = NewRequestBuilder(baseURL, h.store)
	h.policy = NewAuthPolicy(h.store, h.nav, h.sched, AuthPolicyConfig{LoginPaths: testLoginPaths}, zerolog.Nop())
	h.dispatch = NewDispatcher(h.builder, doer, h.policy, zerolog.Nop())
	h.client = NewAPIClient(h.dispatch)
	return h
}

func (h *harness) mustSet(t *testing.T, role domain.Role, token string) {
	t.Helper()
	if err := h.store.Set(role, token); err != nil {
		t.Fatalf("set %s token: %v", role, err)
	}
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
