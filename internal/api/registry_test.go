package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

type fakeEndpoint struct {
	method string
	path   string
	authed bool
}

func (e *fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func (e *fakeEndpoint) RequiresAuth() bool { return e.authed }

func (e *fakeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{Use: e.path}
}

func TestRegistryRoutes(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeEndpoint{method: "GET", path: "/open"})
	r.Register(&fakeEndpoint{method: "GET", path: "/locked", authed: true})

	if got := len(r.Endpoints()); got != 2 {
		t.Fatalf("Endpoints() returned %d entries, want 2", got)
	}

	var wrapped []string
	middleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			wrapped = append(wrapped, req.URL.Path)
			next(w, req)
		}
	}

	mux := http.NewServeMux()
	r.RegisterRoutes(mux, middleware)

	for _, path := range []string{"/open", "/locked"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s returned %d, want 200", path, rec.Code)
		}
	}

	if len(wrapped) != 1 || wrapped[0] != "/locked" {
		t.Errorf("middleware wrapped %v, want only /locked", wrapped)
	}
}
