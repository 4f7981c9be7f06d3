package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newInstrumentedRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/pages/{pageID}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "pageID") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	r.Post("/v1/databases/{databaseID}/query", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	return r
}

func serve(t *testing.T, r chi.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_UsesRoutePatternLabel(t *testing.T) {
	r := newInstrumentedRouter()

	// Two different page IDs must land on one label set.
	serve(t, r, "GET", "/v1/pages/abc")
	serve(t, r, "GET", "/v1/pages/def")

	count := testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues("GET", "/v1/pages/{pageID}", "200"))
	if count < 2 {
		t.Errorf("expected >= 2 requests under the route pattern label, got %f", count)
	}
}

func TestMiddleware_RecordsStatusAndMethod(t *testing.T) {
	r := newInstrumentedRouter()

	tests := []struct {
		method, path string
		pattern      string
		status       string
	}{
		{"GET", "/v1/pages/missing", "/v1/pages/{pageID}", "404"},
		{"POST", "/v1/databases/db1/query", "/v1/databases/{databaseID}/query", "200"},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.pattern, func(t *testing.T) {
			serve(t, r, tc.method, tc.path)
			val := testutil.ToFloat64(
				httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			if val < 1 {
				t.Errorf("expected a count for (%s, %s, %s), got %f",
					tc.method, tc.pattern, tc.status, val)
			}
		})
	}
}

func TestMiddleware_ObservesDuration(t *testing.T) {
	r := newInstrumentedRouter()
	serve(t, r, "GET", "/v1/pages/abc")

	if n := testutil.CollectAndCount(httpRequestDuration); n == 0 {
		t.Error("expected duration observations")
	}
}
