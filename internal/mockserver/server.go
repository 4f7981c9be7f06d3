package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quillhq/quill/internal/logger"
)

// Options tunes server behavior.
type Options struct {
	// RequestsPerSecond throttles calls; 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
	// Window is the budget window advertised in X-RateLimit headers.
	Window time.Duration
	// DefaultPageSize and MaxPageSize bound query pagination.
	DefaultPageSize int
	MaxPageSize     int
	// Tokens lists accepted bearer tokens; empty accepts any request.
	Tokens []string
}

func (o *Options) applyDefaults() {
	if o.Burst <= 0 {
		o.Burst = 3
	}
	if o.Window <= 0 {
		o.Window = time.Minute
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 20
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
}

// Server serves the workspace API surface from an in-memory store.
type Server struct {
	store   *Store
	logger  *zap.Logger
	opts    Options
	limiter *rate.Limiter
	budget  *budgetWindow
}

// NewServer creates a server over the given store.
func NewServer(store *Store, logger *zap.Logger, opts Options) *Server {
	opts.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{store: store, logger: logger, opts: opts}
	if opts.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
		s.budget = newBudgetWindow(
			int(opts.RequestsPerSecond*opts.Window.Seconds()), opts.Window,
		)
	}
	return s
}

// Router builds the chi router with the API routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(bearerAuthMiddleware(s.opts.Tokens))
	r.Use(s.rateLimitMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/databases/{databaseID}", s.getDatabase)
		r.Post("/databases/{databaseID}/query", s.queryDatabase)
		r.Get("/pages/{pageID}", s.getPage)
		r.Post("/pages", s.createPage)
		r.Patch("/pages/{pageID}", s.updatePage)
	})

	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

// getDatabase handles GET /v1/databases/{databaseID}.
func (s *Server) getDatabase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "databaseID")
	db, ok := s.store.Database(id)
	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", fmt.Sprintf("database %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, db)
}

// queryRequest is the body of POST /v1/databases/{databaseID}/query.
type queryRequest struct {
	Filter      json.RawMessage `json:"filter"`
	Sorts       []sortClause    `json:"sorts"`
	StartCursor string          `json:"start_cursor"`
	PageSize    int             `json:"page_size"`
}

type sortClause struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// queryResponse is the cursor pagination envelope.
type queryResponse struct {
	Results    []pageResponse `json:"results"`
	NextCursor *string        `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// queryDatabase handles POST /v1/databases/{databaseID}/query.
func (s *Server) queryDatabase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "databaseID")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body: "+err.Error())
		return
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.opts.DefaultPageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}

	sorts := make([]SortKey, 0, len(req.Sorts))
	for _, c := range req.Sorts {
		switch c.Direction {
		case "ascending", "descending":
		default:
			writeError(w, http.StatusBadRequest, "validation_error",
				fmt.Sprintf("sort direction must be ascending or descending, got %q", c.Direction))
			return
		}
		sorts = append(sorts, SortKey{Property: c.Property, Ascending: c.Direction == "ascending"})
	}

	res, err := s.store.Query(id, req.Filter, sorts, req.StartCursor, pageSize)
	if err != nil {
		logger.FromContext(r.Context()).Debug("query rejected",
			zap.String("database_id", id), zap.Error(err))
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "object_not_found", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	resp := queryResponse{
		Results: make([]pageResponse, len(res.Pages)),
		HasMore: res.HasMore,
	}
	for i, p := range res.Pages {
		resp.Results[i] = toPageResponse(p)
	}
	if res.NextCursor != "" {
		resp.NextCursor = &res.NextCursor
	}
	writeJSON(w, http.StatusOK, resp)
}

// getPage handles GET /v1/pages/{pageID}.
func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	p, ok := s.store.Page(id)
	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", fmt.Sprintf("page %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(p))
}

// createPageRequest is the body of POST /v1/pages.
type createPageRequest struct {
	Parent     map[string]string          `json:"parent"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// createPage handles POST /v1/pages.
func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body: "+err.Error())
		return
	}

	databaseID := req.Parent["database_id"]
	if databaseID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "parent.database_id is required")
		return
	}
	if _, ok := s.store.Database(databaseID); !ok {
		writeError(w, http.StatusNotFound, "object_not_found",
			fmt.Sprintf("database %q not found", databaseID))
		return
	}

	p := s.store.AddPage(Page{
		DatabaseID: databaseID,
		Properties: req.Properties,
	})
	writeJSON(w, http.StatusOK, toPageResponse(p))
}

// updatePageRequest is the body of PATCH /v1/pages/{pageID}.
type updatePageRequest struct {
	Properties map[string]json.RawMessage `json:"properties"`
}

// updatePage handles PATCH /v1/pages/{pageID}.
func (s *Server) updatePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")

	var req updatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body: "+err.Error())
		return
	}

	p, ok := s.store.UpdatePage(id, req.Properties)
	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", fmt.Sprintf("page %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(p))
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// pageResponse is the page envelope as the API returns it.
type pageResponse struct {
	ID             string                     `json:"id"`
	CreatedTime    time.Time                  `json:"created_time"`
	LastEditedTime time.Time                  `json:"last_edited_time"`
	Archived       bool                       `json:"archived"`
	URL            string                     `json:"url"`
	Parent         parentRef                  `json:"parent"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

type parentRef struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
}

func toPageResponse(p Page) pageResponse {
	return pageResponse{
		ID:             p.ID,
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
		Archived:       p.Archived,
		URL:            p.URL,
		Parent:         parentRef{Type: "database_id", DatabaseID: p.DatabaseID},
		Properties:     p.Properties,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// problem is the error response body.
type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, problem{Code: code, Message: message})
}

// exemptPaths are routes that bypass authentication and rate limiting.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// bearerAuthMiddleware validates Bearer tokens. If tokens is empty,
// authentication is disabled (pass-through).
func bearerAuthMiddleware(tokens []string) func(http.Handler) http.Handler {
	valid := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			valid[t] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled — pass everything through
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "unauthorized",
					"authorization header must use Bearer scheme")
				return
			}

			if _, ok := valid[auth[len(bearerPrefix):]]; !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware enforces the call budget and stamps the
// X-RateLimit headers on every response.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := exemptPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed := s.limiter.Allow()
		used, remaining, reset := s.budget.record(allowed)

		h := w.Header()
		h.Set("X-RateLimit-Limit", fmt.Sprint(s.budget.limit))
		h.Set("X-RateLimit-Remaining", fmt.Sprint(remaining))
		h.Set("X-RateLimit-Used", fmt.Sprint(used))
		h.Set("X-RateLimit-Reset", fmt.Sprint(reset.Unix()))

		if !allowed {
			retryAfter := time.Until(reset)
			if d := s.limiter.Reserve(); d.OK() {
				wait := d.Delay()
				d.Cancel()
				if wait < retryAfter {
					retryAfter = wait
				}
			}
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
			h.Set("Retry-After", fmt.Sprint(int(retryAfter.Seconds())))
			logger.FromContext(r.Context()).Info("request rate limited",
				zap.String("path", r.URL.Path),
				zap.Duration("retry_after", retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "request budget exhausted")
			return
		}

		next.ServeHTTP(w, r)
	})
}
