package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/index"
	"github.com/sells-group/company-match/internal/model"
)

const (
	msgNoMatch      = "no company found matching the criteria"
	msgNotFound     = "company not found"
	msgNotReady     = "service not initialized"
	msgNoAnalytics  = "analytics not available, run scraping first"
	msgScrapeDone   = "Scraping completed successfully"
	debugListLength = 10
)

// apiServer serves the company API over a matchEnv.
type apiServer struct {
	env *matchEnv
}

// buildRouter returns the HTTP handler for the API.
func buildRouter(env *matchEnv) http.Handler {
	s := &apiServer{env: env}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/companies", func(r chi.Router) {
		r.Post("/search", s.searchPost)
		r.Get("/search", s.searchGet)
		r.Post("/scrape", s.scrape)
		r.Get("/analytics", s.analytics)
		r.Get("/status", s.status)
		r.Post("/test", s.testSample)
		r.Get("/test/full", s.testFull)
		r.Get("/debug/company/{domain}", s.debugCompany)
		r.Get("/debug/all", s.debugAll)
	})

	return r
}

func (s *apiServer) searchPost(w http.ResponseWriter, r *http.Request) {
	var q model.MatchQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, q)
}

func (s *apiServer) searchGet(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	s.search(w, model.MatchQuery{
		Name:     v.Get("name"),
		Website:  v.Get("website"),
		Phone:    v.Get("phone"),
		Facebook: v.Get("facebook"),
	})
}

func (s *apiServer) search(w http.ResponseWriter, q model.MatchQuery) {
	res, err := s.env.Service.Resolve(q)
	if err != nil {
		respondServiceError(w, "search failed", err)
		return
	}
	if res == nil {
		respondError(w, http.StatusNotFound, msgNoMatch)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *apiServer) scrape(w http.ResponseWriter, r *http.Request) {
	report, err := s.env.crawlWebsites(r.Context())
	if err != nil {
		respondServiceError(w, "scraping failed", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"message":   msgScrapeDone,
		"analytics": report,
	})
}

func (s *apiServer) analytics(w http.ResponseWriter, r *http.Request) {
	report := s.env.Service.Analytics()
	if report == nil {
		respond(w, http.StatusOK, map[string]string{"message": msgNoAnalytics})
		return
	}
	respond(w, http.StatusOK, report)
}

func (s *apiServer) status(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.env.Service.Status())
}

func (s *apiServer) testSample(w http.ResponseWriter, r *http.Request) {
	report, err := s.env.runSample(r.Context(), 0)
	if err != nil {
		respondServiceError(w, "testing failed", err)
		return
	}
	respond(w, http.StatusOK, report.Summary(sampleSize))
}

func (s *apiServer) testFull(w http.ResponseWriter, r *http.Request) {
	report, err := s.env.runSample(r.Context(), 0)
	if err != nil {
		respondServiceError(w, "testing failed", err)
		return
	}
	respond(w, http.StatusOK, report)
}

func (s *apiServer) debugCompany(w http.ResponseWriter, r *http.Request) {
	domain := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "domain")))
	rec, err := s.env.Service.GetByDomain(domain)
	if err != nil {
		respondServiceError(w, "lookup failed", err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	respond(w, http.StatusOK, rec)
}

func (s *apiServer) debugAll(w http.ResponseWriter, r *http.Request) {
	all, err := s.env.Service.All()
	if err != nil {
		respondServiceError(w, "lookup failed", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"count":     len(all),
		"companies": all[:min(debugListLength, len(all))],
	})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

// respondServiceError maps index.ErrNotReady to 503 and anything else to 500.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, index.ErrNotReady) {
		respondError(w, http.StatusServiceUnavailable, msgNotReady)
		return
	}
	zap.L().Error("api: "+op, zap.Error(err))
	respondError(w, http.StatusInternalServerError, op+": "+err.Error())
}

// requestLogger logs one line per request through zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("api: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
