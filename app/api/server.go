package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rbhz/word-lookup/app/lookup"
	"github.com/rbhz/word-lookup/app/metrics"
)

const shutdownTimeout = 10 * time.Second

// Lookuper looks words up in dictionary sources
type Lookuper interface {
	Lookup(ctx context.Context, word string) (lookup.Result, error)
	LookupSource(ctx context.Context, id string, word string) (lookup.Entry, error)
}

// PageProxy returns sanitized third-party pages
type PageProxy interface {
	Fetch(ctx context.Context, source string, word string) ([]byte, error)
}

type Server struct {
	router chi.Router
}

// Run serves HTTP until ctx is cancelled
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown server")
		}
	}()
	log.Info().Int("port", port).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logRequest writes access log entry for every request
func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("size", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func NewServer(lookuper Lookuper, proxy PageProxy, collector *metrics.Collector) *Server {
	dict := dictionaryService{lookuper: lookuper}
	pages := proxyService{proxy: proxy}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequest)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	if collector != nil {
		r.Method(http.MethodGet, "/metrics", collector.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/dictionary", dict.Lookup)
		r.Get("/proxy", pages.Fetch)
	})
	r.Get("/proxy", pages.Fetch)

	return &Server{router: r}
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
