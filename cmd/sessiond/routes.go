package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/clientsession/pkg/clientsession"
	"github.com/dmitrymomot/clientsession/pkg/httpserver"
	"github.com/dmitrymomot/clientsession/pkg/logger"
)

const (
	// maxBodySize caps attribute values; the whole session must fit in a cookie.
	maxBodySize = 2048

	// maxIntervalSeconds is the largest interval a time.Duration can hold.
	maxIntervalSeconds = int64(math.MaxInt64 / time.Second)
)

var errIntervalRange = fmt.Errorf("interval must be between -%d and %d seconds", maxIntervalSeconds, maxIntervalSeconds)

type sessionView struct {
	ID                  string         `json:"id"`
	IsNew               bool           `json:"isNew"`
	CreatedAt           time.Time      `json:"createdAt"`
	LastAccessedAt      time.Time      `json:"lastAccessedAt"`
	MaxInactiveInterval int64          `json:"maxInactiveInterval"`
	Attributes          map[string]any `json:"attributes"`
}

func viewOf(s *clientsession.Session) sessionView {
	return sessionView{
		ID:                  s.ID(),
		IsNew:               s.IsNew(),
		CreatedAt:           s.CreatedAt().UTC(),
		LastAccessedAt:      s.LastAccessedAt().UTC(),
		MaxInactiveInterval: int64(s.MaxInactiveInterval() / time.Second),
		Attributes:          s.Attributes(),
	}
}

func newRouter(sessions *clientsession.Manager, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))

	r.Route("/session", func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", getSession)
		r.Put("/attributes/{name}", putAttribute)
		r.Delete("/attributes/{name}", deleteAttribute)
		r.Put("/max-inactive-interval", putMaxInactiveInterval)
		r.Post("/invalidate", invalidateSession)
	})

	// Outside the session middleware so nothing rewrites the cleared cookie
	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessions.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(clientsession.MustFromContext(r.Context())))
}

func putAttribute(w http.ResponseWriter, r *http.Request) {
	s := clientsession.MustFromContext(r.Context())

	var value any
	if err := decodeBody(r, &value); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.Set(chi.URLParam(r, "name"), value)
	writeJSON(w, http.StatusOK, viewOf(s))
}

func deleteAttribute(w http.ResponseWriter, r *http.Request) {
	s := clientsession.MustFromContext(r.Context())
	s.Remove(chi.URLParam(r, "name"))
	writeJSON(w, http.StatusOK, viewOf(s))
}

func putMaxInactiveInterval(w http.ResponseWriter, r *http.Request) {
	s := clientsession.MustFromContext(r.Context())

	var seconds int64
	if err := decodeBody(r, &seconds); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if seconds > maxIntervalSeconds || seconds < -maxIntervalSeconds {
		writeError(w, http.StatusBadRequest, errIntervalRange)
		return
	}

	s.SetMaxInactiveInterval(time.Duration(seconds) * time.Second)
	writeJSON(w, http.StatusOK, viewOf(s))
}

func invalidateSession(w http.ResponseWriter, r *http.Request) {
	s := clientsession.MustFromContext(r.Context())
	s.Invalidate()
	writeJSON(w, http.StatusOK, viewOf(s))
}

var errEmptyBody = errors.New("request body is empty")

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
