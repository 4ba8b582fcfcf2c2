package clientsession

import (
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrymomot/clientsession/pkg/cookie"
	"github.com/dmitrymomot/clientsession/pkg/logger"
)

// Read loads the session from the request cookie.
//
// Unlike Load it never fails: a token that cannot be decoded is logged with
// its cause and replaced by a fresh session, so end users never see an error.
func (m *Manager) Read(r *http.Request) *Session {
	value, err := m.cookieManager.Get(r, m.config.CookieName)
	if err != nil {
		if !errors.Is(err, cookie.ErrCookieNotFound) {
			m.logger.WarnContext(r.Context(), "failed to read client session cookie",
				logger.Component("clientsession"),
				logger.Error(err),
			)
		}
		return m.NewSession()
	}

	s, err := m.Load(value)
	if err != nil {
		m.logger.WarnContext(r.Context(), "discarding undecodable client session",
			logger.Component("clientsession"),
			logger.Error(err),
		)
		return m.NewSession()
	}
	return s
}

// Write saves the session and sets it as a cookie on the response.
// A nil session writes nothing.
func (m *Manager) Write(w http.ResponseWriter, s *Session) error {
	token, err := m.Save(s)
	if err != nil || token == nil {
		return err
	}

	opts := []cookie.Option{
		cookie.WithMaxAge(token.MaxAge),
		cookie.WithHTTPOnly(token.HTTPOnly),
		cookie.WithSecure(token.Secure),
	}
	opts = append(opts, m.cookieOptions...)

	return m.cookieManager.Set(w, token.Name, token.Value, opts...)
}

// Clear removes the session cookie from the client.
func (m *Manager) Clear(w http.ResponseWriter) {
	m.cookieManager.Delete(w, m.config.CookieName)
}

// Middleware loads the session into the request context and writes it back
// before the response headers are sent. Every response through the
// middleware refreshes the cookie, which slides the inactivity window.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Read(r)

		sw := &sessionWriter{ResponseWriter: w}
		sw.commit = func() {
			if err := m.Write(w, s); err != nil {
				m.logger.ErrorContext(r.Context(), "failed to save client session",
					logger.Component("clientsession"),
					logger.SessionID(s.ID()),
					logger.Error(err),
				)
			}
		}

		next.ServeHTTP(sw, r.WithContext(WithSession(r.Context(), s)))

		sw.commitOnce()
	})
}

// sessionWriter commits the session cookie right before the first byte of
// the response, since headers cannot change afterwards.
type sessionWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *sessionWriter) commitOnce() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Flush() {
	w.commitOnce()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
