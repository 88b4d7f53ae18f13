package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
)

// Context keys
type contextKey string

const sessionContextKey contextKey = "session"

// SessionHeader carries the caller's session id. An absent header
// resolves to the shared default session.
const SessionHeader = "X-Session-ID"

// SessionMiddleware resolves the request's session and adds it to the
// request context. Sessions are ownership keys, not credentials.
type SessionMiddleware struct {
	sessionService driving.SessionService
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(sessionService driving.SessionService) *SessionMiddleware {
	return &SessionMiddleware{
		sessionService: sessionService,
	}
}

// Resolve looks up the session named by the request and stores it in
// the request context
func (m *SessionMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			id = r.URL.Query().Get("session_id")
		}

		session, err := m.sessionService.Resolve(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "session resolution failed")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession retrieves the resolved session from request context
func GetSession(ctx context.Context) *domain.Session {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(sessionContextKey).(*domain.Session)
	if !ok {
		return nil
	}
	return session
}

// Logging middleware

// LoggingMiddleware logs HTTP requests
type LoggingMiddleware struct{}

// NewLoggingMiddleware creates a new LoggingMiddleware
func NewLoggingMiddleware() *LoggingMiddleware {
	return &LoggingMiddleware{}
}

// Handler wraps an http.Handler with request logging
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Recovery middleware

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new RecoveryMiddleware
func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// Handler wraps an http.Handler with panic recovery
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS middleware

// CORSMiddleware handles CORS
type CORSMiddleware struct {
	allowedOrigins []string
}

// NewCORSMiddleware creates a new CORSMiddleware
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	return &CORSMiddleware{
		allowedOrigins: allowedOrigins,
	}
}

// Handler wraps an http.Handler with CORS headers
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, o := range m.allowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
