package common

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const (
	viewerKey ctxKey = iota
	requestIDKey
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Viewer is the authenticated identity attached to a request.
type Viewer struct {
	UserID   string
	Username string
}

func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerID returns the authenticated user id, or "" for anonymous requests.
func ViewerID(ctx context.Context) string {
	v, _ := ctx.Value(viewerKey).(Viewer)
	return v.UserID
}

// RequireViewer fails with an AuthenticationError when the request is anonymous.
func RequireViewer(ctx context.Context) (string, error) {
	id := ViewerID(ctx)
	if id == "" {
		return "", AuthenticationError("unauthorized request")
	}
	return id, nil
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// token reads "Authorization: Bearer <token>" and falls back to the accessToken cookie
func token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate rejects requests without a valid access token.
func Authenticate(tm *TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := token(r)
			if raw == "" {
				WriteError(w, logger, AuthenticationError("unauthorized request"))
				return
			}
			claims, err := tm.ValidateAccess(raw)
			if err != nil {
				WriteError(w, logger, AuthenticationError("invalid or expired access token"))
				return
			}
			ctx := WithViewer(r.Context(), Viewer{UserID: claims.UserID, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the viewer when a valid token is present and lets anonymous requests through.
func OptionalAuth(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := token(r); raw != "" {
				if claims, err := tm.ValidateAccess(raw); err == nil {
					r = r.WithContext(WithViewer(r.Context(), Viewer{UserID: claims.UserID, Username: claims.Username}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and writes one access-log line.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, reqID)))

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", reqID),
			)
		})
	}
}
