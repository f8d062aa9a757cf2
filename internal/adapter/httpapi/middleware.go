package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
)

var tracer = otel.Tracer("room-service/http")

type ContextKey string

// UserIDCtxKey holds the uid of a request that carried a valid bearer token.
const UserIDCtxKey = ContextKey("user_id")

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDCtxKey).(string)
	return uid, ok && uid != ""
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Error("HTTP request failed", fields...)
				return
			}
			log.Info("HTTP request", fields...)
		})
	}
}

// Tracing starts a server span per request, continuing any incoming trace.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+r.Method+" "+r.URL.Path,
			oteltrace.WithSpanKind(oteltrace.SpanKindServer),
			oteltrace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken reads "Authorization: Bearer <token>", falling back to the
// access_token query parameter since browsers cannot set headers on a
// WebSocket handshake.
func BearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// OptionalAuth authenticates requests that carry a token and lets anonymous
// ones through. A token that fails verification is rejected with 401.
func OptionalAuth(verifier *auth.TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasCredentials := r.Header.Get("Authorization") != "" || r.URL.Query().Get("access_token") != ""
			token, ok := BearerToken(r)
			if !hasCredentials {
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				log.Warn("OptionalAuth: malformed authorization header", "path", r.URL.Path)
				http.Error(w, "authorization token format is invalid, expected 'Bearer <token>'", http.StatusUnauthorized)
				return
			}

			uid, err := verifier.Verify(token)
			if err != nil {
				log.Warn("OptionalAuth: token rejected", "path", r.URL.Path, "error", err.Error())
				http.Error(w, "token is invalid", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDCtxKey, uid)))
		})
	}
}
