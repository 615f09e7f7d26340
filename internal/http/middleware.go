package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robertarktes/sponsored-events/internal/engine"
	"github.com/robertarktes/sponsored-events/internal/idempotency"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/rateLimit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelhttp "go.opentelemetry.io/otel/propagation"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	sessionKey
	tokenKey
)

func RequestIDMiddleware(next http.Handler) http.Handler {
	return middleware.RequestID(next)
}

func LoggerMiddleware(logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			entry := logger.WithField("request_id", reqID)
			ctx := context.WithValue(r.Context(), loggerKey, entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loggerFrom(ctx context.Context) observability.Logger {
	if l, ok := ctx.Value(loggerKey).(observability.Logger); ok {
		return l
	}
	return observability.NewDiscardLogger()
}

// AuthMiddleware resolves the bearer token to its session. Requests without
// a token run as an anonymous session.
func AuthMiddleware(sessions *Sessions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &engine.Session{}
			token, hasToken := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if hasToken {
				found, ok := sessions.Lookup(token)
				if !ok {
					writeError(w, http.StatusUnauthorized, "invalid session token", CodeInvalidSession)
					return
				}
				sess = found
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) *engine.Session {
	if s, ok := ctx.Value(sessionKey).(*engine.Session); ok {
		return s
	}
	return &engine.Session{}
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// IdempotencyMiddleware replays the stored response of a POST that repeats
// an Idempotency-Key. Keys are scoped to the caller's session token and
// bound to the request body; anonymous requests are never replayed.
func IdempotencyMiddleware(idemp *idempotency.Idempotency) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) < 16 {
				writeError(w, http.StatusBadRequest, "invalid Idempotency-Key", CodeInvalidRequest)
				return
			}
			// Anonymous calls share no identity to scope a key by.
			token := tokenFrom(r.Context())
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable request body", CodeInvalidRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			sum := sha256.Sum256(raw)
			fingerprint := hex.EncodeToString(sum[:])
			scoped := token + ":" + r.URL.Path + ":" + key

			existing, err := idemp.Get(r.Context(), scoped)
			if err != nil {
				loggerFrom(r.Context()).Error("idempotency lookup failed: ", err)
			}
			if existing != nil && existing.Fingerprint != fingerprint {
				writeError(w, http.StatusUnprocessableEntity, "Idempotency-Key reused with a different request body", CodeIdempotencyKeyReused)
				return
			}
			if existing != nil {
				w.Header().Set("Content-Type", existing.ContentType)
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(existing.Status)
				w.Write(existing.Result)
				return
			}

			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusInternalServerError {
				return
			}
			resp := idempotency.Response{
				Status:      ww.Status(),
				ContentType: ww.Header().Get("Content-Type"),
				Result:      body.Bytes(),
				Fingerprint: fingerprint,
			}
			if err := idemp.Set(r.Context(), scoped, resp); err != nil {
				loggerFrom(r.Context()).Error("idempotency store failed: ", err)
			}
		})
	}
}

// RateLimitMiddleware limits each session token, or each client address
// for anonymous callers.
func RateLimitMiddleware(rl *rateLimit.RateLimiter, rate int, period time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "session:" + tokenFrom(r.Context())
			if tokenFrom(r.Context()) == "" {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				key = "ip:" + host
			}
			if !rl.Allow(r.Context(), key, rate, period) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", CodeRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), otelhttp.HeaderCarrier(r.Header))
		tracer := otel.Tracer("http")
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.url", r.URL.String()),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RequestsTotal.WithLabelValues(route, strconv.Itoa(status), r.Method).Inc()
	})
}
