package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"microblogTTS/internal/apperror"
	handlers "microblogTTS/internal/handler"
	"microblogTTS/internal/models"
	"microblogTTS/internal/ratelimit"
	"microblogTTS/internal/service"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

const RequestIDHeader = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

func (sw *statusWriter) Status() int {
	if sw.status == 0 {
		return http.StatusOK
	}
	return sw.status
}

func wrap(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w}
}

func Logging(log *zap.SugaredLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrap(w)
			next.ServeHTTP(sw, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote", clientIP(r),
				"status", sw.Status(),
				"size", sw.size,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", r.Header.Get(RequestIDHeader),
			}
			if sw.Status() >= http.StatusInternalServerError {
				log.Warnw("http request", fields...)
				return
			}
			log.Infow("http request", fields...)
		})
	}
}

// Recover turns a panic into a 500 envelope.
func Recover(log *zap.SugaredLogger, withDetail bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Errorw("panic recovered", "path", r.URL.Path, "panic", rec, "request_id", r.Header.Get(RequestIDHeader))
					handlers.WriteError(w, apperror.Storage(panicError{rec}), withDetail)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type panicError struct{ v any }

func (p panicError) Error() string { return "panic: " + strings.TrimSpace(toString(p.v)) }

func toString(v any) string {
	switch t := v.(type) {
	case error:
		return t.Error()
	case string:
		return t
	default:
		return "unexpected value"
	}
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func CORS(allowedOrigins []string) Middleware {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimit counts requests per client IP. With skipSuccessful set, requests
// answered below 400 are refunded so only failures use up the budget.
func RateLimit(limiter ratelimit.Limiter, skipSuccessful bool, log *zap.SugaredLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// fail open while Redis is unreachable
				log.Warnw("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.ResetIn.Seconds())+1))
				handlers.WriteError(w, apperror.ErrTooManyRequests, false)
				return
			}

			sw := wrap(w)
			next.ServeHTTP(sw, r)

			if skipSuccessful && sw.Status() < http.StatusBadRequest {
				if err := limiter.Refund(r.Context(), key); err != nil {
					log.Warnw("rate limiter refund failed", "error", err)
				}
			}
		})
	}
}

// Authenticate verifies the bearer token and stores the identity in the
// request context. When required is false, requests without a valid token
// pass through anonymously.
func Authenticate(tokens service.TokenService, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					handlers.WriteError(w, apperror.ErrMissingToken, false)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Checking the "Bearer <token>" format
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				if required {
					handlers.WriteError(w, apperror.ErrMalformedToken, false)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				if required {
					handlers.WriteError(w, err, false)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := handlers.WithIdentity(r.Context(), models.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
