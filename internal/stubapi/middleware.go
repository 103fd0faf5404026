package stubapi

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// BearerAuth resolves Authorization: Bearer <JWT> to a stored user.
func BearerAuth(tokens Tokens, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			id, err := tokens.Verify(strings.TrimSpace(authz[7:]))
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}
			u, err := store.UserByID(r.Context(), id)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &u)))
		})
	}
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil || !u.Has(role) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "role "+role+" required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiterIdle is how long an address keeps its bucket without sending a request.
const limiterIdle = 10 * time.Minute

// ipLimiter keeps one token bucket per client address; idle addresses expire.
type ipLimiter struct {
	mu  sync.Mutex
	ips *cache.Cache
	r   rate.Limit
	b   int
}

func newIPLimiter(r rate.Limit, b int, idle time.Duration) *ipLimiter {
	return &ipLimiter{ips: cache.New(idle, idle), r: r, b: b}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.ips.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.r, l.b)
	}
	// Re-set so the expiry slides with activity.
	l.ips.SetDefault(ip, lim)
	return lim.(*rate.Limiter)
}

// RateLimit answers 429 once a client address exceeds rps. rps <= 0 disables it.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := newIPLimiter(rate.Limit(rps), burst, limiterIdle)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.get(clientIP(r)).Allow() {
				WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
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

func logRequests(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request", "remote", r.RemoteAddr, "method", r.Method, "path", r.URL.RequestURI())
			next.ServeHTTP(w, r)
		})
	}
}

func recoverPanic(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic", "path", r.URL.Path, "err", rec)
					w.Header().Set("Connection", "close")
					WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
