// ABOUTME: HTTP middleware: panic recovery, request logging, metrics, security
// ABOUTME: headers, per-client login throttling and session authentication.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "fitlog_session"

type contextKey string

const (
	userKey    contextKey = "user"
	requestKey contextKey = "request"
)

// loginPath is where unauthenticated clients are sent.
const loginPath = "/auth/login"

// maxLimiters is the client count at which idle login limiters are evicted.
const maxLimiters = 10000

// userFrom returns the authenticated username stored by requireSession.
func userFrom(ctx context.Context) string {
	u, _ := ctx.Value(userKey).(string)
	return u
}

// requestInfo is shared between instrument and the handlers it wraps so the
// request log can name the user resolved further down the chain.
type requestInfo struct {
	user string
}

func withRequestInfo(r *http.Request) (*http.Request, *requestInfo) {
	info := &requestInfo{}
	return r.WithContext(context.WithValue(r.Context(), requestKey, info)), info
}

func setRequestUser(ctx context.Context, user string) {
	if info, ok := ctx.Value(requestKey).(*requestInfo); ok {
		info.user = user
	}
}

// statusRecorder captures the response status for logs and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// recoverer turns panics into a generic 500.
func recoverer(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(logrus.Fields{
						"panic":  rec,
						"method": r.Method,
						"path":   r.URL.Path,
					}).Error("handler panic")
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// instrument logs one line per request and records HTTP metrics.
func instrument(log *logrus.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.InFlight()
			defer done()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			r, info := withRequestInfo(r)
			next.ServeHTTP(rec, r)

			path := routeTemplate(r)
			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, path, rec.status, elapsed)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"route":    path,
				"status":   rec.status,
				"duration": elapsed.String(),
				"user":     info.user,
			}).Info("request")
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// loginLimiter throttles login attempts per client address.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	max      int
	now      func() time.Time
	log      *logrus.Logger
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLoginLimiter(r rate.Limit, burst int, log *logrus.Logger) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     r,
		burst:    burst,
		max:      maxLimiters,
		now:      time.Now,
		log:      log,
	}
}

// refill is how long an idle client takes to get its whole burst back.
// Forgetting a client idle that long changes nothing.
func (l *loginLimiter) refill() time.Duration {
	if l.rate <= 0 || l.rate == rate.Inf {
		return 0
	}
	return time.Duration(float64(l.burst) / float64(l.rate) * float64(time.Second))
}

func (l *loginLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.max {
			l.evictIdle(now)
		}
		c = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// evictIdle drops clients whose bucket has refilled. Callers hold l.mu.
func (l *loginLimiter) evictIdle(now time.Time) {
	idle := l.refill()
	for key, c := range l.limiters {
		if now.Sub(c.lastSeen) >= idle {
			delete(l.limiters, key)
		}
	}
}

func (l *loginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *loginLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientAddr(r)
		if !l.get(key).AllowN(l.now(), 1) {
			l.log.WithFields(logrus.Fields{"client": key, "path": r.URL.Path}).Warn("login rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sessionToken reads the token from the session cookie or a Bearer header.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// requireSession resolves the session and stores the username in the context.
// Browsers are redirected to the login route; API clients get 401 with a Location.
func requireSession(sessions auth.Sessions, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Resolve(r.Context(), sessionToken(r))
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthenticated) {
					log.WithError(err).Warn("session lookup failed")
				}
				if wantsHTML(r) {
					http.Redirect(w, r, loginPath, http.StatusSeeOther)
					return
				}
				w.Header().Set("Location", loginPath)
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}
			setRequestUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}
