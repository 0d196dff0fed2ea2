// ABOUTME: HTTP server wiring: routes, middleware chain and dependencies.
// ABOUTME: All handlers speak JSON; form posts are accepted wherever a body is read.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/metrics"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Default login throttle: a burst of 5, then one attempt every 12 seconds per client.
const (
	DefaultLoginRate  = rate.Limit(1.0 / 12)
	DefaultLoginBurst = 5
)

// Options configures a Server.
type Options struct {
	Tracker  *tracker.Tracker
	Sessions auth.Sessions
	Log      *logrus.Logger
	Metrics  *metrics.Metrics

	LoginRate     rate.Limit
	LoginBurst    int
	SecureCookies bool
	SessionTTL    time.Duration
}

// Server serves the fitlog HTTP API.
type Server struct {
	tracker  *tracker.Tracker
	sessions auth.Sessions
	log      *logrus.Logger
	metrics  *metrics.Metrics
	limiter  *loginLimiter

	secureCookies bool
	sessionTTL    time.Duration
	router        *mux.Router
}

// NewServer builds the router. Tracker and Sessions are required.
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.LoginRate == 0 {
		opts.LoginRate = DefaultLoginRate
	}
	if opts.LoginBurst == 0 {
		opts.LoginBurst = DefaultLoginBurst
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}

	s := &Server{
		tracker:       opts.Tracker,
		sessions:      opts.Sessions,
		log:           log,
		metrics:       opts.Metrics,
		limiter:       newLoginLimiter(opts.LoginRate, opts.LoginBurst, log),
		secureCookies: opts.SecureCookies,
		sessionTTL:    opts.SessionTTL,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const idPattern = "{id:[0-9a-fA-F-]{36}}"

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer(s.log))
	r.Use(instrument(s.log, s.metrics))
	r.Use(securityHeaders)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc(loginPath, s.handleLoginInfo).Methods(http.MethodGet)
	r.Handle(loginPath, s.limiter.middleware(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(requireSession(s.sessions, s.log))

	protected.HandleFunc("/home", s.handleHome).Methods(http.MethodGet)
	protected.HandleFunc("/records", s.handleRecords).Methods(http.MethodGet)

	protected.HandleFunc("/entries", s.handleDeleteAll).Methods(http.MethodDelete)
	protected.HandleFunc("/entries/"+idPattern, s.handleGetEntry).Methods(http.MethodGet)
	protected.HandleFunc("/entries/"+idPattern, s.handleDeleteEntry).Methods(http.MethodDelete)
	protected.HandleFunc("/entries/"+idPattern+"/edit", s.handleEditEntry).Methods(http.MethodPost)
	protected.HandleFunc("/entries/{kind}", s.handleListEntries).Methods(http.MethodGet)
	protected.HandleFunc("/entries/{kind}/search", s.handleListEntries).Methods(http.MethodPost)
	protected.HandleFunc("/entries/{kind}", s.handleCreateEntry).Methods(http.MethodPost)

	protected.HandleFunc("/goals", s.handleGetGoals).Methods(http.MethodGet)
	protected.HandleFunc("/goals", s.handleSaveGoals).Methods(http.MethodPost)
	protected.HandleFunc("/onboarding", s.handleOnboarding).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  s.tracker.Available(),
	})
}
