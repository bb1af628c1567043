package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	taskmiddleware "github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/middleware"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/iam"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/task"
)

// RouterOptions controls the construction of the HTTP router.
// Routes whose collaborators are nil are not mounted.
type RouterOptions struct {
	TaskService   *task.Service
	Authenticator iam.Authenticator

	// Login needs both Users and Tokens.
	Users    repository.UserFinder
	Tokens   TokenIssuer
	TokenTTL time.Duration

	Logger      *zap.Logger
	AuthMetrics *taskmiddleware.AuthMetrics
	Gatherer    prometheus.Gatherer

	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Location", "X-Request-Id"},
		MaxAge:         300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, the CORS policy,
// public endpoints and the bearer-protected API.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(taskmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if opts.Users != nil && opts.Tokens != nil {
		r.Post("/auth/login", HandleLogin(opts.Users, opts.Tokens, opts.TokenTTL, logger))
	} else {
		logger.Warn("skipping /auth/login: user finder or token issuer not configured")
	}

	if opts.Authenticator == nil {
		logger.Warn("no authenticator configured: protected routes not mounted")
		return r
	}

	r.Group(func(r chi.Router) {
		r.Use(taskmiddleware.Authenticate(opts.Authenticator,
			taskmiddleware.WithLogger(logger),
			taskmiddleware.WithMetrics(opts.AuthMetrics),
		))
		r.Use(taskmiddleware.RequirePrincipal)

		r.Get("/api/auth/whoami", HandleWhoAmI())

		if opts.TaskService != nil {
			NewTaskHandlers(opts.TaskService, logger).Mount(r)
		}
	})

	return r
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext alongside HTTP/1.1.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
