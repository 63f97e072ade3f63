package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"officehub/internal/health"
	"officehub/pkg/config"
	"officehub/pkg/contracts"
	apperrors "officehub/pkg/errors"
	httputil "officehub/pkg/http"
	"officehub/pkg/metrics"
	"officehub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	server           *http.Server
	handler          http.Handler
	idempotencyStore middleware.IdempotencyStore
	shutdownHooks    []func(context.Context)
}

// NewApplication builds an unconfigured application. m may be nil when
// metrics are disabled.
func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{cfg: cfg, metrics: m}
}

// SetApp mounts the domain handlers behind the full middleware chain and
// prepares the HTTP server.
func (a *Application) SetApp(appHandlers ...contracts.Handler) error {
	healthHandler := a.buildHealthHandler()

	apiHandler, err := a.buildAPIHandler(appHandlers)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler)
	mux.Handle("/ready", healthHandler)
	if a.cfg.MetricsEnabled && a.metrics != nil {
		mux.Handle("/metrics", a.metrics.Handler())
		a.cfg.Log.Info("Metrics endpoint enabled", "path", "/metrics")
	}
	mux.Handle("/api/", apiHandler)
	mux.Handle("/uploads/", a.wrapStatic(http.StripPrefix("/uploads/", uploadsHandler(a.cfg.UploadsDir))))
	mux.Handle("/", a.wrapStatic(frontendHandler(a.cfg.StaticDir)))

	a.handler = mux
	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
	return nil
}

// Handler exposes the fully wired router, mostly for tests.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// OnShutdown registers fn to run after the HTTP server stopped, in reverse
// registration order.
func (a *Application) OnShutdown(fn func(context.Context)) {
	a.shutdownHooks = append(a.shutdownHooks, fn)
}

func (a *Application) buildHealthHandler() http.Handler {
	healthRouter := httprouter.New()
	health.NewHealthHandler(a.cfg.Client, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log, a.metrics)(healthHTTPHandler)
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
	return healthHTTPHandler
}

func (a *Application) buildAPIHandler(appHandlers []contracts.Handler) (http.Handler, error) {
	appRouter := httprouter.New()
	appRouter.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteError(w, apperrors.NotFound("Route"))
	})
	appRouter.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "Method not allowed", http.StatusMethodNotAllowed))
	})
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	redisClient := a.cfg.Client.Redis

	rateLimiter, err := middleware.NewClientRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		redisClient,
		middleware.ClientIP,
		a.cfg.Log,
	)
	if err != nil {
		return nil, err
	}

	if redisClient != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(redisClient, a.cfg.IdempotencyTTL)
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}

	// Order: Recovery → Logging → Metrics → CORS → MaxSize → ContentType → RateLimit → Timeout → Idempotency → Router
	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader, a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.ClientRateLimit(rateLimiter)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHTTPHandler)
	appHTTPHandler = middleware.CORS(a.cfg.CORSAllowedOrigins)(appHTTPHandler)
	appHTTPHandler = middleware.HTTPMetrics(a.metrics)(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.cfg.Log, a.metrics)(appHTTPHandler)
	a.cfg.Log.Info("Application endpoints configured with full middleware stack",
		"rate_limit_store", storeName(redisClient != nil),
	)
	return appHTTPHandler, nil
}

func (a *Application) wrapStatic(h http.Handler) http.Handler {
	h = middleware.HTTPMetrics(a.metrics)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	return middleware.Recovery(a.cfg.Log, a.metrics)(h)
}

func storeName(shared bool) string {
	if shared {
		return "redis"
	}
	return "memory"
}

// Run serves until SIGINT/SIGTERM and then shuts down gracefully.
func (a *Application) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		a.stopBackground()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.cfg.Log.Error("HTTP server failed", "error", err)
		return err

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		return a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() error {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
			shutdownErr = err
		}
	}

	a.stopBackground()
	for i := len(a.shutdownHooks) - 1; i >= 0; i-- {
		a.shutdownHooks[i](ctx)
	}

	a.cfg.Log.Info("Server stopped gracefully")
	return shutdownErr
}

func (a *Application) stopBackground() {
	a.cfg.Log.Info("Stopping background workers...")
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	a.cfg.Log.Info("Background workers stopped")
}
