package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/biocatchltd/hekshermgmt/internal/config"
	"github.com/biocatchltd/hekshermgmt/internal/constants"
	"github.com/biocatchltd/hekshermgmt/internal/heksher"
	"github.com/biocatchltd/hekshermgmt/internal/logger"
	"github.com/biocatchltd/hekshermgmt/internal/management"
	"github.com/biocatchltd/hekshermgmt/pkg/health"
	"github.com/biocatchltd/hekshermgmt/pkg/metrics"
	"github.com/biocatchltd/hekshermgmt/pkg/middleware"
	"github.com/biocatchltd/hekshermgmt/pkg/ratelimit"
	"github.com/biocatchltd/hekshermgmt/pkg/retry"
	"github.com/biocatchltd/hekshermgmt/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	heksherClient  heksher.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config: cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.config.Tracing, "hekshermgmt")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initHeksher(ctx); err != nil {
		return fmt.Errorf("failed to initialize heksher client: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	return nil
}

// initHeksher builds the client and verifies the engine is reachable before
// the server starts accepting traffic. The ping runs against the raw client
// so startup retries don't trip the breaker.
func (a *App) initHeksher(ctx context.Context) error {
	var opts []heksher.Option
	if a.config.Tracing.Enabled {
		opts = append(opts, heksher.WithTransport(tracing.WrapTransport(nil)))
	}

	client := heksher.NewClient(a.config.Heksher, opts...)

	policy := retry.DefaultPolicy()
	if a.config.Heksher.StartupRetry.MaxAttempts > 0 {
		policy.MaxAttempts = a.config.Heksher.StartupRetry.MaxAttempts
	}
	if a.config.Heksher.StartupRetry.InitialInterval > 0 {
		policy.InitialInterval = a.config.Heksher.StartupRetry.InitialInterval
	}
	if a.config.Heksher.StartupRetry.MaxInterval > 0 {
		policy.MaxInterval = a.config.Heksher.StartupRetry.MaxInterval
	}
	if a.config.Heksher.StartupRetry.Multiplier > 0 {
		policy.Multiplier = a.config.Heksher.StartupRetry.Multiplier
	}
	if a.config.Heksher.StartupRetry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = a.config.Heksher.StartupRetry.MaxElapsedTime
	}

	err := retry.RetryNotify(ctx, policy,
		func() error { return client.Ping(ctx) },
		func(err error, next time.Duration) {
			a.logger.WarnwCtx(ctx, "Heksher ping failed, retrying",
				"error", err, "next_attempt_in", next)
		})
	if err != nil {
		return fmt.Errorf("heksher at %s is unreachable: %w", a.config.Heksher.URL, err)
	}

	if a.config.CircuitBreaker.Enabled {
		a.heksherClient = heksher.NewCircuitBreakerClient(client, a.config.CircuitBreaker)
	} else {
		a.heksherClient = client
	}
	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("hekshermgmt"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		if len(a.config.CORS.AllowOrigins) > 0 {
			corsConfig.AllowOrigins = a.config.CORS.AllowOrigins
		} else {
			corsConfig.AllowAllOrigins = true
		}
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, a.identityHeader())
		router.Use(cors.New(corsConfig))
	}

	if a.config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.config.RateLimit.RPS,
			Burst:           a.config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.InfowCtx(context.Background(), "Rate limiting enabled",
			"rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	svc := management.NewService(a.heksherClient, a.logger, a.config.Export.MetadataFields)
	handler := management.NewHandler(svc, a.logger, bannerFromConfig(a.config.Banner))

	identityMW := middleware.IdentityMiddleware(middleware.IdentityConfig{
		Header:      a.config.Security.IdentityHeader,
		RequireUser: a.config.Security.RequireUser,
	})
	handler.RegisterRoutes(router, identityMW)

	metrics.Register()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPingChecker("heksher", a.heksherClient))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) identityHeader() string {
	if a.config.Security.IdentityHeader != "" {
		return a.config.Security.IdentityHeader
	}
	return middleware.DefaultIdentityHeader
}

func bannerFromConfig(cfg config.BannerConfig) *management.Banner {
	if cfg.Text == "" {
		return nil
	}
	return &management.Banner{
		Text:      cfg.Text,
		Color:     cfg.Color,
		TextColor: cfg.TextColor,
	}
}

func (a *App) initServer() error {
	port := a.config.Server.Port
	if port == 0 {
		port = constants.DefaultPort
	}
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.router,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "Server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	if a.heksherClient != nil {
		a.heksherClient.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
