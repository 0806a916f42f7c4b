package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/phillip/clubify-go/config"
	controllers "github.com/phillip/clubify-go/controllers"
	middleware "github.com/phillip/clubify-go/middleware"
	payments "github.com/phillip/clubify-go/payments"
	routes "github.com/phillip/clubify-go/routes"
	store "github.com/phillip/clubify-go/store"
	utils "github.com/phillip/clubify-go/utils"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	cfg, log := e.cfg, e.log

	if e.db != nil {
		if err := store.EnsureIndexes(ctx, e.db); err != nil {
			return err
		}
	}

	metrics := middleware.NewMetrics()

	guard, err := newGuard(cfg, e.store, log)
	if err != nil {
		return err
	}

	orch := &payments.Orchestrator{
		Gateway:       payments.DisabledGateway{},
		Store:         e.store,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.StripeCurrency,
		Log:           log,
		Metrics:       metrics,
	}
	if cfg.StripeSecretKey != "" {
		orch.Gateway = payments.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; payment intents are disabled")
	}
	if cfg.RedisURL != "" {
		rdb, err := newRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		orch.Dedupe = payments.NewRedisDeduper(rdb, cfg.WebhookDedupe)
	}

	deps := &controllers.Deps{
		Store:    e.store,
		Payments: orch,
		Images:   newImages(cfg, log),
		Mailer:   newMailer(cfg, log),
		Log:      log,
		Timeout:  cfg.RequestTimeout,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		metrics.Middleware(),
		cors.New(corsConfig(cfg.CORSOrigins)),
	)
	routes.SetupRoutes(r, deps, guard, metrics)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("auth_mode", cfg.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newGuard(cfg *config.Config, s *store.Store, log *zap.Logger) (*middleware.Guard, error) {
	if cfg.IsProduction() && cfg.AuthMode != config.AuthJWT {
		return nil, errors.New("production requires AUTH_MODE=jwt, got " + cfg.AuthMode)
	}
	g := &middleware.Guard{Users: s.Users, Log: log, Timeout: cfg.RequestTimeout}
	switch cfg.AuthMode {
	case config.AuthJWT:
		g.Verifier = &middleware.JWTVerifier{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}
	case config.AuthTrustedHeader:
		log.Warn("AUTH_MODE=trusted-header: identity headers are NOT verified, development only")
		g.Verifier = middleware.TrustedHeaderVerifier{}
	case config.AuthDisabled:
		log.Warn("AUTH_MODE=disabled: every request is admitted as admin, never use in production")
		g.Verifier = middleware.TrustedHeaderVerifier{}
		g.Bypass = true
	default:
		return nil, errors.New("unknown auth mode " + cfg.AuthMode)
	}
	return g, nil
}

func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func newImages(cfg *config.Config, log *zap.Logger) utils.ImageStore {
	if !cfg.ImagesEnabled() {
		log.Warn("Cloudinary credentials missing; image uploads are disabled")
		return utils.DisabledImages{}
	}
	cld, err := utils.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Warn("Cloudinary init failed; image uploads are disabled", zap.Error(err))
		return utils.DisabledImages{}
	}
	return cld
}

func newMailer(cfg *config.Config, log *zap.Logger) utils.Mailer {
	if cfg.ZeptoAPIKey == "" || cfg.EmailFrom == "" {
		return utils.LogMailer{Log: log}
	}
	return utils.NewZeptoMailer(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom, cfg.EmailFromName)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "If-None-Match", "X-Request-ID", "X-User-Email"},
		ExposeHeaders: []string{"Content-Length", "ETag", "Last-Modified", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}
