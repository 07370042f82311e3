package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/cart"
	"github.com/01moynul/inkframe-golang/internal/checkout"
	"github.com/01moynul/inkframe-golang/internal/config"
	"github.com/01moynul/inkframe-golang/internal/database"
	"github.com/01moynul/inkframe-golang/internal/email"
	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/handlers"
	"github.com/01moynul/inkframe-golang/internal/logger"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/payments"
	"github.com/01moynul/inkframe-golang/internal/routes"
	"github.com/01moynul/inkframe-golang/internal/status"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/01moynul/inkframe-golang/internal/telemetry"
	"github.com/01moynul/inkframe-golang/internal/uploads"
	"github.com/01moynul/inkframe-golang/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 20 * time.Second

// newServer bounds every phase of a request.
func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func main() {
	// 0. --- Load Environment Variables (.env) ---
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.AppEnv)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "inkframe-api", cfg.TracingEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	st := store.New(db)

	// 2. --- Sessions (Redis deny-list when configured) ---
	var revoker auth.Revoker = auth.NopRevoker{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, logout revocation degraded")
		}
		revoker = auth.NewRedisRevoker(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logged-out tokens stay valid until expiry")
	}
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, revoker)

	var oidcProvider *auth.OIDCProvider
	if cfg.OIDCEnabled() {
		oidcProvider, err = auth.NewOIDCProvider(ctx, auth.OIDCConfig{
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
		})
		if err != nil {
			log.Fatal().Err(err).Str("issuer", cfg.OIDCIssuer).Msg("failed to discover OIDC provider")
		}
	}

	// 3. --- Side channels ---
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	mailer := email.NewMailer(email.Config{
		APIKey:      cfg.ResendAPIKey,
		From:        cfg.MailFrom,
		AdminEmail:  cfg.AdminEmail,
		FrontendURL: cfg.FrontendOrigin,
	})
	gateway := payments.NewGateway(payments.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.Currency,
		FrontendURL:   cfg.FrontendOrigin,
	})

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:    st,
		Cart:     cart.NewService(cart.FromStore(st)),
		Checkout: checkout.NewService(checkout.FromStore(st), mailer, publisher, gateway),
		Status:   status.NewManager(status.FromStore(st), mailer, publisher),
		Sessions: sessions,
		OIDC:     oidcProvider,
		Mailer:   mailer,
		Payments: gateway,
		Uploads:  uploads.NewStorage(cfg.UploadDir, cfg.BaseURL),
		Events:   publisher,
		Cookies:  middleware.Cookies{Secure: cfg.CookieSecure},

		FrontendURL: cfg.FrontendOrigin,
	}

	// 4. --- Background Workers ---
	sweeper := worker.NewInvoiceSweeper(st, cfg.InvoiceSweepInterval)
	go sweeper.Run(ctx)

	// --- Router Setup ---
	router := routes.SetupRouter(app)
	srv := newServer(cfg.HTTPAddr, telemetry.Handler(router, "inkframe-api"))

	// --- Start Server ---
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("starting Inkframe API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	mailer.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}
}
