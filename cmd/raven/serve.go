package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/aquilesbailo123/Raven-backend/docs"
	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/cache"
	"github.com/aquilesbailo123/Raven-backend/pkg/campaigns"
	"github.com/aquilesbailo123/Raven-backend/pkg/challenges"
	"github.com/aquilesbailo123/Raven-backend/pkg/config"
	"github.com/aquilesbailo123/Raven-backend/pkg/financials"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/logger"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
	"github.com/aquilesbailo123/Raven-backend/pkg/notify"
	"github.com/aquilesbailo123/Raven-backend/pkg/onboarding"
	"github.com/aquilesbailo123/Raven-backend/pkg/otp"
	"github.com/aquilesbailo123/Raven-backend/pkg/pipeline"
	"github.com/aquilesbailo123/Raven-backend/pkg/readiness"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/sendemail"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/users"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := a.connect(ctx, a.cfg.Database.ApplySchemaOnStart)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.buildRouter(pool, store, metrics.New()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.listen(srv)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("server exiting")
	return nil
}

// listen blocks until the server stops; a graceful shutdown returns nil.
func (a *app) listen(srv *http.Server) error {
	var err error
	if !a.cfg.TLS.Enabled {
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.Bool("tls", false))
		err = srv.ListenAndServe()
	} else {
		tlsConfig, certFile, keyFile, tlsErr := buildTLSConfig(a.cfg.TLS, a.cfg.IsProduction())
		if tlsErr != nil {
			return fmt.Errorf("TLS setup: %w", tlsErr)
		}
		srv.TLSConfig = tlsConfig
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.Bool("tls", true))
		err = srv.ListenAndServeTLS(certFile, keyFile)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// openCache returns Redis when REDIS_URL is set and the in-process store
// otherwise.
func (a *app) openCache(ctx context.Context) (cache.Store, error) {
	if a.cfg.Redis.URL == "" {
		a.log.Info("REDIS_URL not set, using in-process cache")
		return cache.NewMemory(), nil
	}
	store, err := cache.NewRedis(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.log.Info("connected to Redis")
	return store, nil
}

func (a *app) buildRouter(pool *pgxpool.Pool, store cache.Store, m *metrics.Metrics) *gin.Engine {
	log := a.log
	tokens := auth.NewTokenService(a.cfg.JWT.SigningKey, a.cfg.JWT.Issuer, a.cfg.JWT.TTL)
	emailService := sendemail.NewEmailService(a.cfg.SendGrid, log)

	// Shared stores.
	usersRepo := users.NewPostgresUserRepository(pool)
	startupsRepo := startups.NewPostgresStartupRepository(pool)
	incubatorsRepo := incubators.NewPostgresIncubatorRepository(pool)

	hub := notify.NewHub()
	notificationService := notify.NewNotificationService(notify.NewPostgresNotificationRepository(pool), hub, emailService, m, log)

	otpService := otp.NewOTPService(otp.NewPostgresOTPRepository(pool), usersRepo, emailService, store, tokens, log)
	usersService := users.NewUserService(usersRepo, store, tokens, otpService, log)

	startupsService := startups.NewStartupService(startupsRepo, log)
	incubatorsService := incubators.NewIncubatorService(incubatorsRepo, startupsRepo, log)
	readinessService := readiness.NewReadinessService(readiness.NewPostgresReadinessRepository(pool),
		startupsRepo, incubatorsRepo, readiness.NewPostgresStoreTx(pool), notificationService, m, log)
	financialsService := financials.NewFinancialService(financials.NewPostgresFinancialRepository(pool), startupsRepo)
	pipelineService := pipeline.NewPipelineService(pipeline.NewPostgresPipelineRepository(pool),
		startupsRepo, pipeline.NewPostgresStoreTx(pool), log)
	onboardingService := onboarding.NewOnboardingService(onboarding.NewPostgresStoreTx(pool), m, log)

	campaignsRepo := campaigns.NewPostgresCampaignRepository(pool)
	campaignService := campaigns.NewCampaignService(campaignsRepo, campaigns.NewPostgresStoreTx(pool),
		startupsRepo, incubatorsRepo, notificationService, m, log)
	investmentService := campaigns.NewInvestmentService(campaignsRepo, startupsRepo, incubatorsRepo,
		notificationService, m, log)
	challengeService := challenges.NewChallengeService(challenges.NewPostgresChallengeRepository(pool),
		startupsRepo, incubatorsRepo, notificationService, log)

	router := gin.New()
	router.Use(logger.GinMiddleware(log), logger.Recovery(log), m.Middleware())
	router.Use(cors.New(corsConfig(a.cfg.CORS)))

	router.GET("/healthz", healthHandler(pool, store))
	router.GET("/metrics", m.Handler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := router.Group("/")
	protected := router.Group("/", auth.RequireAuth(tokens, log, auth.QueryTokenOn(notify.WebsocketPath)), auth.RequireUnfrozen(usersService))

	users.NewUserHandler(usersService).RegisterRoutes(public, protected)
	otp.NewOTPHandler(otpService).RegisterRoutes(public)

	startups.NewStartupHandler(startupsService).RegisterRoutes(protected)
	incubators.NewIncubatorHandler(incubatorsService).RegisterRoutes(protected)
	readiness.NewReadinessHandler(readinessService).RegisterRoutes(protected)
	financials.NewFinancialHandler(financialsService).RegisterRoutes(protected)
	pipeline.NewPipelineHandler(pipelineService).RegisterRoutes(protected)
	onboarding.NewOnboardingHandler(onboardingService).RegisterRoutes(protected)
	campaigns.NewCampaignHandler(campaignService).RegisterRoutes(protected)
	campaigns.NewInvestmentHandler(investmentService).RegisterRoutes(protected)
	challenges.NewChallengeHandler(challengeService).RegisterRoutes(protected)
	notify.NewNotificationHandler(notificationService, hub, a.cfg.CORS.AllowedOrigins, log).RegisterRoutes(protected)

	return router
}

func corsConfig(c config.CORS) cors.Config {
	return cors.Config{
		AllowOrigins:     c.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: c.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// @Summary      Liveness and dependency check
// @Tags         health
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /healthz [get]
func healthHandler(database, store pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx); err != nil {
			response.SendAPIResponse(c, http.StatusServiceUnavailable, false, "database unavailable", nil)
			return
		}
		if err := store.Ping(ctx); err != nil {
			response.SendAPIResponse(c, http.StatusServiceUnavailable, false, "cache unavailable", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusOK, true, "ok", nil)
	}
}
