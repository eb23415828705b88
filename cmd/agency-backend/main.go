// Command agency-backend runs the social media agency automation core: the
// scheduled jobs (publisher, responder, engine, collector, analyzers, token
// monitor) plus the admin HTTP surface that exposes their status, reports,
// and notifications.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agenciapulso/go-agency-backend/internal/config"
	httpapi "github.com/agenciapulso/go-agency-backend/internal/http"
	"github.com/agenciapulso/go-agency-backend/internal/notify"
	"github.com/agenciapulso/go-agency-backend/internal/observability"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
	"github.com/agenciapulso/go-agency-backend/internal/scheduler"
	"github.com/agenciapulso/go-agency-backend/internal/services"
	"github.com/agenciapulso/go-agency-backend/internal/social"
	"github.com/agenciapulso/go-agency-backend/internal/sysutil"
	"github.com/agenciapulso/go-agency-backend/internal/textgen"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// Collaborators
	socialClient := social.New(cfg.Social)
	genClient := textgen.New(cfg.TextGen)
	notifier := notify.New(db, cfg.WebhookURL)

	// Services
	publisher := services.NewPublisher(db, socialClient, notifier, cfg.Safety.MaxPostsPerDay, cfg.Safety.MinPostInterval)
	responder := services.NewResponder(db, socialClient, genClient, cfg.Jobs.ResponderRecentPosts, cfg.Jobs.ReplyThrottle)
	strategist := services.NewContentStrategist(genClient)
	engine := services.NewEngine(db, strategist, notifier, cfg.Jobs.EngineRecentTopics)
	collector := services.NewCollector(db, socialClient, cfg.Jobs.CollectorWindowDays, cfg.Jobs.CollectorMaxPosts, cfg.Jobs.CollectThrottle)
	analyzer := services.NewAnalyzer(db, genClient, notifier)
	products := services.NewProductsService(db, genClient)
	tokenMonitor := services.NewTokenMonitor(socialClient, notifier)

	// Job registry. The token monitor also runs once at boot so a dead
	// credential is flagged immediately, not at the next 09:00.
	jobs := scheduler.New()
	mustRegister(jobs, "publish-check", cfg.Jobs.PublishSpec, false, publisher.RunCycle)
	mustRegister(jobs, "comment-check", cfg.Jobs.CommentSpec, false, responder.RunCycle)
	mustRegister(jobs, "content-engine", cfg.Jobs.EngineSpec, false, engine.RunCycle)
	mustRegister(jobs, "performance-collector", cfg.Jobs.MetricsSpec, false, collector.RunCycle)
	mustRegister(jobs, "metrics-analyzer", cfg.Jobs.MetricsSpec, false, analyzer.RunMetricsCycle)
	mustRegister(jobs, "trending-analyzer", cfg.Jobs.TrendingSpec, false, analyzer.RunTrendingCycle)
	mustRegister(jobs, "product-orchestrator", cfg.Jobs.ProductsSpec, false, products.RunCycle)
	mustRegister(jobs, "token-monitor", cfg.Jobs.TokenSpec, true, tokenMonitor.RunCycle)
	jobs.Start()

	// Admin HTTP surface
	r := gin.New()
	httpapi.RegisterRoutes(r, db, jobs, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("stopped")
}

func mustRegister(r *scheduler.Registry, name, spec string, onBoot bool, h scheduler.Handler) {
	if err := r.Register(name, spec, onBoot, h); err != nil {
		log.Fatal().Err(err).Str("job", name).Msg("job registration failed")
	}
}
