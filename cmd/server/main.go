// Command server runs the plant-care backend: the REST API, the species
// catalog seeder, and the cron-driven reminder dispatcher.
//
// Startup order:
//  1. Load .env (best effort) and the typed config
//  2. Configure zerolog (global level, optional pretty console)
//  3. Set up OpenTelemetry tracing (no-op unless OTEL_ENABLED)
//  4. Open SQLite, run migrations, seed the species catalog
//  5. Build the notification channel, bot command loop, and reminder service
//  6. Register the cron reminder jobs and start the scheduler
//  7. Serve HTTP until SIGINT/SIGTERM, then drain gracefully
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

	"github.com/verdant/go-plant-backend/internal/bot"
	"github.com/verdant/go-plant-backend/internal/config"
	httpapi "github.com/verdant/go-plant-backend/internal/http"
	"github.com/verdant/go-plant-backend/internal/notify"
	"github.com/verdant/go-plant-backend/internal/observability"
	"github.com/verdant/go-plant-backend/internal/repo"
	"github.com/verdant/go-plant-backend/internal/scheduler"
	"github.com/verdant/go-plant-backend/internal/services"
	"github.com/verdant/go-plant-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	seeded, err := services.NewSpeciesService(db).Seed(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("species seeding failed")
	}
	if seeded > 0 {
		log.Info().Int("count", seeded).Msg("species catalog seeded")
	}

	var notifier notify.Notifier
	if cfg.Telegram.BotToken != "" {
		opts := []notify.TelegramOption{}
		if cfg.Telegram.APIBase != "" {
			opts = append(opts, notify.WithAPIBase(cfg.Telegram.APIBase))
		}
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, opts...)

		botOpts := []bot.Option{bot.WithWebAppURL(cfg.Telegram.WebAppURL)}
		if cfg.Telegram.APIBase != "" {
			botOpts = append(botOpts, bot.WithAPIBase(cfg.Telegram.APIBase))
		}
		commands := bot.New(cfg.Telegram.BotToken,
			services.NewUserService(db), services.NewPlantService(db), botOpts...)
		go func() {
			if err := commands.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("bot command loop stopped")
			}
		}()
	} else {
		log.Warn().Msg("no bot token configured, reminders will be logged only")
		notifier = notify.NopNotifier{}
	}

	reminderSvc := services.NewReminderService(db, notifier)
	reminderSvc.SendDelay = cfg.Reminder.SendDelay
	reminderSvc.TestCap = cfg.Reminder.TestCap

	sched := scheduler.New(sysutil.LocationOrUTC(cfg.Reminder.Timezone), reminderSvc)
	for _, spec := range []string{cfg.Reminder.MorningSpec, cfg.Reminder.EveningSpec} {
		if spec == "" {
			continue
		}
		if err := sched.AddReminderJob(spec); err != nil {
			log.Fatal().Err(err).Str("spec", spec).Msg("invalid reminder cron spec")
		}
	}
	sched.Start()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, reminderSvc, cfg)

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

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Let in-flight requests and a running reminder sweep finish.
	drainCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown incomplete")
	}
	select {
	case <-sched.Stop().Done():
	case <-drainCtx.Done():
		log.Warn().Msg("scheduler jobs still running at shutdown deadline")
	}
	if err := shutdownOTel(drainCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown incomplete")
	}

	log.Info().Msg("bye")
}
