package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paddockshare/paddockshare-backend/internal/ballots"
	"github.com/paddockshare/paddockshare-backend/internal/cron"
	"github.com/paddockshare/paddockshare-backend/internal/notifications"
	"github.com/paddockshare/paddockshare-backend/internal/renewals"
	"github.com/paddockshare/paddockshare-backend/internal/users"
	"github.com/paddockshare/paddockshare-backend/internal/votes"
	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
	"github.com/paddockshare/paddockshare-backend/pkg/mail"
	"github.com/paddockshare/paddockshare-backend/pkg/metrics"
	"github.com/paddockshare/paddockshare-backend/pkg/migrate"
	"github.com/paddockshare/paddockshare-backend/pkg/redis"
)

const lockKeyFormat = "ps:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()

	notificationsRepo := notifications.NewRepository(gormDB)
	notificationsService, err := notifications.NewService(notificationsRepo)
	exitOnWireError(logg, "notifications service", err)

	mailer := mail.NewFromConfig(cfg.Mail, logg)
	dispatcher, err := notifications.NewDispatcher(notificationsService, mailer, users.NewRepository(gormDB), logg)
	exitOnWireError(logg, "notification dispatcher", err)

	ballotsService, err := ballots.NewService(ballots.ServiceParams{
		Tx:       dbClient,
		Repo:     ballots.NewRepository(gormDB),
		Notifier: dispatcher,
		Logger:   logg,
	})
	exitOnWireError(logg, "ballots service", err)

	votesService, err := votes.NewService(votes.NewRepository(gormDB))
	exitOnWireError(logg, "votes service", err)

	renewalsService, err := renewals.NewService(renewals.NewRepository(gormDB))
	exitOnWireError(logg, "renewals service", err)

	registry := cron.NewRegistry()

	if !cfg.Cron.DisableBallotClose {
		job, err := cron.NewBallotCutoffJob(cron.SweepJobParams{Logger: logg, Sweeper: ballotsService})
		exitOnWireError(logg, "ballot cutoff job", err)
		registry.Register(job)
	}
	if !cfg.Cron.DisableVoteClose {
		job, err := cron.NewVoteCutoffJob(cron.SweepJobParams{Logger: logg, Sweeper: votesService})
		exitOnWireError(logg, "vote cutoff job", err)
		registry.Register(job)
	}

	cycleJob, err := cron.NewRenewalCycleCloseJob(cron.SweepJobParams{Logger: logg, Sweeper: renewalsService})
	exitOnWireError(logg, "renewal cycle close job", err)
	registry.Register(cycleJob)

	if !cfg.Cron.DisableNotifications {
		job, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
			Logger:     logg,
			Repository: notificationsRepo,
			Retention:  int(cfg.Cron.NotificationTTL.Hours() / 24),
		})
		exitOnWireError(logg, "notification cleanup job", err)
		registry.Register(job)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

func exitOnWireError(logg *logger.Logger, component string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+component, err)
		os.Exit(1)
	}
}
