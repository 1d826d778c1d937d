package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/paddockshare/paddockshare-backend/api/routes"
	"github.com/paddockshare/paddockshare-backend/internal/auth"
	"github.com/paddockshare/paddockshare-backend/internal/ballots"
	"github.com/paddockshare/paddockshare-backend/internal/basket"
	"github.com/paddockshare/paddockshare-backend/internal/checkout"
	"github.com/paddockshare/paddockshare-backend/internal/horses"
	"github.com/paddockshare/paddockshare-backend/internal/leads"
	"github.com/paddockshare/paddockshare-backend/internal/notifications"
	"github.com/paddockshare/paddockshare-backend/internal/ownerships"
	"github.com/paddockshare/paddockshare-backend/internal/promotions"
	"github.com/paddockshare/paddockshare-backend/internal/renewals"
	"github.com/paddockshare/paddockshare-backend/internal/users"
	"github.com/paddockshare/paddockshare-backend/internal/votes"
	"github.com/paddockshare/paddockshare-backend/internal/wallet"
	"github.com/paddockshare/paddockshare-backend/pkg/auth/session"
	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
	"github.com/paddockshare/paddockshare-backend/pkg/mail"
	"github.com/paddockshare/paddockshare-backend/pkg/migrate"
	"github.com/paddockshare/paddockshare-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()

	usersRepo := users.NewRepository(gormDB)
	horsesRepo := horses.NewRepository(gormDB)
	promotionsRepo := promotions.NewRepository(gormDB)
	basketRepo := basket.NewRepository(gormDB)
	ownershipsRepo := ownerships.NewRepository(gormDB)
	renewalsRepo := renewals.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	ballotsRepo := ballots.NewRepository(gormDB)
	votesRepo := votes.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	leadsRepo := leads.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOnWireError(logg, "auth service", err)

	promotionsService, err := promotions.NewService(promotionsRepo)
	exitOnWireError(logg, "promotions service", err)

	horsesService, err := horses.NewService(horses.ServiceParams{
		Repo:   horsesRepo,
		Promos: promotionsService,
		Logger: logg,
	})
	exitOnWireError(logg, "horses service", err)

	walletService, err := wallet.NewService(walletRepo)
	exitOnWireError(logg, "wallet service", err)

	renewalsService, err := renewals.NewService(renewalsRepo)
	exitOnWireError(logg, "renewals service", err)

	votesService, err := votes.NewService(votesRepo)
	exitOnWireError(logg, "votes service", err)

	notificationsService, err := notifications.NewService(notificationsRepo)
	exitOnWireError(logg, "notifications service", err)

	mailer := mail.NewFromConfig(cfg.Mail, logg)
	dispatcher, err := notifications.NewDispatcher(notificationsService, mailer, usersRepo, logg)
	exitOnWireError(logg, "notification dispatcher", err)

	ballotsService, err := ballots.NewService(ballots.ServiceParams{
		Tx:       dbClient,
		Repo:     ballotsRepo,
		Notifier: dispatcher,
		Logger:   logg,
	})
	exitOnWireError(logg, "ballots service", err)

	basketService, err := basket.NewService(basket.ServiceParams{
		Repo:       basketRepo,
		Horses:     horsesRepo,
		Cycles:     renewalsRepo,
		Ownerships: ownershipsRepo,
	})
	exitOnWireError(logg, "basket service", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Tx:         dbClient,
		Baskets:    basketRepo,
		Horses:     horsesRepo,
		Ownerships: ownershipsRepo,
		Renewals:   renewalsRepo,
		Wallet:     walletRepo,
		Promos:     promotionsService,
		Notifier:   dispatcher,
		Logger:     logg,
	})
	exitOnWireError(logg, "checkout service", err)

	ownershipsService, err := ownerships.NewService(ownershipsRepo, horsesRepo)
	exitOnWireError(logg, "ownerships service", err)

	leadsService, err := leads.NewService(leadsRepo)
	exitOnWireError(logg, "leads service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Horses:        horsesService,
			Promotions:    promotionsService,
			Basket:        basketService,
			Checkout:      checkoutService,
			Wallet:        walletService,
			Ballots:       ballotsService,
			Votes:         votesService,
			Renewals:      renewalsService,
			Notifications: notificationsService,
			Ownerships:    ownershipsService,
			Leads:         leadsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnWireError(logg *logger.Logger, component string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+component, err)
		os.Exit(1)
	}
}
