package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paddockshare/paddockshare-backend/api/controllers"
	"github.com/paddockshare/paddockshare-backend/api/middleware"
	authsvc "github.com/paddockshare/paddockshare-backend/internal/auth"
	ballotsvc "github.com/paddockshare/paddockshare-backend/internal/ballots"
	basketsvc "github.com/paddockshare/paddockshare-backend/internal/basket"
	checkoutsvc "github.com/paddockshare/paddockshare-backend/internal/checkout"
	horsesvc "github.com/paddockshare/paddockshare-backend/internal/horses"
	leadsvc "github.com/paddockshare/paddockshare-backend/internal/leads"
	notificationsvc "github.com/paddockshare/paddockshare-backend/internal/notifications"
	ownershipsvc "github.com/paddockshare/paddockshare-backend/internal/ownerships"
	promotionsvc "github.com/paddockshare/paddockshare-backend/internal/promotions"
	renewalsvc "github.com/paddockshare/paddockshare-backend/internal/renewals"
	votesvc "github.com/paddockshare/paddockshare-backend/internal/votes"
	walletsvc "github.com/paddockshare/paddockshare-backend/internal/wallet"
	"github.com/paddockshare/paddockshare-backend/pkg/auth/session"
	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
	"github.com/paddockshare/paddockshare-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth          authsvc.Service
	Horses        horsesvc.Service
	Promotions    promotionsvc.Service
	Basket        basketsvc.Service
	Checkout      checkoutsvc.Service
	Wallet        walletsvc.Service
	Ballots       ballotsvc.Service
	Votes         votesvc.Service
	Renewals      renewalsvc.Service
	Notifications notificationsvc.Service
	Ownerships    ownershipsvc.Service
	Leads         leadsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	leadPolicy := middleware.NewAuthRateLimitPolicy(
		"lead",
		cfg.LeadRateLimit.Window,
		cfg.LeadRateLimit.IPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())

		r.With(middleware.OptionalAuth(cfg.JWT, logg)).Group(func(r chi.Router) {
			r.Get("/horses", controllers.HorseList(svcs.Horses, logg))
			r.Get("/horses/{horseId}", controllers.HorseDetail(svcs.Horses, logg))
			r.Get("/horses/{horseId}/renewal-cycles", controllers.RenewalCyclesByHorse(svcs.Renewals, logg))
		})

		r.With(
			middleware.AuthRateLimit(leadPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/leads", controllers.LeadCreate(svcs.Leads, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, sessions, logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", controllers.BasketGet(svcs.Basket, logg))
			r.Post("/lines", controllers.BasketAddLine(svcs.Basket, logg))
			r.Patch("/lines/{lineId}", controllers.BasketUpdateLine(svcs.Basket, logg))
			r.Delete("/lines/{lineId}", controllers.BasketRemoveLine(svcs.Basket, logg))
		})

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(svcs.Wallet, logg))
			r.Get("/statement", controllers.WalletStatement(svcs.Wallet, logg))
		})

		r.Route("/ballots", func(r chi.Router) {
			r.Get("/", controllers.BallotList(svcs.Ballots, logg))
			r.Get("/{ballotId}", controllers.BallotGet(svcs.Ballots, logg))
			r.Post("/{ballotId}/entries", controllers.BallotEnter(svcs.Ballots, logg))
			r.Get("/{ballotId}/results", controllers.BallotResults(svcs.Ballots, logg))
			r.Get("/{ballotId}/results/me", controllers.BallotMyResult(svcs.Ballots, logg))
		})

		r.Route("/votes", func(r chi.Router) {
			r.Get("/", controllers.VoteList(svcs.Votes, logg))
			r.Get("/{voteId}", controllers.VoteGet(svcs.Votes, logg))
			r.Post("/{voteId}/responses", controllers.VoteRespond(svcs.Votes, logg))
			r.Get("/{voteId}/tally", controllers.VoteTally(svcs.Votes, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
		})

		r.Get("/my-stable", controllers.MyStable(svcs.Ownerships, logg))
		r.Get("/purchase-history", controllers.PurchaseHistory(svcs.Ownerships, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, sessions, logg),
			middleware.RequireAdmin(logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Get("/ping", controllers.AdminPing())

		r.Route("/horses", func(r chi.Router) {
			r.Post("/", controllers.AdminHorseCreate(svcs.Horses, logg))
			r.Patch("/{horseId}", controllers.AdminHorseUpdate(svcs.Horses, logg))
			r.Get("/{horseId}/promotions", controllers.AdminPromotionListByHorse(svcs.Promotions, logg))
			r.Post("/{horseId}/promotions", controllers.AdminPromotionCreate(svcs.Promotions, logg))
		})

		r.Patch("/promotions/{promotionId}", controllers.AdminPromotionUpdate(svcs.Promotions, logg))

		r.Route("/ballots", func(r chi.Router) {
			r.Post("/", controllers.AdminBallotCreate(svcs.Ballots, logg))
			r.Post("/{ballotId}/close", controllers.AdminBallotClose(svcs.Ballots, logg))
			r.Post("/{ballotId}/draw", controllers.AdminBallotDraw(svcs.Ballots, logg))
		})

		r.Route("/votes", func(r chi.Router) {
			r.Post("/", controllers.AdminVoteCreate(svcs.Votes, logg))
			r.Post("/{voteId}/close", controllers.AdminVoteClose(svcs.Votes, logg))
		})

		r.Route("/renewal-cycles", func(r chi.Router) {
			r.Post("/", controllers.AdminRenewalCycleCreate(svcs.Renewals, logg))
			r.Post("/{cycleId}/close", controllers.AdminRenewalCycleClose(svcs.Renewals, logg))
			r.Get("/{cycleId}/responses", controllers.AdminRenewalResponses(svcs.Renewals, logg))
		})

		r.Post("/wallet/credits", controllers.AdminWalletGrantCredit(svcs.Wallet, logg))

		r.Get("/leads", controllers.AdminLeadList(svcs.Leads, logg))
	})

	return r
}
