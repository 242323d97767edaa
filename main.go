package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"splitledger-backend/config"
	"splitledger-backend/database"
	"splitledger-backend/handlers"
	"splitledger-backend/ledger"
	"splitledger-backend/logging"
	"splitledger-backend/middleware"
	"splitledger-backend/services"
	"splitledger-backend/store"
)

const tokenTTL = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.Environment)
	slog.SetDefault(log)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("connect database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis is optional: without it every balance read recomputes.
	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, balance cache disabled", "error", err)
		redisClient = nil
	}
	cache := database.NewBalanceCache(redisClient)

	var mailer services.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.AppName, cfg.AppURL, log)
	} else {
		log.Info("sendgrid api key not set, email disabled")
		mailer = services.NewNoopMailer(log)
	}

	users := store.NewUserStore(db)
	notifier, err := services.NewNotifier(ctx, cfg.FirebaseCredsFile, mailer, users, log)
	if err != nil {
		log.Error("init notifier", "error", err)
		os.Exit(1)
	}

	engine := ledger.NewEngine(db, cache, log)
	tokens := services.NewTokenManager(cfg.JWTSecret, tokenTTL)
	invites := services.NewInviteService(
		store.NewInviteStore(db), users, store.NewGroupStore(db),
		ledger.NewGate(db), engine, mailer, log,
	)

	h := handlers.New(handlers.Deps{
		Log:      log,
		DB:       db,
		Engine:   engine,
		Invites:  invites,
		Notifier: notifier,
		Tokens:   tokens,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": cfg.AppName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired(tokens))
	{
		// User
		api.GET("/users/me", h.Me)
		api.PUT("/users/me", h.UpdateProfile)
		api.PUT("/users/me/fcm-token", h.UpdateFCMToken)
		api.POST("/users/search", h.SearchUsers)

		// Groups & membership
		api.POST("/groups", h.CreateGroup)
		api.GET("/groups", h.ListGroups)
		api.GET("/groups/:id", h.GetGroup)
		api.PUT("/groups/:id", h.UpdateGroup)
		api.PUT("/groups/:id/archive", h.ArchiveGroup)
		api.POST("/groups/:id/members", h.AddMember)
		api.DELETE("/groups/:id/members/:userId", h.RemoveMember)
		api.POST("/groups/:id/leave", h.LeaveGroup)

		// Categories
		api.POST("/groups/:id/categories", h.CreateCategory)
		api.GET("/groups/:id/categories", h.ListCategories)
		api.PUT("/groups/:id/categories/:categoryId", h.UpdateCategory)
		api.DELETE("/groups/:id/categories/:categoryId", h.DeleteCategory)

		// Spendings
		api.POST("/groups/:id/spendings", h.CreateSpending)
		api.GET("/groups/:id/spendings", h.ListSpendings)
		api.GET("/groups/:id/spendings/:spendingId", h.GetSpending)

		// Payments
		api.POST("/groups/:id/payments", h.CreatePayment)
		api.GET("/groups/:id/payments", h.ListPayments)
		api.POST("/payments/:paymentId/confirm", h.ConfirmPayment)
		api.GET("/payments/pending", h.ListPendingConfirmations)
		api.POST("/groups/:id/remind", h.RemindDebtor)

		// Balances
		api.GET("/groups/:id/balances", h.GroupBalances)
		api.GET("/balances", h.OverallBalances)

		// Invitations
		api.POST("/groups/:id/invites", h.CreateInvite)
		api.GET("/invites", h.ListMyInvites)
		api.POST("/invites/:token/accept", h.AcceptInvite)
		api.POST("/invites/:token/decline", h.DeclineInvite)

		// Budgets
		api.POST("/groups/:id/budgets", h.CreateBudget)
		api.GET("/groups/:id/budgets", h.ListBudgets)
		api.PUT("/groups/:id/budgets/:budgetId", h.UpdateBudget)
		api.DELETE("/groups/:id/budgets/:budgetId", h.DeleteBudget)

		// Activity
		api.GET("/activity", h.ListMyActivity)
		api.GET("/groups/:id/activity", h.ListActivity)
	}

	addr := "0.0.0.0:" + cfg.Port
	log.Info("server starting", "app", cfg.AppName, "addr", addr, "env", cfg.Environment)
	if err := r.Run(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
