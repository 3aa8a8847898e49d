package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/arnold/fitchallenge-api/internal/config"
	"github.com/arnold/fitchallenge-api/internal/database"
	"github.com/arnold/fitchallenge-api/internal/handlers"
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/routes"
	"github.com/arnold/fitchallenge-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug("no .env file found")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return log
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, database.LogLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("database ready", zap.Bool("postgres", cfg.UsesPostgres()))

	var pusher services.Pusher
	if fcm := services.InitPush(ctx, cfg.FCMServiceAccount, log); fcm != nil {
		pusher = fcm
	}

	notifications := services.NewNotificationService(db, log, pusher)
	defer notifications.Wait()

	auth := middleware.NewAuth(cfg.JWTSecret)
	h := handlers.New(auth, handlers.Services{
		Users:         services.NewUserService(db),
		Challenges:    services.NewChallengeService(db),
		Progress:      services.NewProgressService(db),
		Invitations:   services.NewInvitationService(db),
		Leaderboard:   services.NewLeaderboardService(db),
		Activity:      services.NewActivityService(db),
		Notifications: notifications,
		Profiles:      services.NewProfileService(db),
		Workouts:      services.NewWorkoutService(db),
		Nutrition:     services.NewNutritionService(db),
		Analytics:     services.NewAnalyticsService(db),
	}, handlers.NewHub(log), log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	app := fiber.New(fiber.Config{
		AppName:               "fitchallenge-api",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogger(log))
	app.Use(metrics.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}
		return c.JSON(fiber.Map{"status": "healthy", "service": "fitchallenge-api"})
	})

	if cfg.MetricsUser != "" {
		app.Get("/metrics",
			basicauth.New(basicauth.Config{
				Users: map[string]string{cfg.MetricsUser: cfg.MetricsPass},
				Realm: "Metrics",
			}),
			adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
	} else {
		log.Info("METRICS_USER not set, /metrics disabled")
	}

	// Health and metrics stay reachable for scrapers; everything else is limited.
	app.Use(limiter.Handler())
	routes.Setup(app, h, auth)

	errc := make(chan error, 1)
	go func() {
		addr := ":" + strings.TrimPrefix(cfg.Port, ":")
		log.Info("listening", zap.String("addr", addr))
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
