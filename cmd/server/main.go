package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/shopops/internal/config"
	"github.com/example/shopops/internal/database"
	"github.com/example/shopops/internal/handlers"
	"github.com/example/shopops/internal/logger"
	"github.com/example/shopops/internal/repository"
	"github.com/example/shopops/internal/routes"
	"github.com/example/shopops/internal/services"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.ConfigFromEnv()); err != nil {
		log.Fatalf("logger init: %v", err)
	}
	appLog := logger.App()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			appLog.WithError(err).Warn("Sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, gormlogger.Warn)
	if err != nil {
		appLog.WithError(err).Fatal("Database connection failed")
	}

	ctx := context.Background()

	var orders repository.OrderRepository = repository.NewGormOrderRepository(db)
	if cfg.OrderStore == "mongo" {
		client, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			appLog.WithError(err).Fatal("MongoDB connection failed")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		mongoOrders := repository.NewMongoOrderRepository(mdb)
		if err := mongoOrders.EnsureIndexes(ctx); err != nil {
			appLog.WithError(err).Fatal("MongoDB index setup failed")
		}
		orders = mongoOrders
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			appLog.WithError(err).Warn("Redis unavailable, dashboard stats will not be cached")
			cache = nil
		}
	}

	notifiers := services.MultiNotifier{
		services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat),
	}
	if cfg.SMTPHost != "" {
		notifiers = append(notifiers, services.NewMailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom))
	}

	stats := services.NewStatsService(orders, cache, cfg.StatsCacheTTL())
	orderService := services.NewOrderService(orders, repository.NewGormReviewRepository(db), stats, notifiers)

	if err := services.EnsureAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		appLog.WithError(err).Fatal("Admin bootstrap failed")
	}

	app := fiber.New(fiber.Config{
		AppName:      "ShopOps Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:requestid}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			fiber.HeaderAuthorization,
			handlers.ConfirmPhraseHeader,
		}, ","),
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	routes.Register(app, cfg, routes.Dependencies{
		DB:     db,
		Orders: orderService,
		Stats:  stats,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLog.WithError(err).Warn("Server shutdown")
		}
	}()

	appLog.Infof("Starting server on :%s (orders in %s)", cfg.AppPort, cfg.OrderStore)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		appLog.WithError(err).Fatal("fiber.Listen error")
	}
	orderService.Wait()
}
