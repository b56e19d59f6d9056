package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"nala-backend/config"
	"nala-backend/controllers"
	"nala-backend/database"
	"nala-backend/middlewares"
	"nala-backend/midtrans"
	"nala-backend/notify"
	"nala-backend/routes"
	"nala-backend/services"
	"nala-backend/stores"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// ---- Side channels (optional; the server runs fine without them)
	var notifiers []notify.Notifier
	if tg, err := notify.NewTelegramNotifier(cfg.Telegram); err != nil {
		log.Printf("telegram notifier disabled: %v", err)
	} else {
		notifiers = append(notifiers, tg)
	}
	if mail, err := notify.NewEmailNotifier(cfg.SMTP); err != nil {
		log.Printf("email notifier disabled: %v", err)
	} else {
		notifiers = append(notifiers, mail)
	}

	// ---- Stores and services
	codeStore := stores.NewAccessCodeStore(db)
	eventStore := stores.NewWebhookEventStore(db)
	codeService := services.NewAccessCodeService(codeStore, services.NewCodeGenerator(), notifiers)
	checkoutService := services.NewCheckoutService(midtrans.NewClient(cfg.Midtrans))

	if cfg.Midtrans.ServerKey == "" {
		log.Println("MIDTRANS_SERVER_KEY not set - payment will not work")
	}

	// ---- Fiber app with global error handler + body limit
	bodyLimitBytes := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	// ---- Global rate limiter (applies to all routes; tune via env)
	rlMax := envInt("RATE_LIMIT_MAX", 60)
	rlWindow := time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
	}))

	// ---- Routes
	routes.Register(app, routes.Handlers{
		Payment:        controllers.NewPaymentController(checkoutService),
		Webhook:        controllers.NewWebhookController(codeService, eventStore),
		AccessCode:     controllers.NewAccessCodeController(codeService),
		Auth:           controllers.NewAuthController(cfg.Admin),
		AdminJWTSecret: cfg.Admin.JWTSecret,
	})

	// ---- Start
	log.Printf("API server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
