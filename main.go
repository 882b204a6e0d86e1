package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ff-tournament-system/config"
	"ff-tournament-system/database"
	"ff-tournament-system/handlers"
	"ff-tournament-system/services"
	"ff-tournament-system/spreadsheet"
	"ff-tournament-system/utils"
	"ff-tournament-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}

	if err := utils.EnsureUploadDir(cfg.Uploads.TmpDir); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	var publish services.PublishFunc
	if cfg.R2.Enabled() {
		if err := utils.InitR2(cfg.R2); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		publish = utils.UploadBytesToR2
		log.Println("✅ R2 publishing enabled")
	} else {
		log.Println("⚠️  R2 not configured, exports can only be downloaded")
	}

	var sheets *spreadsheet.SheetsSource
	if cfg.Sheets.Enabled() {
		sheets, err = spreadsheet.NewSheetsSource(ctx, cfg.Sheets.CredentialsJSON)
		if err != nil {
			log.Fatal("failed to initialize Google Sheets client:", err)
		}
	}

	hub := services.NewHub()
	policy := services.KillPolicy{Strict: cfg.Tournament.StrictKillInput}

	playerService := services.NewPlayerService(db, hub, policy)
	squadService := services.NewSquadService(db, hub, policy, cfg.Tournament.SquadsPerRoom)
	leaderboardService := services.NewLeaderboardService(db)
	matchService := services.NewMatchService(db, hub, leaderboardService)
	conductorService := services.NewConductorService(db)
	transferService := services.NewTransferService(db, conductorService, sheets)
	transferService.Publish = publish
	adminService := services.NewAdminService(db, hub)

	scheduler, err := services.NewScheduler(
		cfg.Uploads.TmpDir,
		cfg.Uploads.SweepInterval,
		cfg.Uploads.LeaderboardSnapshotInterval,
		leaderboardService,
		publish,
	)
	if err != nil {
		log.Fatal("failed to create scheduler:", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}

	if cfg.KillFeed.Enabled() {
		feed := workers.NewKillFeedClient(cfg.KillFeed.URL, cfg.KillFeed.Token)
		go workers.PollKillFeed(ctx, feed, playerService, cfg.KillFeed.PollInterval)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // spreadsheet uploads
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Staff-ID, X-Staff-Role, Cache-Control",
		MaxAge:       86400, // 24 hours
	}))

	admin := handlers.AdminGroup(app, cfg.AdminToken)

	handlers.SetupHealthRoutes(app, db)
	handlers.SetupPlayerRoutes(app, admin, playerService)
	handlers.SetupSquadRoutes(app, admin, squadService)
	handlers.SetupMatchRoutes(app, admin, matchService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupLiveRoutes(app, hub)
	handlers.SetupConductorRoutes(admin, conductorService)
	handlers.SetupTransferRoutes(admin, transferService, cfg.Uploads.TmpDir)
	handlers.SetupAdminRoutes(admin, adminService)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
