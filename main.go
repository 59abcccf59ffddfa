package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduwallet/blockchain"
	"eduwallet/config"
	reconcileController "eduwallet/controllers/reconcile"
	webhookController "eduwallet/controllers/webhook"
	"eduwallet/database"
	"eduwallet/partnerapi"
	"eduwallet/repository"
	adminRoutes "eduwallet/routers/adminRoutes"
	webhookRoutes "eduwallet/routers/webhookRoutes"
	"eduwallet/scheduler"
	"eduwallet/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	chain := blockchain.NewRPCClient(
		config.AppConfig.ChainRPCURL,
		config.AppConfig.ChainMinterURL,
		time.Duration(config.AppConfig.ChainTimeoutSec)*time.Second,
	)
	partners := partnerapi.NewClient(time.Duration(config.AppConfig.PartnerTimeoutSec) * time.Second)

	crediting := services.NewCreditingEngine(chain,
		repository.NewTransactionRepo(db),
		repository.NewWalletRepo(db),
		repository.NewUserRepo(db),
	)
	reconciler := services.NewTransactionReconciler(chain, repository.NewTransactionRepo(db), crediting)
	syncer := services.NewSyncer(partners,
		repository.NewEnrollmentRepo(db),
		repository.NewPartnerRepo(db),
		repository.NewCourseRepo(db),
	)

	jobs := scheduler.New()
	mustAddJob(jobs, "RECONCILER", config.AppConfig.ReconcileCron, func(ctx context.Context) error {
		_, err := reconciler.ReconcilePending(ctx, config.AppConfig.ReconcileBatchLimit)
		return err
	})
	mustAddJob(jobs, "PROGRESS-SYNC", config.AppConfig.ProgressSyncCron, func(ctx context.Context) error {
		_, err := syncer.SyncProgress(ctx)
		return err
	})
	mustAddJob(jobs, "CATALOG-SYNC", config.AppConfig.CatalogSyncCron, func(ctx context.Context) error {
		_, err := syncer.SyncCatalogs(ctx)
		return err
	})
	jobs.Start()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	webhookRoutes.SetupWebhookRoutes(app, webhookController.NewController(db, chain))
	adminRoutes.SetupAdminRoutes(app, reconcileController.NewController(db, reconciler))

	// Shut the scheduler down before the process exits so an in-flight
	// reconciliation pass is not cut off mid-batch.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		jobs.Stop()
		_ = app.Shutdown()
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func mustAddJob(jobs *scheduler.Scheduler, name, spec string, run func(ctx context.Context) error) {
	if err := jobs.AddJob(name, spec, run); err != nil {
		log.Fatalf("[%s] invalid cron spec %q: %v", name, spec, err)
	}
}
