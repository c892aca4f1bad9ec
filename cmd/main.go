package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Qasim374/freight-system/internal/db"
	"github.com/Qasim374/freight-system/internal/handlers"
	"github.com/Qasim374/freight-system/internal/repository"
	"github.com/Qasim374/freight-system/internal/router"
	"github.com/Qasim374/freight-system/internal/router/config"
	"github.com/Qasim374/freight-system/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	shipmentRepo := repository.NewPostgresShipmentRepository(dbPool)
	bidRepo := repository.NewPostgresBidRepository(dbPool)
	blRepo := repository.NewPostgresBLRepository(dbPool)
	amendmentRepo := repository.NewPostgresAmendmentRepository(dbPool)
	invoiceRepo := repository.NewPostgresInvoiceRepository(dbPool)

	shipmentService := services.NewShipmentService(shipmentRepo)
	selectionService := services.NewSelectionService(shipmentRepo, bidRepo, cfg)
	bookingService := services.NewBookingService(shipmentRepo, bidRepo)
	bidService := services.NewBidService(bidRepo, shipmentRepo)
	blService := services.NewBLService(blRepo, shipmentRepo)
	amendmentService := services.NewAmendmentService(amendmentRepo, blRepo, shipmentRepo, cfg.MarkupRate)
	invoiceService := services.NewInvoiceService(invoiceRepo, shipmentRepo)
	trackingService := services.NewTrackingService(shipmentRepo, services.NoopCarrierClient{}, logger)

	timeout := 5 * time.Second
	shipmentHandler := handlers.NewShipmentHandler(shipmentService, selectionService, bookingService, logger, timeout)
	bidHandler := handlers.NewBidHandler(bidService, logger, timeout)
	blHandler := handlers.NewBLHandler(blService, logger, timeout)
	amendmentHandler := handlers.NewAmendmentHandler(amendmentService, logger, timeout)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, logger, timeout)
	trackingHandler := handlers.NewTrackingHandler(trackingService, logger, timeout)

	routes := router.InitRoutes(shipmentHandler, bidHandler, blHandler, amendmentHandler, invoiceHandler, trackingHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
