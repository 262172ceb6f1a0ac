package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mpelletier/facturio/internal/billing"
	"github.com/mpelletier/facturio/internal/config"
	"github.com/mpelletier/facturio/internal/es"
	"github.com/mpelletier/facturio/internal/events"
	"github.com/mpelletier/facturio/internal/handlers"
	"github.com/mpelletier/facturio/internal/logging"
	authmw "github.com/mpelletier/facturio/internal/middleware/auth"
	loggingmw "github.com/mpelletier/facturio/internal/middleware/logging"
	"github.com/mpelletier/facturio/internal/service/search"
	"github.com/mpelletier/facturio/internal/session"
	httpserver "github.com/mpelletier/facturio/internal/transport/http"
	"github.com/mpelletier/facturio/pkg/db"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	database, err := db.Open(ctx, configuration.DATABASE_URL)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(configuration.SessionConfig())
	if err := db.Seed(database, sessions, configuration.ADMIN_USERNAME, configuration.ADMIN_PASSWORD, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		producer = &events.Producer{}
		logger.Info("KAFKA_ADDRESS not set, entity events disabled")
	}

	esClient, err := es.NewClient(configuration, logger)
	if err != nil {
		logger.Error("elasticsearch init failed", "error", err)
		os.Exit(1)
	}
	indexer := &search.Indexer{ES: esClient}

	ledger := billing.NewLedger()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Guard:            &authmw.Guard{DB: database, Sessions: sessions},
		AuthHandler:      &handlers.AuthHandler{DB: database, Sessions: sessions},
		CompanyHandler:   &handlers.CompanyHandler{DB: database},
		CustomerHandler:  &handlers.CustomerHandler{DB: database, Producer: producer, Indexer: indexer},
		ProductHandler:   &handlers.ProductHandler{DB: database, Producer: producer, Indexer: indexer},
		InvoiceHandler:   &handlers.InvoiceHandler{DB: database, Ledger: ledger, Producer: producer},
		SearchHandler:    &handlers.SearchHandler{DB: database, ES: esClient},
		DashboardHandler: &handlers.DashboardHandler{DB: database, Ledger: ledger},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("listening", "addr", configuration.ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
