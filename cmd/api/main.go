package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/stallworks/booth-market/internal/app"
	"github.com/stallworks/booth-market/internal/cache"
	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/config"
	"github.com/stallworks/booth-market/internal/events"
	"github.com/stallworks/booth-market/internal/storage/postgres"
	transporthttp "github.com/stallworks/booth-market/internal/transport/http"
	"github.com/stallworks/booth-market/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("WARN: load .env: %v", err)
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	var sink app.EventSink = events.NoopSink{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink := events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaSink.Close()
		sink = kafkaSink
		logger.Printf("publishing events to kafka topic %s", cfg.Kafka.Topic)
	}

	clk := clock.NewSystem()
	checker := app.NewAvailabilityChecker(
		postgres.NewAvailabilityRepository(pool),
		postgres.NewTenantRepository(pool),
		clk,
	)

	holdOpts := []app.HoldServiceOption{app.WithHoldTTL(cfg.Booking.HoldTTL())}
	if cfg.Redis.Addr != "" {
		locker := cache.NewRedisLocker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer locker.Close()
		if err := locker.Ping(startupCtx); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		holdOpts = append(holdOpts, app.WithBoothLocker(locker))
		logger.Printf("booth locking via redis at %s", cfg.Redis.Addr)
	}

	holdSvc := app.NewHoldService(postgres.NewHoldRepository(pool), checker, clk, sink, holdOpts...)
	checkoutSvc := app.NewCheckoutService(postgres.NewCheckoutStore(pool), checker, clk, sink)
	rentalSvc := app.NewRentalService(postgres.NewRentalRepository(pool), checker, clk, sink)
	extensionSvc := app.NewExtensionService(
		postgres.NewExtensionStore(pool), rentalSvc, clk, sink,
		app.WithExtensionHoldTTL(cfg.Booking.HoldTTL()),
	)
	settlementSvc := app.NewSettlementService(postgres.NewSettlementRepository(pool), clk, sink)
	boothSvc := app.NewBoothService(postgres.NewBoothRepository(pool), clk)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/booth-types", transporthttp.HandleBoothTypes(boothSvc))
	mux.Handle("/booth-types/", transporthttp.HandleBoothTypes(boothSvc))
	mux.Handle("/booths", transporthttp.HandleBooths(boothSvc, checker))
	mux.Handle("/booths/", transporthttp.HandleBooths(boothSvc, checker))
	mux.Handle("/holds", transporthttp.HandleHolds(holdSvc))
	mux.Handle("/holds/", transporthttp.HandleHoldByID(holdSvc))
	mux.Handle("/checkout", transporthttp.HandleCheckout(checkoutSvc))
	mux.Handle("/rentals/", transporthttp.HandleRentals(rentalSvc, extensionSvc))
	mux.Handle("/extensions/", transporthttp.HandleExtensions(extensionSvc))
	mux.Handle("/sales", transporthttp.HandleSales(settlementSvc))
	mux.Handle("/withdrawals", transporthttp.HandleWithdrawals(settlementSvc))
	mux.Handle("/withdrawals/", transporthttp.HandleWithdrawals(settlementSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsOrigins := parseCSV(os.Getenv("CORS_ORIGINS"))
	handler := transporthttp.RequestLogger(
		transporthttp.CORS(corsOrigins, transporthttp.RequireTenant(mux)),
		logger,
	)

	server := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}

	log.Printf("api listening on %s", cfg.HTTP.Address)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
