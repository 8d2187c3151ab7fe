package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/stallworks/booth-market/internal/app"
	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/config"
	"github.com/stallworks/booth-market/internal/events"
	"github.com/stallworks/booth-market/internal/storage/postgres"
	"github.com/stallworks/booth-market/migrations"
)

// The worker owns the two background sweeps: expired cart holds are deleted
// and past-due rentals move to expired.
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
	}

	clk := clock.NewSystem()
	checker := app.NewAvailabilityChecker(
		postgres.NewAvailabilityRepository(pool),
		postgres.NewTenantRepository(pool),
		clk,
	)
	holdSvc := app.NewHoldService(postgres.NewHoldRepository(pool), checker, clk, sink)
	rentalSvc := app.NewRentalService(postgres.NewRentalRepository(pool), checker, clk, sink)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := cfg.Worker.SweepInterval()
	log.Printf("worker sweeping every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(stopCtx, logger, holdSvc, rentalSvc)
	for {
		select {
		case <-stopCtx.Done():
			log.Printf("worker stopped")
			return
		case <-ticker.C:
			sweep(stopCtx, logger, holdSvc, rentalSvc)
		}
	}
}

func sweep(ctx context.Context, logger *log.Logger, holds *app.HoldService, rentals *app.RentalService) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	released, err := holds.SweepExpiredHolds(sweepCtx)
	if err != nil {
		logger.Printf("sweep holds: %v", err)
	} else if released > 0 {
		logger.Printf("released %d expired holds", released)
	}

	expired, err := rentals.ExpireDueRentals(sweepCtx)
	if err != nil {
		logger.Printf("expire rentals: %v", err)
	} else if expired > 0 {
		logger.Printf("expired %d rentals", expired)
	}
}
