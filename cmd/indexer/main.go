package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tcua/price-index-service/internal/config"
	"github.com/tcua/price-index-service/internal/database"
	"github.com/tcua/price-index-service/internal/kafka"
	"github.com/tcua/price-index-service/internal/logging"
	"github.com/tcua/price-index-service/internal/models"
	"github.com/tcua/price-index-service/internal/pipeline"
	"github.com/tcua/price-index-service/internal/runguard"
)

const runLockTTL = 30 * time.Minute

func main() {
	file := flag.String("file", "", "JSON file of raw listings; empty means consume from Kafka")
	date := flag.String("date", time.Now().Format("2006-01-02"), "run date (YYYY-MM-DD), used with -file")
	source := flag.String("source", "manual", "listing source label, used with -file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using system environment")
	}
	cfg := config.Load()
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer rdb.Close()
	}
	guard := runguard.New(rdb, runLockTTL)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	defer producer.Close()

	runner := pipeline.NewRunner(db, guard, producer, cfg.Taxonomy.Path, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *file != "" {
		if err := runFromFile(ctx, runner, *file, *date, *source); err != nil {
			log.Fatal().Err(err).Msg("run failed")
		}
		return
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ListingsTopic, cfg.Kafka.GroupID, runner, log)
	log.Info().
		Str("topic", cfg.Kafka.ListingsTopic).
		Str("group", cfg.Kafka.GroupID).
		Msg("consuming listing batches")
	if err := consumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
}

func runFromFile(ctx context.Context, runner *pipeline.Runner, path, date, source string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read listings file: %w", err)
	}
	var listings []models.RawListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return fmt.Errorf("failed to parse listings file: %w", err)
	}

	_, err = runner.Run(ctx, day, source, listings)
	return err
}
