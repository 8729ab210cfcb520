package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"originstamp/config"
	"originstamp/database"
	"originstamp/digest"
	"originstamp/embed"
	"originstamp/fingerprint"
	"originstamp/pipeline"
	"originstamp/reliability"

	"go.uber.org/zap"
)

// ingestRecord is the line format accepted on stdin: one JSON object per
// report.
type ingestRecord struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Tier        string   `json:"tier"`
	Text        string   `json:"text"`
	MediaHashes []string `json:"media_hashes"`
	Timestamp   string   `json:"timestamp"`
}

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	// --- Ensure Schema Exists ---
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	seeded, err := store.SeedTrackedSources(ctx)
	if err != nil {
		logger.Fatal("Failed to seed tracked sources", zap.Error(err))
	}
	logger.Info("Seeded tracked sources", zap.Int("count", seeded))

	// Optional capabilities: NER and semantic embeddings. Either can be off
	// and the pipeline degrades to the signals it still has.
	var extractor fingerprint.EntityExtractor
	if cfg.NEREnabled {
		extractor = fingerprint.NewProseExtractor(logger)
	}
	fp := fingerprint.New(extractor, true, logger)

	var embedder pipeline.Embedder
	if client := embed.New(cfg.EmbeddingHost, cfg.EmbeddingRequestTimeout, cfg.EmbeddingMaxRetries, cfg.EmbeddingCacheSize, logger); client != nil {
		embedder = client
		logger.Info("Embedding capability enabled", zap.String("host", cfg.EmbeddingHost))
	} else {
		logger.Info("Embedding capability disabled, using lexical similarity only")
	}

	filter := digest.NewFilter(cfg.ImportanceKeywords, cfg.NonNewsPhrases, cfg.DigestMinTextLength, cfg.DigestImportanceFloor)
	aggregator := digest.NewAggregator(filter, digest.NewLogPublisher(logger),
		cfg.DigestQueueCapacity, cfg.DigestInterval, cfg.DigestHighImportance, cfg.DigestSizeFloor, logger)

	scorer := reliability.NewScorer(store, logger)
	processor := pipeline.NewProcessor(cfg, store, fp, embedder, aggregator, scorer, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	aggregator.StartScheduler(ctx)
	defer aggregator.Stop()

	logger.Info("Reading reports from stdin, one JSON object per line")
	if err := ingestLines(ctx, os.Stdin, processor, logger); err != nil {
		logger.Error("Ingestion stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Input exhausted, shutting down")
}

// ingestLines feeds newline-delimited JSON reports into the processor until
// the reader is drained or the context is cancelled. Malformed lines and
// per-report failures are logged and skipped.
func ingestLines(ctx context.Context, r *os.File, processor *pipeline.Processor, logger *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec ingestRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("Skipping malformed input line", zap.Error(err))
			continue
		}

		raw := pipeline.RawReport{
			ID:          rec.ID,
			Source:      rec.Source,
			Tier:        rec.Tier,
			Text:        rec.Text,
			MediaHashes: rec.MediaHashes,
		}
		if rec.Timestamp != "" {
			ts, err := time.Parse(time.RFC3339, rec.Timestamp)
			if err != nil {
				logger.Warn("Bad timestamp on report, using receive time",
					zap.String("report_id", rec.ID), zap.Error(err))
			} else {
				raw.Timestamp = ts
			}
		}

		if _, err := processor.Process(ctx, raw); err != nil {
			logger.Error("Failed to process report",
				zap.String("report_id", rec.ID), zap.Error(err))
		}
	}
	return scanner.Err()
}
