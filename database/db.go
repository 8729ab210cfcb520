package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	log.Println("Successfully connected to the database")
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS reports (
            id TEXT PRIMARY KEY,
            source TEXT NOT NULL,
            source_tier TEXT NOT NULL,
            source_reliability DOUBLE PRECISION DEFAULT 0.5,
            text TEXT NOT NULL,
            text_normalized TEXT NOT NULL DEFAULT '',
            text_hash TEXT NOT NULL DEFAULT '',
            event_hash TEXT NOT NULL DEFAULT '',
            media_hashes TEXT[] DEFAULT '{}'::TEXT[],
            ts TIMESTAMPTZ NOT NULL,
            display_time TEXT DEFAULT '',
            language TEXT DEFAULT 'unknown',
            embedding vector(384),
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_reports_text_hash ON reports(text_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_event_hash ON reports(event_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_ts ON reports(ts)`,
		`CREATE TABLE IF NOT EXISTS report_entities (
            report_id TEXT REFERENCES reports(id) ON DELETE CASCADE,
            entity_type TEXT NOT NULL,
            entity_value TEXT NOT NULL,
            confidence DOUBLE PRECISION DEFAULT 0
        )`,
		`CREATE INDEX IF NOT EXISTS idx_report_entities_value ON report_entities(LOWER(entity_value))`,
		`CREATE INDEX IF NOT EXISTS idx_report_entities_report ON report_entities(report_id)`,
		`CREATE TABLE IF NOT EXISTS report_urls (
            report_id TEXT REFERENCES reports(id) ON DELETE CASCADE,
            url_original TEXT NOT NULL,
            url_canonical TEXT NOT NULL,
            domain TEXT DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_report_urls_report ON report_urls(report_id)`,
		`CREATE TABLE IF NOT EXISTS canonical_events (
            id BIGSERIAL PRIMARY KEY,
            event_hash TEXT UNIQUE NOT NULL,
            first_report_id TEXT REFERENCES reports(id),
            first_source TEXT NOT NULL,
            first_timestamp TIMESTAMPTZ NOT NULL,
            claim_summary TEXT DEFAULT '',
            verification_status TEXT DEFAULT 'unverified',
            repost_count INT DEFAULT 0,
            update_count INT DEFAULT 0,
            last_updated TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS repost_links (
            id UUID PRIMARY KEY,
            event_id BIGINT REFERENCES canonical_events(id) ON DELETE CASCADE,
            report_id TEXT REFERENCES reports(id),
            classification TEXT NOT NULL,
            confidence DOUBLE PRECISION NOT NULL,
            time_delta_seconds BIGINT NOT NULL,
            added_new_info BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_repost_links_event ON repost_links(event_id)`,
		`CREATE TABLE IF NOT EXISTS source_metrics (
            source TEXT PRIMARY KEY,
            tier TEXT NOT NULL,
            reliability_score DOUBLE PRECISION DEFAULT 0.5,
            total_tracked INT DEFAULT 0,
            total_original INT DEFAULT 0,
            total_updates INT DEFAULT 0,
            total_reposts INT DEFAULT 0,
            false_alarm_count INT DEFAULT 0,
            last_updated TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS tracked_sources (
            source TEXT PRIMARY KEY,
            tier TEXT NOT NULL,
            initial_reliability DOUBLE PRECISION DEFAULT 0.5,
            notes TEXT DEFAULT ''
        )`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
