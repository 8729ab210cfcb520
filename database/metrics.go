package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"originstamp/types"
)

// TrackReport upserts the per-source counters for one processed report:
// total tracked always increments, plus the counter matching the
// classification outcome.
func (s *PostgresStore) TrackReport(ctx context.Context, source string, tier types.Tier, status types.Status) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO source_metrics (source, tier, total_tracked)
		VALUES ($1, $2, 1)
		ON CONFLICT (source)
		DO UPDATE SET
			total_tracked = source_metrics.total_tracked + 1,
			tier = $2,
			last_updated = NOW()
	`, source, string(tier)); err != nil {
		return fmt.Errorf("failed to upsert source metrics: %w", err)
	}

	var column string
	switch status {
	case types.StatusOriginal:
		column = "total_original"
	case types.StatusRepost:
		column = "total_reposts"
	case types.StatusUpdate:
		column = "total_updates"
	default:
		return tx.Commit()
	}

	query := fmt.Sprintf(`UPDATE source_metrics SET %s = %s + 1 WHERE source = $1`, column, column)
	if _, err := tx.ExecContext(ctx, query, source); err != nil {
		return err
	}
	return tx.Commit()
}

// GetSourceMetrics returns a source's counters, or nil when the source has
// no tracked history yet.
func (s *PostgresStore) GetSourceMetrics(ctx context.Context, source string) (*types.SourceMetrics, error) {
	var m types.SourceMetrics
	var tier string
	err := s.DB.QueryRowContext(ctx, `
		SELECT source, tier, reliability_score, total_tracked, total_original,
		       total_updates, total_reposts, false_alarm_count, last_updated
		FROM source_metrics WHERE source = $1
	`, source).Scan(
		&m.Source, &tier, &m.ReliabilityScore, &m.TotalTracked, &m.TotalOriginal,
		&m.TotalUpdates, &m.TotalReposts, &m.FalseAlarmCount, &m.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Tier = types.ParseTier(tier)
	return &m, nil
}

// ListSourceMetrics returns counters for every tracked source.
func (s *PostgresStore) ListSourceMetrics(ctx context.Context) ([]types.SourceMetrics, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT source, tier, reliability_score, total_tracked, total_original,
		       total_updates, total_reposts, false_alarm_count, last_updated
		FROM source_metrics
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMetricsRows(rows)
}

// SetReliabilityScore writes a recomputed reliability score.
func (s *PostgresStore) SetReliabilityScore(ctx context.Context, source string, score float64) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE source_metrics
		SET reliability_score = $1, last_updated = NOW()
		WHERE source = $2
	`, score, source)
	return err
}

// IncrementFalseAlarm bumps a source's false alarm counter.
func (s *PostgresStore) IncrementFalseAlarm(ctx context.Context, source string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE source_metrics
		SET false_alarm_count = false_alarm_count + 1, last_updated = NOW()
		WHERE source = $1
	`, source)
	return err
}

// Leaderboard returns sources ranked by reliability score, restricted to
// those with enough history for the score to mean anything.
func (s *PostgresStore) Leaderboard(ctx context.Context, minTracked, limit int) ([]types.SourceMetrics, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT source, tier, reliability_score, total_tracked, total_original,
		       total_updates, total_reposts, false_alarm_count, last_updated
		FROM source_metrics
		WHERE total_tracked >= $1
		ORDER BY reliability_score DESC
		LIMIT $2
	`, minTracked, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMetricsRows(rows)
}

func scanMetricsRows(rows *sql.Rows) ([]types.SourceMetrics, error) {
	var all []types.SourceMetrics
	for rows.Next() {
		var m types.SourceMetrics
		var tier string
		if err := rows.Scan(
			&m.Source, &tier, &m.ReliabilityScore, &m.TotalTracked, &m.TotalOriginal,
			&m.TotalUpdates, &m.TotalReposts, &m.FalseAlarmCount, &m.LastUpdated,
		); err != nil {
			return nil, err
		}
		m.Tier = types.ParseTier(tier)
		all = append(all, m)
	}
	return all, rows.Err()
}

// UpsertTrackedSource registers a known source with its tier and starting
// reliability, seeding its metrics row.
func (s *PostgresStore) UpsertTrackedSource(ctx context.Context, src types.TrackedSource) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tracked_sources (source, tier, initial_reliability, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source)
		DO UPDATE SET tier = $2, initial_reliability = $3, notes = $4
	`, src.Source, string(src.Tier), src.InitialReliability, src.Notes); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO source_metrics (source, tier, reliability_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (source) DO UPDATE SET tier = $2
	`, src.Source, string(src.Tier), src.InitialReliability); err != nil {
		return err
	}

	return tx.Commit()
}

// ListTrackedSources returns the source registry.
func (s *PostgresStore) ListTrackedSources(ctx context.Context) ([]types.TrackedSource, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT source, tier, initial_reliability, notes FROM tracked_sources
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []types.TrackedSource
	for rows.Next() {
		var src types.TrackedSource
		var tier string
		if err := rows.Scan(&src.Source, &tier, &src.InitialReliability, &src.Notes); err != nil {
			return nil, err
		}
		src.Tier = types.ParseTier(tier)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
