package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"originstamp/types"

	"github.com/pgvector/pgvector-go"
)

// Candidate search kinds accepted by FindCandidates.
const (
	SearchTextHash  = "text_hash"
	SearchEventHash = "event_hash"
	SearchEntity    = "entity"
)

// SaveReport persists a fingerprinted report with its entities and URLs.
// Saving the same report id twice is a no-op.
func (s *PostgresStore) SaveReport(ctx context.Context, report *types.Report) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var embedding any
	if len(report.Embedding) > 0 {
		embedding = pgvector.NewVector(report.Embedding)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reports (
			id, source, source_tier, source_reliability,
			text, text_normalized, text_hash, event_hash,
			media_hashes, ts, display_time, language, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`,
		report.ID, report.Source, string(report.SourceTier), report.SourceReliability,
		report.Text, report.TextNormalized, report.TextHash, report.EventHash,
		report.MediaHashes, report.Timestamp, report.DisplayTime, report.Language, embedding,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Already stored; entities and URLs were written with it.
		return tx.Commit()
	}

	for _, e := range report.Entities {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_entities (report_id, entity_type, entity_value, confidence)
			VALUES ($1, $2, $3, $4)
		`, report.ID, e.Type, e.Value, e.Confidence); err != nil {
			return fmt.Errorf("failed to insert entity: %w", err)
		}
	}

	for _, u := range report.URLs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_urls (report_id, url_original, url_canonical, domain)
			VALUES ($1, $2, $3, $4)
		`, report.ID, u.Original, u.Canonical, u.Domain); err != nil {
			return fmt.Errorf("failed to insert url: %w", err)
		}
	}

	return tx.Commit()
}

// FindCandidates returns prior reports matching the given search kind,
// oldest first, capped per query. The entity kind matches extracted entity
// values case-insensitively.
func (s *PostgresStore) FindCandidates(ctx context.Context, kind, value string, lookbackDays, limit int) ([]*types.Report, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -lookbackDays)

	var query string
	switch kind {
	case SearchTextHash:
		query = `
			SELECT r.id, r.source, r.source_tier, r.source_reliability,
			       r.text, r.text_normalized, r.text_hash, r.event_hash,
			       r.media_hashes, r.ts, r.display_time, r.language, r.embedding,
			       COALESCE(ce.id, 0)
			FROM reports r
			LEFT JOIN canonical_events ce ON r.id = ce.first_report_id
			WHERE r.text_hash = $1 AND r.ts >= $2
			ORDER BY r.ts ASC
			LIMIT $3`
	case SearchEventHash:
		query = `
			SELECT r.id, r.source, r.source_tier, r.source_reliability,
			       r.text, r.text_normalized, r.text_hash, r.event_hash,
			       r.media_hashes, r.ts, r.display_time, r.language, r.embedding,
			       COALESCE(ce.id, 0)
			FROM reports r
			LEFT JOIN canonical_events ce ON r.id = ce.first_report_id
			WHERE r.event_hash = $1 AND r.ts >= $2
			ORDER BY r.ts ASC
			LIMIT $3`
	case SearchEntity:
		query = `
			SELECT DISTINCT r.id, r.source, r.source_tier, r.source_reliability,
			       r.text, r.text_normalized, r.text_hash, r.event_hash,
			       r.media_hashes, r.ts, r.display_time, r.language, r.embedding,
			       COALESCE(ce.id, 0)
			FROM reports r
			JOIN report_entities e ON r.id = e.report_id
			LEFT JOIN canonical_events ce ON r.id = ce.first_report_id
			WHERE LOWER(e.entity_value) = LOWER($1) AND r.ts >= $2
			ORDER BY r.ts ASC
			LIMIT $3`
	default:
		return nil, fmt.Errorf("unknown candidate search kind %q", kind)
	}

	rows, err := s.DB.QueryContext(ctx, query, value, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	defer rows.Close()

	var reports []*types.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, report := range reports {
		if err := s.loadReportDetails(ctx, report); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// nullVector mirrors sql.Null[pgvector.Vector], which needs Go 1.22+.
type nullVector struct {
	V     pgvector.Vector
	Valid bool
}

func (n *nullVector) Scan(value any) error {
	if value == nil {
		n.V, n.Valid = pgvector.Vector{}, false
		return nil
	}
	n.Valid = true
	return n.V.Scan(value)
}

func scanReport(rows *sql.Rows) (*types.Report, error) {
	var r types.Report
	var tier string
	var embedding nullVector
	if err := rows.Scan(
		&r.ID, &r.Source, &tier, &r.SourceReliability,
		&r.Text, &r.TextNormalized, &r.TextHash, &r.EventHash,
		&r.MediaHashes, &r.Timestamp, &r.DisplayTime, &r.Language, &embedding,
		&r.EventID,
	); err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	r.SourceTier = types.ParseTier(tier)
	if embedding.Valid {
		r.Embedding = embedding.V.Slice()
	}
	return &r, nil
}

// loadReportDetails fills in the entities and canonical URLs the scorer
// needs for a candidate.
func (s *PostgresStore) loadReportDetails(ctx context.Context, report *types.Report) error {
	entityRows, err := s.DB.QueryContext(ctx, `
		SELECT entity_type, entity_value, confidence
		FROM report_entities WHERE report_id = $1
	`, report.ID)
	if err != nil {
		return err
	}
	defer entityRows.Close()
	for entityRows.Next() {
		var e types.Entity
		if err := entityRows.Scan(&e.Type, &e.Value, &e.Confidence); err != nil {
			return err
		}
		report.Entities = append(report.Entities, e)
	}
	if err := entityRows.Err(); err != nil {
		return err
	}

	urlRows, err := s.DB.QueryContext(ctx, `
		SELECT url_original, url_canonical, domain
		FROM report_urls WHERE report_id = $1
	`, report.ID)
	if err != nil {
		return err
	}
	defer urlRows.Close()
	for urlRows.Next() {
		var u types.ReportURL
		if err := urlRows.Scan(&u.Original, &u.Canonical, &u.Domain); err != nil {
			return err
		}
		report.URLs = append(report.URLs, u)
		report.CanonicalURLs = append(report.CanonicalURLs, u.Canonical)
	}
	return urlRows.Err()
}

// GetReport reads a single report back by id.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*types.Report, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT r.id, r.source, r.source_tier, r.source_reliability,
		       r.text, r.text_normalized, r.text_hash, r.event_hash,
		       r.media_hashes, r.ts, r.display_time, r.language, r.embedding,
		       COALESCE(ce.id, 0)
		FROM reports r
		LEFT JOIN canonical_events ce ON r.id = ce.first_report_id
		WHERE r.id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("report %s: %w", id, sql.ErrNoRows)
	}
	report, err := scanReport(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()
	if err := s.loadReportDetails(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// summarizeClaim trims a report text into a short claim summary.
func summarizeClaim(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		return text[:200]
	}
	return text
}
