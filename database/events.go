package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	oserrors "originstamp/errors"
	"originstamp/types"

	"github.com/google/uuid"
)

// CreateEventIfAbsent creates the canonical event for the report's event
// hash, or returns the existing event's id when another report got there
// first. The ON CONFLICT clause makes concurrent creation attempts for the
// same hash converge on one row.
func (s *PostgresStore) CreateEventIfAbsent(ctx context.Context, report *types.Report) (int64, error) {
	var eventID int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO canonical_events (
			event_hash, first_report_id, first_source, first_timestamp, claim_summary
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_hash) DO UPDATE SET last_updated = NOW()
		RETURNING id
	`, report.EventHash, report.ID, report.Source, report.Timestamp, summarizeClaim(report.Text)).Scan(&eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to create canonical event: %w", err)
	}
	return eventID, nil
}

// GetEvent reads a canonical event by id.
func (s *PostgresStore) GetEvent(ctx context.Context, eventID int64) (*types.CanonicalEvent, error) {
	var ev types.CanonicalEvent
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, event_hash, COALESCE(first_report_id, ''), first_source,
		       first_timestamp, claim_summary, verification_status,
		       repost_count, update_count
		FROM canonical_events WHERE id = $1
	`, eventID).Scan(
		&ev.ID, &ev.EventHash, &ev.FirstReportID, &ev.FirstSource,
		&ev.FirstTimestamp, &ev.ClaimSummary, &ev.VerificationStatus,
		&ev.RepostCount, &ev.UpdateCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oserrors.WrapErrorf(oserrors.ErrNotFound, "event %d", eventID)
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetEventByHash reads a canonical event by its event hash.
func (s *PostgresStore) GetEventByHash(ctx context.Context, eventHash string) (*types.CanonicalEvent, error) {
	var ev types.CanonicalEvent
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, event_hash, COALESCE(first_report_id, ''), first_source,
		       first_timestamp, claim_summary, verification_status,
		       repost_count, update_count
		FROM canonical_events WHERE event_hash = $1
	`, eventHash).Scan(
		&ev.ID, &ev.EventHash, &ev.FirstReportID, &ev.FirstSource,
		&ev.FirstTimestamp, &ev.ClaimSummary, &ev.VerificationStatus,
		&ev.RepostCount, &ev.UpdateCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oserrors.WrapErrorf(oserrors.ErrNotFound, "event hash %s", eventHash)
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// AddRepostLink appends a link tying a later report to its canonical event
// and bumps the matching counter. Links are never revised.
func (s *PostgresStore) AddRepostLink(ctx context.Context, link *types.RepostLink) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if link.ID == "" {
		link.ID = uuid.New().String()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO repost_links (
			id, event_id, report_id, classification, confidence,
			time_delta_seconds, added_new_info
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, link.ID, link.EventID, link.ReportID, string(link.Classification),
		link.Confidence, link.TimeDeltaSeconds, link.AddedNewInfo); err != nil {
		return fmt.Errorf("failed to insert repost link: %w", err)
	}

	switch link.Classification {
	case types.StatusRepost:
		if _, err := tx.ExecContext(ctx, `
			UPDATE canonical_events
			SET repost_count = repost_count + 1, last_updated = NOW()
			WHERE id = $1
		`, link.EventID); err != nil {
			return err
		}
	case types.StatusUpdate:
		if _, err := tx.ExecContext(ctx, `
			UPDATE canonical_events
			SET update_count = update_count + 1, last_updated = NOW()
			WHERE id = $1
		`, link.EventID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListEventLinks returns an event's repost links in chronological order of
// the linking reports, joined with the reporter's tier and reliability.
func (s *PostgresStore) ListEventLinks(ctx context.Context, eventID int64) ([]types.RepostLink, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT l.id, l.event_id, l.report_id, r.source, r.source_tier,
		       r.source_reliability, l.classification, l.confidence,
		       l.time_delta_seconds, l.added_new_info, r.ts
		FROM repost_links l
		JOIN reports r ON l.report_id = r.id
		WHERE l.event_id = $1
		ORDER BY r.ts ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []types.RepostLink
	for rows.Next() {
		var link types.RepostLink
		var tier, classification string
		if err := rows.Scan(
			&link.ID, &link.EventID, &link.ReportID, &link.Source, &tier,
			&link.SourceReliability, &classification, &link.Confidence,
			&link.TimeDeltaSeconds, &link.AddedNewInfo, &link.Timestamp,
		); err != nil {
			return nil, err
		}
		link.SourceTier = types.ParseTier(tier)
		link.Classification = types.Status(classification)
		links = append(links, link)
	}
	return links, rows.Err()
}

// MarkEventDisputed flips an event to disputed and returns its first source
// so the caller can penalize the reporter.
func (s *PostgresStore) MarkEventDisputed(ctx context.Context, eventID int64) (string, error) {
	var firstSource string
	err := s.DB.QueryRowContext(ctx, `
		UPDATE canonical_events
		SET verification_status = 'disputed', last_updated = NOW()
		WHERE id = $1
		RETURNING first_source
	`, eventID).Scan(&firstSource)
	if errors.Is(err, sql.ErrNoRows) {
		return "", oserrors.WrapErrorf(oserrors.ErrNotFound, "event %d", eventID)
	}
	if err != nil {
		return "", err
	}
	return firstSource, nil
}

// ListRecentEvents returns the most recently updated events.
func (s *PostgresStore) ListRecentEvents(ctx context.Context, limit int) ([]types.CanonicalEvent, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, event_hash, COALESCE(first_report_id, ''), first_source,
		       first_timestamp, claim_summary, verification_status,
		       repost_count, update_count
		FROM canonical_events
		ORDER BY last_updated DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []types.CanonicalEvent
	for rows.Next() {
		var ev types.CanonicalEvent
		if err := rows.Scan(
			&ev.ID, &ev.EventHash, &ev.FirstReportID, &ev.FirstSource,
			&ev.FirstTimestamp, &ev.ClaimSummary, &ev.VerificationStatus,
			&ev.RepostCount, &ev.UpdateCount,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
