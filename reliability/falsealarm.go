package reliability

import (
	"context"

	"go.uber.org/zap"
)

// FalseAlarmStore is the slice of the storage contract needed to dispute an
// event and penalize its first reporter.
type FalseAlarmStore interface {
	MetricsStore
	MarkEventDisputed(ctx context.Context, eventID int64) (string, error)
	IncrementFalseAlarm(ctx context.Context, source string) error
}

// MarkFalseAlarm flips an event to disputed, charges the false alarm to the
// source that first reported it and recomputes that source's score.
func MarkFalseAlarm(ctx context.Context, store FalseAlarmStore, eventID int64, logger *zap.Logger) (float64, error) {
	firstSource, err := store.MarkEventDisputed(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if err := store.IncrementFalseAlarm(ctx, firstSource); err != nil {
		return 0, err
	}

	scorer := NewScorer(store, logger)
	score, err := scorer.Recompute(ctx, firstSource)
	if err != nil {
		return 0, err
	}

	if logger != nil {
		logger.Info("Event marked as false alarm",
			zap.Int64("event_id", eventID),
			zap.String("first_source", firstSource),
			zap.Float64("new_score", score))
	}
	return score, nil
}
