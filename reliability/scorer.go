// Package reliability derives per-source trust scores from historical
// counters and analyzes how individual claims were verified over time.
package reliability

import (
	"context"

	"originstamp/types"

	"go.uber.org/zap"
)

// defaultScore is assigned to sources with no tracked history yet.
const defaultScore = 0.50

// Factor weights. Updates are capped so a source cannot buy reliability on
// update volume alone.
const (
	originalWeight   = 0.40
	updateMultiplier = 2.0
	updateCap        = 0.30
	falseAlarmWeight = 0.20
)

var tierBonuses = map[types.Tier]float64{
	types.TierOSINT:        0.10,
	types.TierOfficial:     0.10,
	types.TierWire:         0.10,
	types.TierAmplifier:    0.05,
	types.TierSecondary:    0.02,
	types.TierVerification: 0.08,
}

const unknownTierBonus = 0.02

// MetricsStore is the slice of the storage contract the scorer needs.
type MetricsStore interface {
	GetSourceMetrics(ctx context.Context, source string) (*types.SourceMetrics, error)
	ListSourceMetrics(ctx context.Context) ([]types.SourceMetrics, error)
	SetReliabilityScore(ctx context.Context, source string, score float64) error
}

// Scorer recomputes reliability scores on demand, per source or in a batch
// sweep. Recomputation is idempotent: the score is a pure function of the
// counters.
type Scorer struct {
	store  MetricsStore
	logger *zap.Logger
}

func NewScorer(store MetricsStore, logger *zap.Logger) *Scorer {
	return &Scorer{store: store, logger: logger}
}

// Score computes the reliability score for a set of source counters.
func Score(m *types.SourceMetrics) float64 {
	if m == nil || m.TotalTracked == 0 {
		return defaultScore
	}

	total := float64(m.TotalTracked)
	originalRatio := float64(m.TotalOriginal) / total
	updateRatio := float64(m.TotalUpdates) / total
	falseAlarmRatio := float64(m.FalseAlarmCount) / total

	updateScore := updateRatio * updateMultiplier
	if updateScore > updateCap {
		updateScore = updateCap
	}

	bonus, ok := tierBonuses[m.Tier]
	if !ok {
		bonus = unknownTierBonus
	}

	score := originalRatio*originalWeight + updateScore + (1-falseAlarmRatio)*falseAlarmWeight + bonus
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Recompute refreshes the stored score for a single source.
func (s *Scorer) Recompute(ctx context.Context, source string) (float64, error) {
	metrics, err := s.store.GetSourceMetrics(ctx, source)
	if err != nil {
		return 0, err
	}
	score := Score(metrics)
	if err := s.store.SetReliabilityScore(ctx, source, score); err != nil {
		return 0, err
	}
	return score, nil
}

// RecomputeAll sweeps every tracked source. Intended for a periodic job.
func (s *Scorer) RecomputeAll(ctx context.Context) (int, error) {
	all, err := s.store.ListSourceMetrics(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range all {
		score := Score(&all[i])
		if err := s.store.SetReliabilityScore(ctx, all[i].Source, score); err != nil {
			return updated, err
		}
		updated++
	}

	if s.logger != nil {
		s.logger.Info("Recomputed reliability scores", zap.Int("sources", updated))
	}
	return updated, nil
}
