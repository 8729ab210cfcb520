package classify

import (
	"testing"
	"time"

	"originstamp/types"
)

func report(id, source string, tier types.Tier, ts time.Time) *types.Report {
	return &types.Report{
		ID:             id,
		Source:         source,
		SourceTier:     tier,
		TextNormalized: "explosion reported in tehran",
		Timestamp:      ts,
	}
}

func TestClassifyNoCandidate(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := report("r1", "osint_watch", types.TierOSINT, base)

	got := Classify(r, nil, 0, DefaultThresholds())
	if got.Status != types.StatusOriginal {
		t.Fatalf("Status = %s, want ORIGINAL", got.Status)
	}
	if got.Confidence != 100 {
		t.Errorf("Confidence = %f, want 100", got.Confidence)
	}
}

func TestClassifySubThresholdCandidate(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := report("r2", "osint_watch", types.TierOSINT, base.Add(time.Hour))
	best := report("r1", "other", types.TierOSINT, base)

	got := Classify(r, best, 40, DefaultThresholds())
	if got.Status != types.StatusOriginal {
		t.Fatalf("Status = %s, want ORIGINAL", got.Status)
	}
	if got.Confidence != 60 {
		t.Errorf("Confidence = %f, want 100-score", got.Confidence)
	}
}

func TestClassifyDecisionTree(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		reportTier     types.Tier
		candidateTier  types.Tier
		delta          time.Duration
		score          float64
		newEntities    int
		wantStatus     types.Status
		wantConfidence float64
	}{
		{
			name:           "high_similarity_later_same_tier_is_repost",
			reportTier:     types.TierSecondary,
			candidateTier:  types.TierSecondary,
			delta:          10 * time.Minute,
			score:          90,
			wantStatus:     types.StatusRepost,
			wantConfidence: 90,
		},
		{
			name:           "near_simultaneous_never_repost",
			reportTier:     types.TierSecondary,
			candidateTier:  types.TierSecondary,
			delta:          2 * time.Minute,
			score:          95,
			wantStatus:     types.StatusRelated,
			wantConfidence: 95 * 0.8,
		},
		{
			name:           "high_similarity_with_new_info_is_update",
			reportTier:     types.TierSecondary,
			candidateTier:  types.TierSecondary,
			delta:          10 * time.Minute,
			score:          90,
			newEntities:    4,
			wantStatus:     types.StatusUpdate,
			wantConfidence: 90,
		},
		{
			name:           "higher_authority_later_is_related",
			reportTier:     types.TierWire,
			candidateTier:  types.TierSecondary,
			delta:          30 * time.Minute,
			score:          90,
			wantStatus:     types.StatusRelated,
			wantConfidence: 90 * 0.85,
		},
		{
			name:           "lower_authority_later_is_repost",
			reportTier:     types.TierSecondary,
			candidateTier:  types.TierWire,
			delta:          30 * time.Minute,
			score:          90,
			wantStatus:     types.StatusRepost,
			wantConfidence: 90,
		},
		{
			name:           "medium_band_without_new_info_is_related",
			reportTier:     types.TierSecondary,
			candidateTier:  types.TierSecondary,
			delta:          10 * time.Minute,
			score:          75,
			wantStatus:     types.StatusRelated,
			wantConfidence: 75,
		},
		{
			name:           "medium_band_with_new_info_is_update",
			reportTier:     types.TierSecondary,
			candidateTier:  types.TierSecondary,
			delta:          10 * time.Minute,
			score:          75,
			newEntities:    4,
			wantStatus:     types.StatusUpdate,
			wantConfidence: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := report("orig", "first_reporter", tt.candidateTier, base)
			best.EventID = 7

			r := report("later", "reposter", tt.reportTier, base.Add(tt.delta))
			for i := 0; i < tt.newEntities; i++ {
				r.Entities = append(r.Entities, types.Entity{
					Type:  types.EntityGPE,
					Value: string(rune('a' + i)),
				})
			}

			got := Classify(r, best, tt.score, DefaultThresholds())
			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %f, want %f", got.Confidence, tt.wantConfidence)
			}
			if got.EventID != 7 {
				t.Errorf("EventID = %d, want candidate's event", got.EventID)
			}
			if got.OriginalReportID != "orig" || got.OriginalSource != "first_reporter" {
				t.Errorf("attribution = %s/%s", got.OriginalReportID, got.OriginalSource)
			}
			if got.TimeDeltaSeconds != int64(tt.delta.Seconds()) {
				t.Errorf("TimeDeltaSeconds = %d", got.TimeDeltaSeconds)
			}
		})
	}
}

func TestClassifyBoundaryScores(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th := DefaultThresholds()

	best := report("orig", "first", types.TierSecondary, base)
	r := report("later", "second", types.TierSecondary, base.Add(10*time.Minute))

	// Exactly at the repost threshold counts as high similarity.
	if got := Classify(r, best, th.Repost, th); got.Status != types.StatusRepost {
		t.Errorf("score == repost threshold: Status = %s, want REPOST", got.Status)
	}
	// Exactly at the update threshold enters the medium band.
	if got := Classify(r, best, th.Update, th); got.Status != types.StatusRelated {
		t.Errorf("score == update threshold: Status = %s, want RELATED", got.Status)
	}
	// Just below the update threshold is a fresh claim.
	if got := Classify(r, best, th.Update-0.01, th); got.Status != types.StatusOriginal {
		t.Errorf("score < update threshold: Status = %s, want ORIGINAL", got.Status)
	}
}

func TestClassifyIsPure(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	best := report("orig", "first", types.TierSecondary, base)
	r := report("later", "second", types.TierSecondary, base.Add(10*time.Minute))

	first := Classify(r, best, 90, DefaultThresholds())
	second := Classify(r, best, 90, DefaultThresholds())
	if first != second {
		t.Errorf("identical inputs produced different outputs: %+v vs %+v", first, second)
	}
}
