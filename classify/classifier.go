// Package classify maps a report and its best-matching candidate onto one of
// the terminal outcomes ORIGINAL, REPOST, UPDATE or RELATED. The decision
// procedure is deliberately biased toward precision: every ambiguous case
// resolves to RELATED rather than risking a false REPOST or UPDATE label.
package classify

import (
	"time"

	"originstamp/similarity"
	"originstamp/types"
)

// Thresholds hold the tunable decision constants. Repost must stay strictly
// above Update.
type Thresholds struct {
	Repost            float64
	Update            float64
	IndependentWindow time.Duration
}

// DefaultThresholds returns the standard operating values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Repost:            85,
		Update:            70,
		IndependentWindow: 5 * time.Minute,
	}
}

// Confidence reduction factors for the two RELATED escape hatches.
const (
	nearSimultaneousFactor = 0.8
	higherAuthorityFactor  = 0.85
)

// Classify decides the outcome for a report given its single best candidate
// and the composite similarity score between them. best may be nil when no
// candidate was retrieved. The function is pure: identical inputs always
// yield identical output.
func Classify(report *types.Report, best *types.Report, bestScore float64, th Thresholds) types.Classification {
	// No candidate, or nothing close enough: first report of this claim.
	if best == nil || bestScore < th.Update {
		confidence := 100.0
		if best != nil {
			confidence = 100.0 - bestScore
		}
		return types.Classification{
			Status:          types.StatusOriginal,
			Confidence:      confidence,
			SimilarityScore: bestScore,
		}
	}

	timeDelta := report.Timestamp.Sub(best.Timestamp)
	timeDeltaSeconds := int64(timeDelta.Seconds())
	hasNewInfo := similarity.DetectNewInformation(report, best)

	result := types.Classification{
		EventID:          best.EventID,
		OriginalReportID: best.ID,
		OriginalSource:   best.Source,
		TimeDeltaSeconds: timeDeltaSeconds,
		AddedNewInfo:     hasNewInfo,
		SimilarityScore:  bestScore,
	}

	if bestScore >= th.Repost {
		switch {
		case timeDelta < th.IndependentWindow:
			// Reports this close together may be independent sightings of
			// the same event; never auto-label them reposts.
			result.Status = types.StatusRelated
			result.Confidence = bestScore * nearSimultaneousFactor

		case hasNewInfo:
			result.Status = types.StatusUpdate
			result.Confidence = bestScore

		case report.SourceTier.Rank() >= best.SourceTier.Rank():
			// Same or lower authority repeating an earlier report.
			result.Status = types.StatusRepost
			result.Confidence = bestScore

		default:
			// A strictly higher-authority source reporting later may be
			// independent verification rather than a repost.
			result.Status = types.StatusRelated
			result.Confidence = bestScore * higherAuthorityFactor
		}
		return result
	}

	// Medium similarity band.
	if hasNewInfo {
		result.Status = types.StatusUpdate
	} else {
		result.Status = types.StatusRelated
	}
	result.Confidence = bestScore
	return result
}
