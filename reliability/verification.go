package reliability

import (
	"context"

	"originstamp/types"
)

// Verification statuses, from strongest to weakest.
const (
	StatusOfficialConfirmed = "official_confirmed"
	StatusWireVerified      = "wire_verified"
	StatusCrossVerified     = "cross_verified"
	StatusPartiallyVerified = "partially_verified"
	StatusUnverified        = "unverified"
)

// crossVerifiedMin is how many high-authority confirmations a claim needs
// before it counts as cross-verified.
const crossVerifiedMin = 3

// ChainStore is the slice of the storage contract chain analysis needs.
// ListEventLinks must return links in chronological order.
type ChainStore interface {
	GetEvent(ctx context.Context, eventID int64) (*types.CanonicalEvent, error)
	ListEventLinks(ctx context.Context, eventID int64) ([]types.RepostLink, error)
}

// VerificationChain describes how a claim spread and was confirmed.
type VerificationChain struct {
	EventID                 int64    `json:"event_id"`
	FirstSource             string   `json:"first_source"`
	Status                  string   `json:"status"`
	HighAuthorityConfirmers int      `json:"high_authority_confirmers"`
	WireVerified            bool     `json:"wire_verified"`
	OfficialVerified        bool     `json:"official_verified"`
	AvgConfirmerReliability float64  `json:"avg_confirmer_reliability"`
	TimeToVerificationSecs  *int64   `json:"time_to_verification_seconds,omitempty"`
	TotalLinks              int      `json:"total_links"`
}

// AnalyzeChain scans an event's linked reports in chronological order and
// resolves the verification status: official confirmation beats wire
// confirmation beats cross-verification beats a single high-authority
// confirmer.
func AnalyzeChain(ctx context.Context, store ChainStore, eventID int64) (*VerificationChain, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	links, err := store.ListEventLinks(ctx, eventID)
	if err != nil {
		return nil, err
	}

	chain := &VerificationChain{
		EventID:     eventID,
		FirstSource: event.FirstSource,
		TotalLinks:  len(links),
	}

	var reliabilitySum float64
	reliabilityCount := 0

	for i := range links {
		link := &links[i]

		if link.SourceTier.HighAuthority() {
			chain.HighAuthorityConfirmers++
			if chain.TimeToVerificationSecs == nil {
				delta := link.TimeDeltaSeconds
				chain.TimeToVerificationSecs = &delta
			}
		}
		if link.SourceTier == types.TierWire {
			chain.WireVerified = true
		}
		if link.SourceTier == types.TierOfficial {
			chain.OfficialVerified = true
		}
		if link.SourceReliability > 0 {
			reliabilitySum += link.SourceReliability
			reliabilityCount++
		}
	}

	if reliabilityCount > 0 {
		chain.AvgConfirmerReliability = reliabilitySum / float64(reliabilityCount)
	}

	switch {
	case chain.OfficialVerified:
		chain.Status = StatusOfficialConfirmed
	case chain.WireVerified:
		chain.Status = StatusWireVerified
	case chain.HighAuthorityConfirmers >= crossVerifiedMin:
		chain.Status = StatusCrossVerified
	case chain.HighAuthorityConfirmers >= 1:
		chain.Status = StatusPartiallyVerified
	default:
		chain.Status = StatusUnverified
	}

	return chain, nil
}
