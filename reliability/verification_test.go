package reliability

import (
	"context"
	"testing"
	"time"

	"originstamp/types"
)

type fakeChainStore struct {
	event *types.CanonicalEvent
	links []types.RepostLink
}

func (f *fakeChainStore) GetEvent(_ context.Context, _ int64) (*types.CanonicalEvent, error) {
	return f.event, nil
}

func (f *fakeChainStore) ListEventLinks(_ context.Context, _ int64) ([]types.RepostLink, error) {
	return f.links, nil
}

func link(source string, tier types.Tier, deltaSecs int64, reliability float64) types.RepostLink {
	return types.RepostLink{
		Source:            source,
		SourceTier:        tier,
		TimeDeltaSeconds:  deltaSecs,
		SourceReliability: reliability,
		Classification:    types.StatusRepost,
		Timestamp:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(deltaSecs) * time.Second),
	}
}

func TestAnalyzeChain(t *testing.T) {
	event := &types.CanonicalEvent{ID: 1, FirstSource: "osint_watch"}

	tests := []struct {
		name           string
		links          []types.RepostLink
		wantStatus     string
		wantConfirmers int
	}{
		{
			name:       "no_links_unverified",
			links:      nil,
			wantStatus: StatusUnverified,
		},
		{
			name: "only_low_tier_unverified",
			links: []types.RepostLink{
				link("blog1", types.TierSecondary, 60, 0.4),
				link("blog2", types.TierAmplifier, 120, 0.5),
			},
			wantStatus: StatusUnverified,
		},
		{
			name: "single_high_authority_partial",
			links: []types.RepostLink{
				link("osint2", types.TierOSINT, 300, 0.7),
			},
			wantStatus:     StatusPartiallyVerified,
			wantConfirmers: 1,
		},
		{
			name: "three_tier_one_cross_verified",
			links: []types.RepostLink{
				link("osint2", types.TierOSINT, 300, 0.7),
				link("osint3", types.TierOSINT, 400, 0.8),
				link("osint4", types.TierOSINT, 500, 0.6),
			},
			wantStatus:     StatusCrossVerified,
			wantConfirmers: 3,
		},
		{
			name: "wire_beats_cross_verified",
			links: []types.RepostLink{
				link("osint2", types.TierOSINT, 300, 0.7),
				link("osint3", types.TierOSINT, 400, 0.8),
				link("osint4", types.TierOSINT, 500, 0.6),
				link("reuters", types.TierWire, 900, 0.9),
			},
			wantStatus:     StatusWireVerified,
			wantConfirmers: 4,
		},
		{
			name: "official_beats_everything",
			links: []types.RepostLink{
				link("reuters", types.TierWire, 300, 0.9),
				link("idf_spokesman", types.TierOfficial, 600, 0.95),
			},
			wantStatus:     StatusOfficialConfirmed,
			wantConfirmers: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeChainStore{event: event, links: tt.links}
			chain, err := AnalyzeChain(context.Background(), store, 1)
			if err != nil {
				t.Fatalf("AnalyzeChain() error = %v", err)
			}
			if chain.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", chain.Status, tt.wantStatus)
			}
			if chain.HighAuthorityConfirmers != tt.wantConfirmers {
				t.Errorf("HighAuthorityConfirmers = %d, want %d", chain.HighAuthorityConfirmers, tt.wantConfirmers)
			}
			if chain.FirstSource != "osint_watch" {
				t.Errorf("FirstSource = %s", chain.FirstSource)
			}
		})
	}
}

func TestAnalyzeChainTimeToVerification(t *testing.T) {
	store := &fakeChainStore{
		event: &types.CanonicalEvent{ID: 1, FirstSource: "src"},
		links: []types.RepostLink{
			link("blog", types.TierSecondary, 30, 0.4),
			link("osint2", types.TierOSINT, 300, 0.7),
			link("reuters", types.TierWire, 900, 0.9),
		},
	}

	chain, err := AnalyzeChain(context.Background(), store, 1)
	if err != nil {
		t.Fatalf("AnalyzeChain() error = %v", err)
	}
	if chain.TimeToVerificationSecs == nil || *chain.TimeToVerificationSecs != 300 {
		t.Errorf("TimeToVerificationSecs = %v, want 300 (first high-authority link)", chain.TimeToVerificationSecs)
	}
	want := (0.4 + 0.7 + 0.9) / 3
	if diff := chain.AvgConfirmerReliability - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgConfirmerReliability = %f, want %f", chain.AvgConfirmerReliability, want)
	}
}
