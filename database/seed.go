package database

import (
	"context"

	"originstamp/types"
)

// defaultTrackedSources is the starting registry of Middle East / Iran
// focused sources. Upserts are idempotent, so reseeding on every start is
// safe and picks up tier or reliability adjustments.
var defaultTrackedSources = []types.TrackedSource{
	{Source: "OSINTdefender", Tier: types.TierOSINT, InitialReliability: 0.98, Notes: "Very fast ME coverage"},
	{Source: "sentdefender", Tier: types.TierOSINT, InitialReliability: 0.97, Notes: "Rapid breaking news"},
	{Source: "Faytuks", Tier: types.TierOSINT, InitialReliability: 0.96, Notes: "Middle East conflicts specialist"},
	{Source: "IntelDoge", Tier: types.TierOSINT, InitialReliability: 0.95, Notes: "Breaking news ME focus"},
	{Source: "WarMonitors", Tier: types.TierOSINT, InitialReliability: 0.95, Notes: "War monitoring"},
	{Source: "OSINT613", Tier: types.TierOSINT, InitialReliability: 0.97, Notes: "Israel-specific OSINT"},
	{Source: "IsraelRadar_com", Tier: types.TierOSINT, InitialReliability: 0.95, Notes: "Israeli airspace/radar"},

	{Source: "IDF", Tier: types.TierOfficial, InitialReliability: 0.95, Notes: "Official IDF account"},
	{Source: "AJABreaking", Tier: types.TierOfficial, InitialReliability: 0.90, Notes: "Al Jazeera breaking - ME focus"},
	{Source: "Aboriji", Tier: types.TierOfficial, InitialReliability: 0.85, Notes: "Iran/IRGC watcher"},
	{Source: "Iran_Int_TV", Tier: types.TierOfficial, InitialReliability: 0.82, Notes: "Iran International"},
	{Source: "IranIntl_En", Tier: types.TierOfficial, InitialReliability: 0.82, Notes: "Iran International English"},

	{Source: "Joyce_Karam", Tier: types.TierAmplifier, InitialReliability: 0.87, Notes: "ME correspondent"},
	{Source: "haboriji", Tier: types.TierAmplifier, InitialReliability: 0.85, Notes: "Iran specialist"},
	{Source: "IntelCrab", Tier: types.TierAmplifier, InitialReliability: 0.93, Notes: "OSINT with Iran coverage"},
}

// SeedTrackedSources upserts the default source registry and returns how many
// entries it wrote.
func (s *PostgresStore) SeedTrackedSources(ctx context.Context) (int, error) {
	for i, src := range defaultTrackedSources {
		if err := s.UpsertTrackedSource(ctx, src); err != nil {
			return i, err
		}
	}
	return len(defaultTrackedSources), nil
}
