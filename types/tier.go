package types

// Tier is the ordinal authority rank assigned to a source. Lower rank means
// higher authority. Unrecognized tier strings map to TierUnknown, which
// carries the lowest-authority rank.
type Tier string

const (
	TierOSINT        Tier = "1A_OSINT"
	TierOfficial     Tier = "1B_OFFICIAL"
	TierWire         Tier = "1C_WIRE"
	TierAmplifier    Tier = "2_AMPLIFIER"
	TierSecondary    Tier = "3_SECONDARY"
	TierVerification Tier = "3_VERIFICATION"
	TierUnknown      Tier = "UNKNOWN"
)

const unknownTierRank = 99

var tierRanks = map[Tier]int{
	TierOSINT:        1,
	TierOfficial:     2,
	TierWire:         3,
	TierAmplifier:    4,
	TierSecondary:    5,
	TierVerification: 5,
}

// ParseTier maps a raw tier string onto the closed enumeration.
func ParseTier(s string) Tier {
	t := Tier(s)
	if _, ok := tierRanks[t]; ok {
		return t
	}
	return TierUnknown
}

// Rank returns the numeric authority rank. Lower is more authoritative.
func (t Tier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return unknownTierRank
}

// HighAuthority reports whether the tier is one of the tier-1 ranks used by
// verification-chain analysis.
func (t Tier) HighAuthority() bool {
	switch t {
	case TierOSINT, TierOfficial, TierWire:
		return true
	}
	return false
}
