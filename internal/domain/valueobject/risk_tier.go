package valueobject

// RiskTier groups risk scores into the bands that drive recommendations.
type RiskTier struct {
	value string
}

var (
	RiskTierBaseline = RiskTier{value: "BASELINE"}
	RiskTierMedium   = RiskTier{value: "MEDIUM"}
	RiskTierHigh     = RiskTier{value: "HIGH"}
)

// RiskTierFromScore maps a 0-100 score to its tier. Both bounds are
// exclusive on the lower side: 70 is medium, 40 is baseline.
func RiskTierFromScore(score float64) RiskTier {
	switch {
	case score > 70:
		return RiskTierHigh
	case score > 40:
		return RiskTierMedium
	default:
		return RiskTierBaseline
	}
}

// String returns the string representation.
func (t RiskTier) String() string {
	return t.value
}

// IsZero returns true if the tier has not been set.
func (t RiskTier) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another RiskTier.
func (t RiskTier) Equal(other RiskTier) bool {
	return t.value == other.value
}
