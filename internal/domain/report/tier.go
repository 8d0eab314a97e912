package report

// RiskTier is a display band for a raw risk score. Engine logic never
// branches on it.
type RiskTier string

const (
	TierClean     RiskTier = "clean"
	TierLowMedium RiskTier = "low-medium"
	TierHigh      RiskTier = "high"
	TierCritical  RiskTier = "critical"
)

// TierFor maps a score to its band: 0 clean, 1-40 low-medium, 41-80 high,
// 81+ critical.
func TierFor(score int) RiskTier {
	switch {
	case score <= 0:
		return TierClean
	case score <= 40:
		return TierLowMedium
	case score <= 80:
		return TierHigh
	default:
		return TierCritical
	}
}
