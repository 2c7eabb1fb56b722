// Package loyalty implements the spend-to-XP conversion and rank tiering.
package loyalty

import "github.com/fairyhunter13/storefront-order-system/internal/model"

// DefaultXPDivisor is the number of minor currency units that earn one
// experience point. It is a policy constant, overridable via configuration.
const DefaultXPDivisor int64 = 10

// Rank thresholds, inclusive at the lower bound.
const (
	agentThreshold     = 500
	eliteThreshold     = 2000
	commanderThreshold = 5000
	legendThreshold    = 10000
)

// EarnedXP returns the experience points granted for an order total in minor
// units. Fractional XP is truncated. A non-positive divisor falls back to the
// default policy.
func EarnedXP(totalMinor, xpDivisor int64) int64 {
	if xpDivisor <= 0 {
		xpDivisor = DefaultXPDivisor
	}
	if totalMinor <= 0 {
		return 0
	}
	return totalMinor / xpDivisor
}

// RankForXP maps cumulative XP to its rank tier. It is a pure function: the
// same XP always yields the same rank.
func RankForXP(xp int64) model.Rank {
	switch {
	case xp >= legendThreshold:
		return model.RankLegend
	case xp >= commanderThreshold:
		return model.RankCommander
	case xp >= eliteThreshold:
		return model.RankElite
	case xp >= agentThreshold:
		return model.RankAgent
	default:
		return model.RankRecruit
	}
}

// RankOrder returns the position of a rank in the ascending tier ordering
// Recruit < Agent < Elite < Commander < Legend. Unknown ranks sort first.
func RankOrder(r model.Rank) int {
	switch r {
	case model.RankAgent:
		return 1
	case model.RankElite:
		return 2
	case model.RankCommander:
		return 3
	case model.RankLegend:
		return 4
	default:
		return 0
	}
}
