package model

import "time"

// Rank is the discrete loyalty tier derived from a user's cumulative XP.
type Rank string

const (
	RankRecruit   Rank = "Recruit"
	RankAgent     Rank = "Agent"
	RankElite     Rank = "Elite"
	RankCommander Rank = "Commander"
	RankLegend    Rank = "Legend"
)

// Progression is the loyalty-relevant subset of a user. XP is monotonically
// non-decreasing outside of administrative correction; Rank is always derived
// from XP, never set independently.
type Progression struct {
	UserID    string    `json:"user_id"`
	XP        int64     `json:"xp"`
	Rank      Rank      `json:"rank"`
	UpdatedAt time.Time `json:"-"`
}
