package registry

import "time"

// Reputation scores are percentages.
const (
	MinScore = 0
	MaxScore = 100
)

// Validator is a registered identity allowed to attest to project outcomes.
type Validator struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name,omitempty"`
	ReputationScore int       `json:"reputation_score"`
	RegisteredAt    time.Time `json:"registered_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListOptions filters validator listings.
type ListOptions struct {
	MinReputation int
	Limit         int
	Offset        int
}
