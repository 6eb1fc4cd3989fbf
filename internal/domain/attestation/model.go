package attestation

import "time"

// Attestation records that a validator approves a project's impact metric.
type Attestation struct {
	ProjectID   uint64    `json:"project_id"`
	MetricName  string    `json:"metric_name"`
	ValidatorID string    `json:"validator_id"`
	AttestedAt  time.Time `json:"attested_at"`
}
