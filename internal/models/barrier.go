package models

import "time"

// DefaultCheckIntervalSeconds is how often child clients are expected to
// send heartbeats while the barrier is active. Every toggle resets to it.
const DefaultCheckIntervalSeconds = 30

// BarrierStatus is the single per-family lock-down flag
type BarrierStatus struct {
	FamilyID             int64      `json:"family_id"`
	IsActive             bool       `json:"is_active"`
	CheckIntervalSeconds int        `json:"check_interval_seconds"`
	ActivatedAt          *time.Time `json:"activated_at"`
	ActivatedBy          *int64     `json:"activated_by"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
