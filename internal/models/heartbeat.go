package models

import "time"

const HeartbeatAlive = "alive"

// Liveness values reported per child by the family heartbeat view
const (
	LivenessAlive   = "alive"
	LivenessNever   = "never"
	LivenessUnknown = "unknown"
)

// HeartbeatLog is one liveness ping from a child device
type HeartbeatLog struct {
	ID          int64     `json:"id"`
	ChildID     int64     `json:"child_id"`
	FamilyID    int64     `json:"family_id"`
	HeartbeatAt time.Time `json:"heartbeat_at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChildHeartbeatStatus summarises the most recent heartbeat of one child
type ChildHeartbeatStatus struct {
	ChildID       int64      `json:"child_id"`
	ChildName     string     `json:"child_name"`
	ChildEmail    string     `json:"child_email"`
	LastHeartbeat *time.Time `json:"last_heartbeat"`
	Status        string     `json:"status"`
}
