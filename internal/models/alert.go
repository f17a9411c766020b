package models

import "time"

const AlertTypeAppClosed = "app_closed"

// BarrierAlert records a suspected barrier violation for parent review
type BarrierAlert struct {
	ID             int64      `json:"id"`
	ChildID        int64      `json:"child_id"`
	FamilyID       int64      `json:"family_id"`
	AlertType      string     `json:"alert_type"`
	AlertMessage   string     `json:"alert_message"`
	TriggeredAt    time.Time  `json:"triggered_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
}
