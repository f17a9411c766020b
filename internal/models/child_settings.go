package models

import "time"

// ChildSettings holds a child's device lock and earned screen time, in minutes
type ChildSettings struct {
	ChildID      int64     `json:"child_id"`
	IsLocked     bool      `json:"is_locked"`
	TimerRunning bool      `json:"timer_running"`
	TimeEarned   int       `json:"time_earned"`
	TimeUsed     int       `json:"time_used"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultChildSettings returns the locked state a child starts in
func DefaultChildSettings(childID int64) ChildSettings {
	return ChildSettings{
		ChildID:  childID,
		IsLocked: true,
	}
}

// TimeRemaining is earned minus used, never negative
func (s ChildSettings) TimeRemaining() int {
	if s.TimeUsed >= s.TimeEarned {
		return 0
	}
	return s.TimeEarned - s.TimeUsed
}
