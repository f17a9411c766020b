package models

import "time"

// Subject groups courses within a family, e.g. "Maths"
type Subject struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Course is a piece of learning material a parent sets up
type Course struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	SubjectID   *int64    `json:"subject_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Assignment gives a course to one child with a screen-time reward
type Assignment struct {
	ID            int64      `json:"id"`
	CourseID      int64      `json:"course_id"`
	ChildID       int64      `json:"child_id"`
	FamilyID      int64      `json:"family_id"`
	RewardMinutes int        `json:"reward_minutes"`
	DueAt         *time.Time `json:"due_at"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsOverdue checks if an incomplete assignment is past its due time
func (a *Assignment) IsOverdue(now time.Time) bool {
	return !a.Completed && a.DueAt != nil && now.After(*a.DueAt)
}
