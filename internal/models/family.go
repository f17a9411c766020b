package models

import "time"

// Family is a household of parents and children sharing one barrier
type Family struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FamilyWithMembers combines a family with its member information
type FamilyWithMembers struct {
	Family  Family `json:"family"`
	Members []User `json:"members"`
}
