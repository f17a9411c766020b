package models

import "time"

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// User is a parent or child account. FamilyID is nil until a household is
// created or joined.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	FamilyID  *int64    `json:"family_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsChild checks if the user is a child account
func (u *User) IsChild() bool {
	return u.Role == RoleChild
}

// BelongsTo checks if the user is a member of the family
func (u *User) BelongsTo(familyID int64) bool {
	return u.FamilyID != nil && *u.FamilyID == familyID
}
