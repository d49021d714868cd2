package model

import "time"

// Association is a tenant.  Most other entities are scoped to one.
type Association struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description *string        `json:"description,omitempty" db:"description"`
	Email       *string        `json:"email,omitempty" db:"email"`
	Phone       *string        `json:"phone,omitempty" db:"phone"`
	Website     *string        `json:"website,omitempty" db:"website"`
	Address     *string        `json:"address,omitempty" db:"address"`
	Settings    map[string]any `json:"settings" db:"settings"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// AssociationMember links a profile to an association with a role.  A
// profile holds at most one membership per association.
//
// AssociationName is only populated by lookups that join the owning
// association (listing memberships of a profile).
type AssociationMember struct {
	ID              string    `json:"id" db:"id"`
	AssociationID   string    `json:"association_id" db:"association_id"`
	ProfileID       string    `json:"profile_id" db:"profile_id"`
	Role            Role      `json:"role" db:"role"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	AssociationName string    `json:"association_name,omitempty" db:"association_name"`
}
