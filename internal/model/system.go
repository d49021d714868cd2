package model

import "time"

// SystemSetting is a global key/value pair.  Writes overwrite.
type SystemSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AuditLog records an action taken against an association or the system.
// AssociationID is nil for system-wide actions such as settings changes.
type AuditLog struct {
	ID            string         `json:"id" db:"id"`
	AssociationID *string        `json:"association_id,omitempty" db:"association_id"`
	ProfileID     *string        `json:"profile_id,omitempty" db:"profile_id"`
	Action        string         `json:"action" db:"action"`
	EntityType    string         `json:"entity_type" db:"entity_type"`
	EntityID      *string        `json:"entity_id,omitempty" db:"entity_id"`
	Details       map[string]any `json:"details" db:"details"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}
