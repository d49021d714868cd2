// Package queue defines the audit event payload exchanged over the message
// broker and the consumer that stores those events.
package queue

import (
	"time"

	"github.com/iliyamo/konbase/internal/model"
)

// AuditQueue is the durable queue audit events travel on.
const AuditQueue = "konbase.audit"

// AuditEvent is published whenever an administrative change is made.
// The consumer turns each event into one audit_logs row; the row's own
// created_at is set at insert time, OccurredAt is kept in Details.
type AuditEvent struct {
	AssociationID *string        `json:"association_id,omitempty"`
	ProfileID     *string        `json:"profile_id,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      *string        `json:"entity_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// AuditLog converts the event into the stored shape.
func (e AuditEvent) AuditLog() model.AuditLog {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	if !e.OccurredAt.IsZero() {
		details["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	return model.AuditLog{
		AssociationID: e.AssociationID,
		ProfileID:     e.ProfileID,
		Action:        e.Action,
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		Details:       details,
	}
}
