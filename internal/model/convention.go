package model

import "time"

type ConventionStatus string

const (
	ConventionPlanning  ConventionStatus = "planning"
	ConventionActive    ConventionStatus = "active"
	ConventionCompleted ConventionStatus = "completed"
	ConventionCancelled ConventionStatus = "cancelled"
)

type ConventionRole string

const (
	ConventionOrganizer ConventionRole = "organizer"
	ConventionStaff     ConventionRole = "staff"
	ConventionHelper    ConventionRole = "helper"
	ConventionAttendee  ConventionRole = "attendee"
)

// Convention is an event run by one association.  EndDate is expected to
// be on or after StartDate but this is not enforced by the data layer.
type Convention struct {
	ID            string           `json:"id" db:"id"`
	AssociationID string           `json:"association_id" db:"association_id"`
	Name          string           `json:"name" db:"name"`
	Description   *string          `json:"description,omitempty" db:"description"`
	StartDate     time.Time        `json:"start_date" db:"start_date"`
	EndDate       time.Time        `json:"end_date" db:"end_date"`
	Location      *string          `json:"location,omitempty" db:"location"`
	Status        ConventionStatus `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// ConventionMember is unique per (ConventionID, ProfileID).
type ConventionMember struct {
	ID           string         `json:"id" db:"id"`
	ConventionID string         `json:"convention_id" db:"convention_id"`
	ProfileID    string         `json:"profile_id" db:"profile_id"`
	Role         ConventionRole `json:"role" db:"role"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
