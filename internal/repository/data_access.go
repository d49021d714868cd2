package repository

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendPostgres Backend = "postgresql"
	BackendRedis    Backend = "redis"
)

// DataAccess is implemented by every backend.  Single-entity lookups
// return (nil, nil) when nothing matches and list lookups return an empty
// slice; neither treats not-found as an error.  Create methods ignore any
// ID or timestamp on their input and return the stored entity.
type DataAccess interface {
	Backend() Backend

	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// DeleteUser removes the user with its profile and every membership
	// that references the profile.
	DeleteUser(ctx context.Context, id string) error

	// CreateProfile stores p under p.ID, which must be an existing user id.
	CreateProfile(ctx context.Context, p model.Profile) (*model.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)

	CreateAssociation(ctx context.Context, a model.Association) (*model.Association, error)
	GetAssociationByID(ctx context.Context, id string) (*model.Association, error)
	ListAssociations(ctx context.Context) ([]model.Association, error)

	CreateAssociationMember(ctx context.Context, m model.AssociationMember) (*model.AssociationMember, error)
	GetAssociationMember(ctx context.Context, associationID, profileID string) (*model.AssociationMember, error)
	// GetAssociationMembersByProfileID fills AssociationName on each row.
	GetAssociationMembersByProfileID(ctx context.Context, profileID string) ([]model.AssociationMember, error)
	GetAssociationMembersByAssociationID(ctx context.Context, associationID string) ([]model.AssociationMember, error)
	// DeleteAssociationMember removes the membership only; the profile stays.
	DeleteAssociationMember(ctx context.Context, associationID, profileID string) error

	CreateConvention(ctx context.Context, c model.Convention) (*model.Convention, error)
	GetConventionByID(ctx context.Context, id string) (*model.Convention, error)
	GetConventionsByAssociationID(ctx context.Context, associationID string) ([]model.Convention, error)
	CreateConventionMember(ctx context.Context, m model.ConventionMember) (*model.ConventionMember, error)
	GetConventionMembersByConventionID(ctx context.Context, conventionID string) ([]model.ConventionMember, error)

	CreateItem(ctx context.Context, it model.Item) (*model.Item, error)
	GetItemByID(ctx context.Context, id string) (*model.Item, error)
	GetItemsByAssociationID(ctx context.Context, associationID string) ([]model.Item, error)

	CreateEquipmentSet(ctx context.Context, s model.EquipmentSet) (*model.EquipmentSet, error)
	GetEquipmentSetsByAssociationID(ctx context.Context, associationID string) ([]model.EquipmentSet, error)
	AddEquipmentSetItem(ctx context.Context, si model.EquipmentSetItem) (*model.EquipmentSetItem, error)
	GetEquipmentSetItems(ctx context.Context, setID string) ([]model.EquipmentSetItem, error)

	// SetSystemSetting upserts: the last write for a key wins.
	SetSystemSetting(ctx context.Context, key, value string) (*model.SystemSetting, error)
	GetSystemSetting(ctx context.Context, key string) (*model.SystemSetting, error)
	// ListSystemSettings returns settings whose key starts with prefix,
	// ordered by key.  An empty prefix lists everything.
	ListSystemSettings(ctx context.Context, prefix string) ([]model.SystemSetting, error)

	CreateAuditLog(ctx context.Context, l model.AuditLog) (*model.AuditLog, error)
	// GetAuditLogsByAssociationID returns the newest entries first.  A
	// non-positive limit means no limit.
	GetAuditLogsByAssociationID(ctx context.Context, associationID string, limit int) ([]model.AuditLog, error)

	// HealthCheck probes the backend.  It never returns an error; failures
	// are reported as an unhealthy status.
	HealthCheck(ctx context.Context) database.Health
	// ExecuteQuery and ExecuteQuerySingle run raw SQL.  The key-value
	// backend returns ErrUnsupported.
	ExecuteQuery(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
	ExecuteQuerySingle(ctx context.Context, sql string, args ...any) (map[string]any, error)

	Close() error
}
