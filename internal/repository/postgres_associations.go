package repository

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
)

func (r *PostgresRepo) CreateAssociation(ctx context.Context, a model.Association) (*model.Association, error) {
	a, err := prepareAssociation(a)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.Association](ctx, r.db,
		`INSERT INTO associations (name, description, email, phone, website, address, settings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+associationCols,
		a.Name, a.Description, a.Email, a.Phone, a.Website, a.Address, a.Settings)
}

func (r *PostgresRepo) GetAssociationByID(ctx context.Context, id string) (*model.Association, error) {
	if !validID(id) {
		return nil, nil
	}
	return database.QueryOne[model.Association](ctx, r.db, "SELECT "+associationCols+" FROM associations WHERE id = $1", id)
}

func (r *PostgresRepo) ListAssociations(ctx context.Context) ([]model.Association, error) {
	return database.Query[model.Association](ctx, r.db, "SELECT "+associationCols+" FROM associations ORDER BY created_at, id")
}

// CreateAssociationMember fails with a unique_violation (23505) when the
// profile already belongs to the association.
func (r *PostgresRepo) CreateAssociationMember(ctx context.Context, m model.AssociationMember) (*model.AssociationMember, error) {
	m, err := prepareMember(m)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.AssociationMember](ctx, r.db,
		"INSERT INTO association_members (association_id, profile_id, role) VALUES ($1, $2, $3::user_role) RETURNING "+memberCols,
		m.AssociationID, m.ProfileID, string(m.Role))
}

func (r *PostgresRepo) GetAssociationMember(ctx context.Context, associationID, profileID string) (*model.AssociationMember, error) {
	if !validID(associationID, profileID) {
		return nil, nil
	}
	return database.QueryOne[model.AssociationMember](ctx, r.db,
		"SELECT "+memberCols+" FROM association_members WHERE association_id = $1 AND profile_id = $2",
		associationID, profileID)
}

func (r *PostgresRepo) GetAssociationMembersByProfileID(ctx context.Context, profileID string) ([]model.AssociationMember, error) {
	if !validID(profileID) {
		return []model.AssociationMember{}, nil
	}
	return database.Query[model.AssociationMember](ctx, r.db,
		`SELECT m.id, m.association_id, m.profile_id, m.role::text AS role, m.created_at, a.name AS association_name
		   FROM association_members m
		   JOIN associations a ON a.id = m.association_id
		  WHERE m.profile_id = $1
		  ORDER BY m.created_at, m.id`, profileID)
}

func (r *PostgresRepo) GetAssociationMembersByAssociationID(ctx context.Context, associationID string) ([]model.AssociationMember, error) {
	if !validID(associationID) {
		return []model.AssociationMember{}, nil
	}
	return database.Query[model.AssociationMember](ctx, r.db,
		"SELECT "+memberCols+" FROM association_members WHERE association_id = $1 ORDER BY created_at, id", associationID)
}

func (r *PostgresRepo) DeleteAssociationMember(ctx context.Context, associationID, profileID string) error {
	if !validID(associationID, profileID) {
		return nil
	}
	_, err := r.db.Exec(ctx, "DELETE FROM association_members WHERE association_id = $1 AND profile_id = $2", associationID, profileID)
	return err
}

func (r *PostgresRepo) CreateAuditLog(ctx context.Context, l model.AuditLog) (*model.AuditLog, error) {
	l, err := prepareAuditLog(l)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.AuditLog](ctx, r.db,
		`INSERT INTO audit_logs (association_id, profile_id, action, entity_type, entity_id, details)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+auditCols,
		l.AssociationID, l.ProfileID, l.Action, l.EntityType, l.EntityID, l.Details)
}

func (r *PostgresRepo) GetAuditLogsByAssociationID(ctx context.Context, associationID string, limit int) ([]model.AuditLog, error) {
	if !validID(associationID) {
		return []model.AuditLog{}, nil
	}
	q := "SELECT " + auditCols + " FROM audit_logs WHERE association_id = $1 ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		return database.Query[model.AuditLog](ctx, r.db, q+" LIMIT $2", associationID, limit)
	}
	return database.Query[model.AuditLog](ctx, r.db, q, associationID)
}
