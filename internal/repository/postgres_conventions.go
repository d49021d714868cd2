package repository

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
)

func (r *PostgresRepo) CreateConvention(ctx context.Context, c model.Convention) (*model.Convention, error) {
	c, err := prepareConvention(c)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.Convention](ctx, r.db,
		`INSERT INTO conventions (association_id, name, description, start_date, end_date, location, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::convention_status) RETURNING `+conventionCols,
		c.AssociationID, c.Name, c.Description, c.StartDate, c.EndDate, c.Location, string(c.Status))
}

func (r *PostgresRepo) GetConventionByID(ctx context.Context, id string) (*model.Convention, error) {
	if !validID(id) {
		return nil, nil
	}
	return database.QueryOne[model.Convention](ctx, r.db, "SELECT "+conventionCols+" FROM conventions WHERE id = $1", id)
}

func (r *PostgresRepo) GetConventionsByAssociationID(ctx context.Context, associationID string) ([]model.Convention, error) {
	if !validID(associationID) {
		return []model.Convention{}, nil
	}
	return database.Query[model.Convention](ctx, r.db,
		"SELECT "+conventionCols+" FROM conventions WHERE association_id = $1 ORDER BY created_at, id", associationID)
}

func (r *PostgresRepo) CreateConventionMember(ctx context.Context, m model.ConventionMember) (*model.ConventionMember, error) {
	m, err := prepareConventionMember(m)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.ConventionMember](ctx, r.db,
		"INSERT INTO convention_members (convention_id, profile_id, role) VALUES ($1, $2, $3::convention_role) RETURNING "+convMemberCols,
		m.ConventionID, m.ProfileID, string(m.Role))
}

func (r *PostgresRepo) GetConventionMembersByConventionID(ctx context.Context, conventionID string) ([]model.ConventionMember, error) {
	if !validID(conventionID) {
		return []model.ConventionMember{}, nil
	}
	return database.Query[model.ConventionMember](ctx, r.db,
		"SELECT "+convMemberCols+" FROM convention_members WHERE convention_id = $1 ORDER BY created_at, id", conventionID)
}
