package repository

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
)

func (r *PostgresRepo) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	u, err := prepareUser(u)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.User](ctx, r.db,
		"INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3::user_role) RETURNING "+userCols,
		u.Email, u.PasswordHash, string(u.Role))
}

func (r *PostgresRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, nil
	}
	return database.QueryOne[model.User](ctx, r.db, "SELECT "+userCols+" FROM users WHERE id = $1", id)
}

// GetUserByEmail matches case-insensitively (the column is citext).
func (r *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return database.QueryOne[model.User](ctx, r.db, "SELECT "+userCols+" FROM users WHERE email = $1", normalizeEmail(email))
}

// DeleteUser relies on ON DELETE CASCADE for the profile and memberships.
func (r *PostgresRepo) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	_, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

func (r *PostgresRepo) CreateProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	p, err := prepareProfile(p)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.Profile](ctx, r.db,
		`INSERT INTO profiles (id, first_name, last_name, display_name, two_factor_enabled, totp_secret, recovery_keys)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+profileCols,
		p.ID, p.FirstName, p.LastName, p.DisplayName, p.TwoFactorEnabled, p.TOTPSecret, p.RecoveryKeys)
}

func (r *PostgresRepo) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	if !validID(id) {
		return nil, nil
	}
	return database.QueryOne[model.Profile](ctx, r.db, "SELECT "+profileCols+" FROM profiles WHERE id = $1", id)
}
