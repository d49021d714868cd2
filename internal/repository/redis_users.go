package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/konbase/internal/model"
)

func userHash(u model.User) map[string]any {
	h := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"role":       string(u.Role),
		"created_at": formatTime(u.CreatedAt),
	}
	putOpt(h, "password_hash", u.PasswordHash)
	return h
}

func userFromHash(h map[string]string) (*model.User, error) {
	if len(h) == 0 {
		return nil, nil
	}
	created, err := timeField(h, "created_at")
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           h["id"],
		Email:        h["email"],
		PasswordHash: optField(h, "password_hash"),
		Role:         model.Role(h["role"]),
		CreatedAt:    created,
	}, nil
}

// CreateUser claims users:email:<email> before writing the hash, so a
// second account with the same address fails with ErrConflict.
func (r *RedisRepo) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	u, err := prepareUser(u)
	if err != nil {
		return nil, err
	}
	if u.ID, err = r.newID("user"); err != nil {
		return nil, err
	}
	u.CreatedAt = r.stamp()
	err = r.storeIndexed(ctx, u.ID, []string{userEmailIndex + u.Email}, func(p redis.Pipeliner) error {
		p.HSet(ctx, userPrefix+u.ID, userHash(u))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *RedisRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	h, err := r.rdb.HGetAll(ctx, userPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	return userFromHash(h)
}

func (r *RedisRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := r.lookupIndex(ctx, userEmailIndex+normalizeEmail(email))
	if err != nil || id == "" {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// DeleteUser does by hand what ON DELETE CASCADE does in Postgres: the
// profile, its association and convention memberships (with their pair
// indexes) go, and audit entries keep their row but lose the profile id.
func (r *RedisRepo) DeleteUser(ctx context.Context, id string) error {
	u, err := r.GetUserByID(ctx, id)
	if err != nil || u == nil {
		return err
	}
	members, err := scanJSON(ctx, r.rdb, memberPrefix, func(m *model.AssociationMember) bool { return m.ProfileID == id })
	if err != nil {
		return err
	}
	convMembers, err := scanJSON(ctx, r.rdb, convMemberPrefix, func(m *model.ConventionMember) bool { return m.ProfileID == id })
	if err != nil {
		return err
	}
	audits, err := scanJSON(ctx, r.rdb, auditPrefix, func(l *model.AuditLog) bool { return l.ProfileID != nil && *l.ProfileID == id })
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, userPrefix+id, userEmailIndex+u.Email, profilePrefix+id, profileClaimIndex+id)
		for _, m := range members {
			p.Del(ctx, memberPrefix+m.ID, memberPairIndex+m.AssociationID+":"+m.ProfileID)
		}
		for _, m := range convMembers {
			p.Del(ctx, convMemberPrefix+m.ID, convMemberPairIdx+m.ConventionID+":"+m.ProfileID)
		}
		for _, l := range audits {
			l.ProfileID = nil
			if err := setJSON(ctx, p, auditPrefix+l.ID, l); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func profileHash(p model.Profile) (map[string]any, error) {
	keys, err := json.Marshal(p.RecoveryKeys)
	if err != nil {
		return nil, err
	}
	h := map[string]any{
		"id":                 p.ID,
		"two_factor_enabled": strconv.FormatBool(p.TwoFactorEnabled),
		"recovery_keys":      string(keys),
		"created_at":         formatTime(p.CreatedAt),
	}
	putOpt(h, "first_name", p.FirstName)
	putOpt(h, "last_name", p.LastName)
	putOpt(h, "display_name", p.DisplayName)
	putOpt(h, "totp_secret", p.TOTPSecret)
	return h, nil
}

func profileFromHash(h map[string]string) (*model.Profile, error) {
	if len(h) == 0 {
		return nil, nil
	}
	created, err := timeField(h, "created_at")
	if err != nil {
		return nil, err
	}
	keys := []string{}
	if raw := h["recovery_keys"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			return nil, fmt.Errorf("field recovery_keys: %w", err)
		}
	}
	return &model.Profile{
		ID:               h["id"],
		FirstName:        optField(h, "first_name"),
		LastName:         optField(h, "last_name"),
		DisplayName:      optField(h, "display_name"),
		TwoFactorEnabled: boolField(h, "two_factor_enabled"),
		TOTPSecret:       optField(h, "totp_secret"),
		RecoveryKeys:     keys,
		CreatedAt:        created,
	}, nil
}

func (r *RedisRepo) CreateProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	p, err := prepareProfile(p)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, userPrefix+p.ID); err != nil {
		return nil, err
	}
	p.CreatedAt = r.stamp()
	h, err := profileHash(p)
	if err != nil {
		return nil, err
	}
	err = r.storeIndexed(ctx, p.ID, []string{profileClaimIndex + p.ID}, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, profilePrefix+p.ID, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisRepo) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	h, err := r.rdb.HGetAll(ctx, profilePrefix+id).Result()
	if err != nil {
		return nil, err
	}
	return profileFromHash(h)
}
