package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/konbase/internal/model"
)

func associationHash(a model.Association) (map[string]any, error) {
	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return nil, err
	}
	h := map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"settings":   string(settings),
		"created_at": formatTime(a.CreatedAt),
	}
	putOpt(h, "description", a.Description)
	putOpt(h, "email", a.Email)
	putOpt(h, "phone", a.Phone)
	putOpt(h, "website", a.Website)
	putOpt(h, "address", a.Address)
	return h, nil
}

func associationFromHash(h map[string]string) (*model.Association, error) {
	if len(h) == 0 {
		return nil, nil
	}
	created, err := timeField(h, "created_at")
	if err != nil {
		return nil, err
	}
	settings := map[string]any{}
	if raw := h["settings"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			return nil, fmt.Errorf("field settings: %w", err)
		}
	}
	return &model.Association{
		ID:          h["id"],
		Name:        h["name"],
		Description: optField(h, "description"),
		Email:       optField(h, "email"),
		Phone:       optField(h, "phone"),
		Website:     optField(h, "website"),
		Address:     optField(h, "address"),
		Settings:    settings,
		CreatedAt:   created,
	}, nil
}

func (r *RedisRepo) CreateAssociation(ctx context.Context, a model.Association) (*model.Association, error) {
	a, err := prepareAssociation(a)
	if err != nil {
		return nil, err
	}
	if a.ID, err = r.newID("assoc"); err != nil {
		return nil, err
	}
	a.CreatedAt = r.stamp()
	h, err := associationHash(a)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.HSet(ctx, associationPrefix+a.ID, h).Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *RedisRepo) GetAssociationByID(ctx context.Context, id string) (*model.Association, error) {
	h, err := r.rdb.HGetAll(ctx, associationPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	return associationFromHash(h)
}

func (r *RedisRepo) ListAssociations(ctx context.Context) ([]model.Association, error) {
	keys, err := r.rdb.Keys(ctx, associationPrefix+"*").Result()
	if err != nil {
		return nil, err
	}
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	if _, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.HGetAll(ctx, k)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	out := make([]model.Association, 0, len(keys))
	for _, cmd := range cmds {
		a, err := associationFromHash(cmd.Val())
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	sortByCreated(out, func(a model.Association) (time.Time, string) { return a.CreatedAt, a.ID })
	return out, nil
}

func memberPair(associationID, profileID string) string {
	return memberPairIndex + associationID + ":" + profileID
}

func (r *RedisRepo) CreateAssociationMember(ctx context.Context, m model.AssociationMember) (*model.AssociationMember, error) {
	m, err := prepareMember(m)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, associationPrefix+m.AssociationID, profilePrefix+m.ProfileID); err != nil {
		return nil, err
	}
	if m.ID, err = r.newID("member"); err != nil {
		return nil, err
	}
	m.CreatedAt = r.stamp()
	err = r.storeIndexed(ctx, m.ID, []string{memberPair(m.AssociationID, m.ProfileID)}, func(p redis.Pipeliner) error {
		return setJSON(ctx, p, memberPrefix+m.ID, m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RedisRepo) GetAssociationMember(ctx context.Context, associationID, profileID string) (*model.AssociationMember, error) {
	id, err := r.lookupIndex(ctx, memberPair(associationID, profileID))
	if err != nil || id == "" {
		return nil, err
	}
	return getJSON[model.AssociationMember](ctx, r.rdb, memberPrefix+id)
}

// GetAssociationMembersByProfileID reads the association names in one
// round trip.  Memberships whose association no longer exists are left
// out, as the inner join does on the relational side.
func (r *RedisRepo) GetAssociationMembersByProfileID(ctx context.Context, profileID string) ([]model.AssociationMember, error) {
	members, err := scanJSON(ctx, r.rdb, memberPrefix, func(m *model.AssociationMember) bool { return m.ProfileID == profileID })
	if err != nil || len(members) == 0 {
		return members, err
	}
	names := make([]*redis.StringCmd, len(members))
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, m := range members {
			names[i] = p.HGet(ctx, associationPrefix+m.AssociationID, "name")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	out := members[:0]
	for i, m := range members {
		name, err := names[i].Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.AssociationName = name
		out = append(out, m)
	}
	sortByCreated(out, func(m model.AssociationMember) (time.Time, string) { return m.CreatedAt, m.ID })
	return out, nil
}

func (r *RedisRepo) GetAssociationMembersByAssociationID(ctx context.Context, associationID string) ([]model.AssociationMember, error) {
	members, err := scanJSON(ctx, r.rdb, memberPrefix, func(m *model.AssociationMember) bool { return m.AssociationID == associationID })
	if err != nil {
		return nil, err
	}
	sortByCreated(members, func(m model.AssociationMember) (time.Time, string) { return m.CreatedAt, m.ID })
	return members, nil
}

func (r *RedisRepo) DeleteAssociationMember(ctx context.Context, associationID, profileID string) error {
	pair := memberPair(associationID, profileID)
	id, err := r.lookupIndex(ctx, pair)
	if err != nil || id == "" {
		return err
	}
	return r.rdb.Del(ctx, memberPrefix+id, pair).Err()
}

func (r *RedisRepo) CreateAuditLog(ctx context.Context, l model.AuditLog) (*model.AuditLog, error) {
	l, err := prepareAuditLog(l)
	if err != nil {
		return nil, err
	}
	if l.ID, err = r.newID("audit"); err != nil {
		return nil, err
	}
	l.CreatedAt = r.stamp()
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.Set(ctx, auditPrefix+l.ID, b, 0).Err(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *RedisRepo) GetAuditLogsByAssociationID(ctx context.Context, associationID string, limit int) ([]model.AuditLog, error) {
	logs, err := scanJSON(ctx, r.rdb, auditPrefix, func(l *model.AuditLog) bool {
		return l.AssociationID != nil && *l.AssociationID == associationID
	})
	if err != nil {
		return nil, err
	}
	sortByCreated(logs, func(l model.AuditLog) (time.Time, string) { return l.CreatedAt, l.ID })
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
