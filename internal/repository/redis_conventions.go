package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/konbase/internal/model"
)

func (r *RedisRepo) CreateConvention(ctx context.Context, c model.Convention) (*model.Convention, error) {
	c, err := prepareConvention(c)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, associationPrefix+c.AssociationID); err != nil {
		return nil, err
	}
	if c.ID, err = r.newID("conv"); err != nil {
		return nil, err
	}
	c.CreatedAt = r.stamp()
	if _, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return setJSON(ctx, p, conventionPrefix+c.ID, c)
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RedisRepo) GetConventionByID(ctx context.Context, id string) (*model.Convention, error) {
	return getJSON[model.Convention](ctx, r.rdb, conventionPrefix+id)
}

func (r *RedisRepo) GetConventionsByAssociationID(ctx context.Context, associationID string) ([]model.Convention, error) {
	convs, err := scanJSON(ctx, r.rdb, conventionPrefix, func(c *model.Convention) bool { return c.AssociationID == associationID })
	if err != nil {
		return nil, err
	}
	sortByCreated(convs, func(c model.Convention) (time.Time, string) { return c.CreatedAt, c.ID })
	return convs, nil
}

func (r *RedisRepo) CreateConventionMember(ctx context.Context, m model.ConventionMember) (*model.ConventionMember, error) {
	m, err := prepareConventionMember(m)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, conventionPrefix+m.ConventionID, profilePrefix+m.ProfileID); err != nil {
		return nil, err
	}
	if m.ID, err = r.newID("convmember"); err != nil {
		return nil, err
	}
	m.CreatedAt = r.stamp()
	pair := convMemberPairIdx + m.ConventionID + ":" + m.ProfileID
	err = r.storeIndexed(ctx, m.ID, []string{pair}, func(p redis.Pipeliner) error {
		return setJSON(ctx, p, convMemberPrefix+m.ID, m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RedisRepo) GetConventionMembersByConventionID(ctx context.Context, conventionID string) ([]model.ConventionMember, error) {
	members, err := scanJSON(ctx, r.rdb, convMemberPrefix, func(m *model.ConventionMember) bool { return m.ConventionID == conventionID })
	if err != nil {
		return nil, err
	}
	sortByCreated(members, func(m model.ConventionMember) (time.Time, string) { return m.CreatedAt, m.ID })
	return members, nil
}
