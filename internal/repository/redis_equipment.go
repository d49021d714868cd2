package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/konbase/internal/model"
)

func (r *RedisRepo) CreateItem(ctx context.Context, it model.Item) (*model.Item, error) {
	it, err := prepareItem(it)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, associationPrefix+it.AssociationID); err != nil {
		return nil, err
	}
	if it.ID, err = r.newID("item"); err != nil {
		return nil, err
	}
	it.CreatedAt = r.stamp()
	if _, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return setJSON(ctx, p, itemPrefix+it.ID, it)
	}); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *RedisRepo) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	return getJSON[model.Item](ctx, r.rdb, itemPrefix+id)
}

func (r *RedisRepo) GetItemsByAssociationID(ctx context.Context, associationID string) ([]model.Item, error) {
	items, err := scanJSON(ctx, r.rdb, itemPrefix, func(it *model.Item) bool { return it.AssociationID == associationID })
	if err != nil {
		return nil, err
	}
	sortByCreated(items, func(it model.Item) (time.Time, string) { return it.CreatedAt, it.ID })
	return items, nil
}

func (r *RedisRepo) CreateEquipmentSet(ctx context.Context, s model.EquipmentSet) (*model.EquipmentSet, error) {
	s, err := prepareEquipmentSet(s)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, associationPrefix+s.AssociationID); err != nil {
		return nil, err
	}
	if s.ID, err = r.newID("set"); err != nil {
		return nil, err
	}
	s.CreatedAt = r.stamp()
	if _, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return setJSON(ctx, p, setPrefix+s.ID, s)
	}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisRepo) GetEquipmentSetsByAssociationID(ctx context.Context, associationID string) ([]model.EquipmentSet, error) {
	sets, err := scanJSON(ctx, r.rdb, setPrefix, func(s *model.EquipmentSet) bool { return s.AssociationID == associationID })
	if err != nil {
		return nil, err
	}
	sortByCreated(sets, func(s model.EquipmentSet) (time.Time, string) { return s.CreatedAt, s.ID })
	return sets, nil
}

// AddEquipmentSetItem rejects a second row for the same item in a set;
// change the quantity instead.
func (r *RedisRepo) AddEquipmentSetItem(ctx context.Context, si model.EquipmentSetItem) (*model.EquipmentSetItem, error) {
	si, err := prepareSetItem(si)
	if err != nil {
		return nil, err
	}
	if err := r.requireExists(ctx, setPrefix+si.SetID, itemPrefix+si.ItemID); err != nil {
		return nil, err
	}
	if si.ID, err = r.newID("setitem"); err != nil {
		return nil, err
	}
	si.CreatedAt = r.stamp()
	err = r.storeIndexed(ctx, si.ID, []string{setItemPairIndex + si.SetID + ":" + si.ItemID}, func(p redis.Pipeliner) error {
		return setJSON(ctx, p, setItemPrefix+si.ID, si)
	})
	if err != nil {
		return nil, err
	}
	return &si, nil
}

func (r *RedisRepo) GetEquipmentSetItems(ctx context.Context, setID string) ([]model.EquipmentSetItem, error) {
	items, err := scanJSON(ctx, r.rdb, setItemPrefix, func(si *model.EquipmentSetItem) bool { return si.SetID == setID })
	if err != nil {
		return nil, err
	}
	sortByCreated(items, func(si model.EquipmentSetItem) (time.Time, string) { return si.CreatedAt, si.ID })
	return items, nil
}
