package repository

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
)

func (r *PostgresRepo) CreateItem(ctx context.Context, it model.Item) (*model.Item, error) {
	it, err := prepareItem(it)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.Item](ctx, r.db,
		`INSERT INTO items (association_id, name, description, serial_number, barcode, category_id, location_id,
		                    condition, purchase_date, purchase_price, warranty_expires)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::item_condition, $9, $10, $11) RETURNING `+itemCols,
		it.AssociationID, it.Name, it.Description, it.SerialNumber, it.Barcode, it.CategoryID, it.LocationID,
		string(it.Condition), it.PurchaseDate, it.PurchasePrice, it.WarrantyExpires)
}

func (r *PostgresRepo) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return database.QueryOne[model.Item](ctx, r.db, "SELECT "+itemCols+" FROM items WHERE id = $1", id)
}

func (r *PostgresRepo) GetItemsByAssociationID(ctx context.Context, associationID string) ([]model.Item, error) {
	if !validID(associationID) {
		return []model.Item{}, nil
	}
	return database.Query[model.Item](ctx, r.db,
		"SELECT "+itemCols+" FROM items WHERE association_id = $1 ORDER BY created_at, id", associationID)
}

func (r *PostgresRepo) CreateEquipmentSet(ctx context.Context, s model.EquipmentSet) (*model.EquipmentSet, error) {
	s, err := prepareEquipmentSet(s)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.EquipmentSet](ctx, r.db,
		"INSERT INTO equipment_sets (association_id, name, description) VALUES ($1, $2, $3) RETURNING "+setCols,
		s.AssociationID, s.Name, s.Description)
}

func (r *PostgresRepo) GetEquipmentSetsByAssociationID(ctx context.Context, associationID string) ([]model.EquipmentSet, error) {
	if !validID(associationID) {
		return []model.EquipmentSet{}, nil
	}
	return database.Query[model.EquipmentSet](ctx, r.db,
		"SELECT "+setCols+" FROM equipment_sets WHERE association_id = $1 ORDER BY created_at, id", associationID)
}

func (r *PostgresRepo) AddEquipmentSetItem(ctx context.Context, si model.EquipmentSetItem) (*model.EquipmentSetItem, error) {
	si, err := prepareSetItem(si)
	if err != nil {
		return nil, err
	}
	return database.QueryOne[model.EquipmentSetItem](ctx, r.db,
		"INSERT INTO equipment_set_items (set_id, item_id, quantity) VALUES ($1, $2, $3) RETURNING "+setItemCols,
		si.SetID, si.ItemID, si.Quantity)
}

func (r *PostgresRepo) GetEquipmentSetItems(ctx context.Context, setID string) ([]model.EquipmentSetItem, error) {
	if !validID(setID) {
		return []model.EquipmentSetItem{}, nil
	}
	return database.Query[model.EquipmentSetItem](ctx, r.db,
		"SELECT "+setItemCols+" FROM equipment_set_items WHERE set_id = $1 ORDER BY created_at, id", setID)
}
