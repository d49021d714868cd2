package model

import "time"

type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
	ConditionPoor    ItemCondition = "poor"
	ConditionDamaged ItemCondition = "damaged"
	ConditionRetired ItemCondition = "retired"
)

// Item is a single inventory unit.  Barcode holds the QR/barcode payload;
// codes are generated by the label tooling and only stored here.
type Item struct {
	ID              string        `json:"id" db:"id"`
	AssociationID   string        `json:"association_id" db:"association_id"`
	Name            string        `json:"name" db:"name"`
	Description     *string       `json:"description,omitempty" db:"description"`
	SerialNumber    *string       `json:"serial_number,omitempty" db:"serial_number"`
	Barcode         *string       `json:"barcode,omitempty" db:"barcode"`
	CategoryID      *string       `json:"category_id,omitempty" db:"category_id"`
	LocationID      *string       `json:"location_id,omitempty" db:"location_id"`
	Condition       ItemCondition `json:"condition" db:"condition"`
	PurchaseDate    *time.Time    `json:"purchase_date,omitempty" db:"purchase_date"`
	PurchasePrice   *float64      `json:"purchase_price,omitempty" db:"purchase_price"`
	WarrantyExpires *time.Time    `json:"warranty_expires,omitempty" db:"warranty_expires"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// EquipmentSet is a named bundle of items.
type EquipmentSet struct {
	ID            string    `json:"id" db:"id"`
	AssociationID string    `json:"association_id" db:"association_id"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// EquipmentSetItem records how many of an item belong to a set.
type EquipmentSetItem struct {
	ID        string    `json:"id" db:"id"`
	SetID     string    `json:"set_id" db:"set_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
