package repository

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/konbase/internal/model"
)

// The prepare functions validate input and apply the column defaults of
// the relational schema, so both backends store the same values.

func prepareUser(u model.User) (model.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return u, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if u.Role == "" {
		u.Role = model.RoleMember
	}
	if !u.Role.Valid() {
		return u, fmt.Errorf("%w: unknown role %q", ErrInvalid, u.Role)
	}
	return u, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func prepareProfile(p model.Profile) (model.Profile, error) {
	if p.ID == "" {
		return p, fmt.Errorf("%w: profile id (user id) is required", ErrInvalid)
	}
	if p.RecoveryKeys == nil {
		p.RecoveryKeys = []string{}
	}
	return p, nil
}

func prepareAssociation(a model.Association) (model.Association, error) {
	if strings.TrimSpace(a.Name) == "" {
		return a, fmt.Errorf("%w: association name is required", ErrInvalid)
	}
	if a.Settings == nil {
		a.Settings = map[string]any{}
	}
	return a, nil
}

func prepareMember(m model.AssociationMember) (model.AssociationMember, error) {
	if m.AssociationID == "" || m.ProfileID == "" {
		return m, fmt.Errorf("%w: association_id and profile_id are required", ErrInvalid)
	}
	if m.Role == "" {
		m.Role = model.RoleMember
	}
	if !m.Role.Valid() {
		return m, fmt.Errorf("%w: unknown role %q", ErrInvalid, m.Role)
	}
	m.AssociationName = ""
	return m, nil
}

func prepareConvention(c model.Convention) (model.Convention, error) {
	if c.AssociationID == "" || strings.TrimSpace(c.Name) == "" {
		return c, fmt.Errorf("%w: association_id and name are required", ErrInvalid)
	}
	if c.Status == "" {
		c.Status = model.ConventionPlanning
	}
	switch c.Status {
	case model.ConventionPlanning, model.ConventionActive, model.ConventionCompleted, model.ConventionCancelled:
	default:
		return c, fmt.Errorf("%w: unknown convention status %q", ErrInvalid, c.Status)
	}
	c.StartDate = dbTime(c.StartDate)
	c.EndDate = dbTime(c.EndDate)
	return c, nil
}

func prepareConventionMember(m model.ConventionMember) (model.ConventionMember, error) {
	if m.ConventionID == "" || m.ProfileID == "" {
		return m, fmt.Errorf("%w: convention_id and profile_id are required", ErrInvalid)
	}
	if m.Role == "" {
		m.Role = model.ConventionAttendee
	}
	switch m.Role {
	case model.ConventionOrganizer, model.ConventionStaff, model.ConventionHelper, model.ConventionAttendee:
	default:
		return m, fmt.Errorf("%w: unknown convention role %q", ErrInvalid, m.Role)
	}
	return m, nil
}

func prepareItem(it model.Item) (model.Item, error) {
	if it.AssociationID == "" || strings.TrimSpace(it.Name) == "" {
		return it, fmt.Errorf("%w: association_id and name are required", ErrInvalid)
	}
	if it.Condition == "" {
		it.Condition = model.ConditionGood
	}
	switch it.Condition {
	case model.ConditionNew, model.ConditionGood, model.ConditionFair, model.ConditionPoor, model.ConditionDamaged, model.ConditionRetired:
	default:
		return it, fmt.Errorf("%w: unknown item condition %q", ErrInvalid, it.Condition)
	}
	it.PurchaseDate = dbTimePtr(it.PurchaseDate)
	it.WarrantyExpires = dbTimePtr(it.WarrantyExpires)
	it.PurchasePrice = moneyPtr(it.PurchasePrice)
	return it, nil
}

// moneyPtr rounds to the two decimal places of a NUMERIC(12,2) column,
// half away from zero like Postgres does.
func moneyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}

func prepareEquipmentSet(s model.EquipmentSet) (model.EquipmentSet, error) {
	if s.AssociationID == "" || strings.TrimSpace(s.Name) == "" {
		return s, fmt.Errorf("%w: association_id and name are required", ErrInvalid)
	}
	return s, nil
}

func prepareSetItem(si model.EquipmentSetItem) (model.EquipmentSetItem, error) {
	if si.SetID == "" || si.ItemID == "" {
		return si, fmt.Errorf("%w: set_id and item_id are required", ErrInvalid)
	}
	if si.Quantity == 0 {
		si.Quantity = 1
	}
	if si.Quantity < 0 {
		return si, fmt.Errorf("%w: quantity must be positive", ErrInvalid)
	}
	return si, nil
}

func prepareAuditLog(l model.AuditLog) (model.AuditLog, error) {
	if l.Action == "" || l.EntityType == "" {
		return l, fmt.Errorf("%w: action and entity_type are required", ErrInvalid)
	}
	if l.Details == nil {
		l.Details = map[string]any{}
	}
	return l, nil
}

// dbTime truncates to the microsecond precision of timestamptz.
func dbTime(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dbTime(*t)
	return &v
}

func prepareSettingKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: setting key is required", ErrInvalid)
	}
	return nil
}
