package repository_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/repository"
)

func strPtr(s string) *string { return &s }

// runContract exercises the behaviour every backend must share.  newDAL
// must return an empty store for each call.
func runContract(t *testing.T, newDAL func(t *testing.T) repository.DataAccess) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		dal := newDAL(t)
		u, err := dal.CreateUser(ctx, model.User{Email: "  Ada@Example.com "})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, model.RoleMember, u.Role)
		assert.Nil(t, u.PasswordHash)
		assert.False(t, u.CreatedAt.IsZero())

		got, err := dal.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, got)

		byEmail, err := dal.GetUserByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = dal.CreateUser(ctx, model.User{Email: "ada@example.com"})
		require.Error(t, err)

		_, err = dal.CreateUser(ctx, model.User{Email: " "})
		require.ErrorIs(t, err, repository.ErrInvalid)
		_, err = dal.CreateUser(ctx, model.User{Email: "x@example.com", Role: "emperor"})
		require.ErrorIs(t, err, repository.ErrInvalid)
	})

	t.Run("not found", func(t *testing.T) {
		dal := newDAL(t)
		u, err := dal.GetUserByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, u)
		u, err = dal.GetUserByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
		p, err := dal.GetProfileByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, p)
		a, err := dal.GetAssociationByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, a)
		m, err := dal.GetAssociationMember(ctx, "missing", "missing")
		require.NoError(t, err)
		assert.Nil(t, m)
		c, err := dal.GetConventionByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, c)
		it, err := dal.GetItemByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, it)
		s, err := dal.GetSystemSetting(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, s)

		members, err := dal.GetAssociationMembersByProfileID(ctx, "missing")
		require.NoError(t, err)
		assert.NotNil(t, members)
		assert.Empty(t, members)
		items, err := dal.GetItemsByAssociationID(ctx, "missing")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
		logs, err := dal.GetAuditLogsByAssociationID(ctx, "missing", 10)
		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)

		require.NoError(t, dal.DeleteUser(ctx, "missing"))
		require.NoError(t, dal.DeleteAssociationMember(ctx, "missing", "missing"))
	})

	t.Run("profiles", func(t *testing.T) {
		dal := newDAL(t)
		u, err := dal.CreateUser(ctx, model.User{Email: "grace@example.com", Role: model.RoleAdmin})
		require.NoError(t, err)

		p, err := dal.CreateProfile(ctx, model.Profile{ID: u.ID, FirstName: strPtr("Grace"), DisplayName: strPtr("grace")})
		require.NoError(t, err)
		assert.Equal(t, u.ID, p.ID)
		assert.NotNil(t, p.RecoveryKeys)
		assert.Empty(t, p.RecoveryKeys)
		assert.False(t, p.TwoFactorEnabled)

		got, err := dal.GetProfileByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Grace", *got.FirstName)
		assert.Nil(t, got.LastName)
		assert.Equal(t, p.CreatedAt, got.CreatedAt)

		_, err = dal.CreateProfile(ctx, model.Profile{ID: u.ID})
		require.Error(t, err, "second profile for the same user")
	})

	t.Run("associations and members", func(t *testing.T) {
		dal := newDAL(t)
		profile := newProfile(t, dal, "member@example.com")

		a, err := dal.CreateAssociation(ctx, model.Association{
			Name:        "Dice Club",
			Description: strPtr("board games"),
			Settings:    map[string]any{"theme": "dark"},
		})
		require.NoError(t, err)
		b, err := dal.CreateAssociation(ctx, model.Association{Name: "Cosplay Guild"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, b.Settings)

		got, err := dal.GetAssociationByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a, got)

		all, err := dal.ListAssociations(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assertOrderedByCreated(t, all, func(a model.Association) (time.Time, string) { return a.CreatedAt, a.ID })

		m, err := dal.CreateAssociationMember(ctx, model.AssociationMember{AssociationID: a.ID, ProfileID: profile.ID, Role: model.RoleManager})
		require.NoError(t, err)
		assert.Equal(t, model.RoleManager, m.Role)
		assert.Empty(t, m.AssociationName)

		_, err = dal.CreateAssociationMember(ctx, model.AssociationMember{AssociationID: a.ID, ProfileID: profile.ID})
		require.Error(t, err, "duplicate membership")

		_, err = dal.CreateAssociationMember(ctx, model.AssociationMember{AssociationID: b.ID, ProfileID: profile.ID})
		require.NoError(t, err)

		one, err := dal.GetAssociationMember(ctx, a.ID, profile.ID)
		require.NoError(t, err)
		require.NotNil(t, one)
		assert.Equal(t, m.ID, one.ID)

		mine, err := dal.GetAssociationMembersByProfileID(ctx, profile.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		names := []string{mine[0].AssociationName, mine[1].AssociationName}
		assert.ElementsMatch(t, []string{"Dice Club", "Cosplay Guild"}, names)

		roster, err := dal.GetAssociationMembersByAssociationID(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, profile.ID, roster[0].ProfileID)

		require.NoError(t, dal.DeleteAssociationMember(ctx, a.ID, profile.ID))
		gone, err := dal.GetAssociationMember(ctx, a.ID, profile.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
		still, err := dal.GetProfileByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.NotNil(t, still, "removing a membership keeps the profile")

		_, err = dal.CreateAssociationMember(ctx, model.AssociationMember{AssociationID: a.ID, ProfileID: profile.ID})
		require.NoError(t, err, "membership can be re-created after removal")
	})

	t.Run("conventions", func(t *testing.T) {
		dal := newDAL(t)
		profile := newProfile(t, dal, "orga@example.com")
		a, err := dal.CreateAssociation(ctx, model.Association{Name: "Con Crew"})
		require.NoError(t, err)

		start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		c, err := dal.CreateConvention(ctx, model.Convention{
			AssociationID: a.ID, Name: "SpringCon", StartDate: start, EndDate: start.Add(48 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, model.ConventionPlanning, c.Status)

		got, err := dal.GetConventionByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c, got)

		_, err = dal.CreateConvention(ctx, model.Convention{
			AssociationID: a.ID, Name: "AutumnCon", StartDate: start, EndDate: start, Status: model.ConventionActive,
		})
		require.NoError(t, err)
		convs, err := dal.GetConventionsByAssociationID(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, convs, 2)
		assertOrderedByCreated(t, convs, func(c model.Convention) (time.Time, string) { return c.CreatedAt, c.ID })

		cm, err := dal.CreateConventionMember(ctx, model.ConventionMember{ConventionID: c.ID, ProfileID: profile.ID})
		require.NoError(t, err)
		assert.Equal(t, model.ConventionAttendee, cm.Role)
		_, err = dal.CreateConventionMember(ctx, model.ConventionMember{ConventionID: c.ID, ProfileID: profile.ID, Role: model.ConventionStaff})
		require.Error(t, err, "duplicate convention membership")

		members, err := dal.GetConventionMembersByConventionID(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, cm.ID, members[0].ID)

		_, err = dal.CreateConvention(ctx, model.Convention{AssociationID: a.ID, Name: "Bad", Status: "postponed"})
		require.ErrorIs(t, err, repository.ErrInvalid)
	})

	t.Run("inventory", func(t *testing.T) {
		dal := newDAL(t)
		a, err := dal.CreateAssociation(ctx, model.Association{Name: "Gear Library"})
		require.NoError(t, err)

		price := 12.5
		bought := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
		it, err := dal.CreateItem(ctx, model.Item{
			AssociationID: a.ID, Name: "Projector", Barcode: strPtr("KB-0001"),
			PurchasePrice: &price, PurchaseDate: &bought,
		})
		require.NoError(t, err)
		assert.Equal(t, model.ConditionGood, it.Condition)

		got, err := dal.GetItemByID(ctx, it.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "KB-0001", *got.Barcode)
		require.NotNil(t, got.PurchasePrice)
		assert.InDelta(t, 12.5, *got.PurchasePrice, 0.001)

		spares, err := dal.CreateAssociation(ctx, model.Association{Name: "Spares"})
		require.NoError(t, err)
		odd := 9.999
		rounded, err := dal.CreateItem(ctx, model.Item{AssociationID: spares.ID, Name: "Cable", PurchasePrice: &odd})
		require.NoError(t, err)
		require.NotNil(t, rounded.PurchasePrice)
		assert.Equal(t, 10.0, *rounded.PurchasePrice)
		reread, err := dal.GetItemByID(ctx, rounded.ID)
		require.NoError(t, err)
		require.NotNil(t, reread.PurchasePrice)
		assert.Equal(t, 10.0, *reread.PurchasePrice)
		require.NotNil(t, got.PurchaseDate)
		assert.True(t, bought.Equal(*got.PurchaseDate))
		assert.Nil(t, got.WarrantyExpires)

		_, err = dal.CreateItem(ctx, model.Item{AssociationID: a.ID, Name: "Cable", Condition: "shiny"})
		require.ErrorIs(t, err, repository.ErrInvalid)

		items, err := dal.GetItemsByAssociationID(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)

		set, err := dal.CreateEquipmentSet(ctx, model.EquipmentSet{AssociationID: a.ID, Name: "AV kit"})
		require.NoError(t, err)
		sets, err := dal.GetEquipmentSetsByAssociationID(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, sets, 1)
		assert.Equal(t, set.ID, sets[0].ID)

		si, err := dal.AddEquipmentSetItem(ctx, model.EquipmentSetItem{SetID: set.ID, ItemID: it.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, si.Quantity)
		_, err = dal.AddEquipmentSetItem(ctx, model.EquipmentSetItem{SetID: set.ID, ItemID: it.ID, Quantity: 2})
		require.Error(t, err, "item already in set")
		_, err = dal.AddEquipmentSetItem(ctx, model.EquipmentSetItem{SetID: set.ID, ItemID: it.ID, Quantity: -1})
		require.ErrorIs(t, err, repository.ErrInvalid)

		contents, err := dal.GetEquipmentSetItems(ctx, set.ID)
		require.NoError(t, err)
		require.Len(t, contents, 1)
		assert.Equal(t, it.ID, contents[0].ItemID)
	})

	t.Run("settings", func(t *testing.T) {
		dal := newDAL(t)
		_, err := dal.SetSystemSetting(ctx, "site.name", "KonBase")
		require.NoError(t, err)
		second, err := dal.SetSystemSetting(ctx, "site.name", "KonBase Club")
		require.NoError(t, err)
		assert.Equal(t, "KonBase Club", second.Value)

		got, err := dal.GetSystemSetting(ctx, "site.name")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "KonBase Club", got.Value)

		for _, k := range []string{"mail.host", "mail.port", "site.logo", "mail_x"} {
			_, err := dal.SetSystemSetting(ctx, k, "v")
			require.NoError(t, err)
		}
		mail, err := dal.ListSystemSettings(ctx, "mail.")
		require.NoError(t, err)
		require.Len(t, mail, 2)
		assert.Equal(t, "mail.host", mail[0].Key)
		assert.Equal(t, "mail.port", mail[1].Key)

		all, err := dal.ListSystemSettings(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 5)
		assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Key < all[j].Key }))

		_, err = dal.SetSystemSetting(ctx, "", "v")
		require.ErrorIs(t, err, repository.ErrInvalid)
	})

	t.Run("audit logs", func(t *testing.T) {
		dal := newDAL(t)
		profile := newProfile(t, dal, "auditor@example.com")
		a, err := dal.CreateAssociation(ctx, model.Association{Name: "Audited"})
		require.NoError(t, err)

		for _, action := range []string{"item.create", "item.update", "item.delete"} {
			l, err := dal.CreateAuditLog(ctx, model.AuditLog{
				AssociationID: &a.ID, ProfileID: &profile.ID, Action: action, EntityType: "item",
				Details: map[string]any{"by": "test"},
			})
			require.NoError(t, err)
			assert.Equal(t, "test", l.Details["by"])
		}
		_, err = dal.CreateAuditLog(ctx, model.AuditLog{Action: "settings.update", EntityType: "system_setting"})
		require.NoError(t, err)

		all, err := dal.GetAuditLogsByAssociationID(ctx, a.ID, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i := 1; i < len(all); i++ {
			prev, cur := all[i-1], all[i]
			assert.False(t, cur.CreatedAt.After(prev.CreatedAt), "newest first")
		}

		limited, err := dal.GetAuditLogsByAssociationID(ctx, a.ID, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, all[0].ID, limited[0].ID)

		_, err = dal.CreateAuditLog(ctx, model.AuditLog{Action: "x"})
		require.ErrorIs(t, err, repository.ErrInvalid)
	})

	t.Run("delete user cascades", func(t *testing.T) {
		dal := newDAL(t)
		profile := newProfile(t, dal, "leaver@example.com")
		a, err := dal.CreateAssociation(ctx, model.Association{Name: "Left Behind"})
		require.NoError(t, err)
		_, err = dal.CreateAssociationMember(ctx, model.AssociationMember{AssociationID: a.ID, ProfileID: profile.ID})
		require.NoError(t, err)
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c, err := dal.CreateConvention(ctx, model.Convention{AssociationID: a.ID, Name: "C", StartDate: start, EndDate: start})
		require.NoError(t, err)
		_, err = dal.CreateConventionMember(ctx, model.ConventionMember{ConventionID: c.ID, ProfileID: profile.ID})
		require.NoError(t, err)
		l, err := dal.CreateAuditLog(ctx, model.AuditLog{AssociationID: &a.ID, ProfileID: &profile.ID, Action: "join", EntityType: "association"})
		require.NoError(t, err)

		require.NoError(t, dal.DeleteUser(ctx, profile.ID))

		u, err := dal.GetUserByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.Nil(t, u)
		p, err := dal.GetProfileByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.Nil(t, p)
		roster, err := dal.GetAssociationMembersByAssociationID(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, roster)
		cms, err := dal.GetConventionMembersByConventionID(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, cms)

		logs, err := dal.GetAuditLogsByAssociationID(ctx, a.ID, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, l.ID, logs[0].ID)
		assert.Nil(t, logs[0].ProfileID)

		again, err := dal.CreateUser(ctx, model.User{Email: "leaver@example.com"})
		require.NoError(t, err, "email is free again")
		assert.NotEqual(t, profile.ID, again.ID)
	})

	t.Run("health", func(t *testing.T) {
		dal := newDAL(t)
		h := dal.HealthCheck(ctx)
		assert.Equal(t, database.StatusHealthy, h.Status)
		assert.GreaterOrEqual(t, h.Latency, int64(0))
	})
}

func newProfile(t *testing.T, dal repository.DataAccess, email string) *model.Profile {
	t.Helper()
	ctx := context.Background()
	u, err := dal.CreateUser(ctx, model.User{Email: email})
	require.NoError(t, err)
	p, err := dal.CreateProfile(ctx, model.Profile{ID: u.ID})
	require.NoError(t, err)
	return p
}

func assertOrderedByCreated[T any](t *testing.T, items []T, key func(T) (time.Time, string)) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		pt, pid := key(items[i-1])
		ct, cid := key(items[i])
		ok := pt.Before(ct) || (pt.Equal(ct) && pid < cid)
		assert.True(t, ok, "item %d out of order", i)
	}
}
