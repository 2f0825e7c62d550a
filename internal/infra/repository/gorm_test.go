package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/infra/db"
	repo "cafe/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func strPtr(s string) *string { return &s }

func seedProduct(t *testing.T, gdb *gorm.DB, name, price string, available bool, createdAt time.Time) model.Product {
	t.Helper()
	p, err := NewProductGormRepository(gdb).Create(context.Background(), model.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	return p
}

func TestProductGorm_ListAvailableNewestFirst(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	seedProduct(t, gdb, "Latte", "50.00", true, base)
	seedProduct(t, gdb, "Mocha", "55.00", false, base.Add(time.Minute))
	seedProduct(t, gdb, "Espresso", "30.00", true, base.Add(2*time.Minute))

	r := NewProductGormRepository(gdb)
	got, err := r.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Espresso", got[0].Name)
	assert.Equal(t, "Latte", got[1].Name)
	assert.True(t, got[1].Price.Equal(decimal.RequireFromString("50")))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductGorm_UpdateDeleteNotFound(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewProductGormRepository(gdb)

	err := r.Update(ctx, model.Product{ID: uuid.NewString(), Name: "x"})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	err = r.Delete(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProductGorm_UpdateCanHide(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewProductGormRepository(gdb)

	p := seedProduct(t, gdb, "Latte", "50.00", true, time.Now())
	p.IsAvailable = false
	p.Price = decimal.RequireFromString("60.00")
	p.Description = strPtr("oat")
	require.NoError(t, r.Update(ctx, p))

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("60")))
	require.NotNil(t, got.Description)
	assert.Equal(t, "oat", *got.Description)
}

func TestTableGorm_ListAndDuplicate(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewTableGormRepository(gdb)
	base := time.Now().Add(-time.Hour)

	_, err := r.Create(ctx, model.CafeTable{Name: "T2", IsActive: true, CreatedAt: base})
	require.NoError(t, err)
	_, err = r.Create(ctx, model.CafeTable{Name: "T1", IsActive: true, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	off, err := r.Create(ctx, model.CafeTable{Name: "T0", IsActive: false, CreatedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	active, err := r.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "T1", active[0].Name)
	assert.Equal(t, "T2", active[1].Name)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "T2", all[0].Name)

	_, err = r.Create(ctx, model.CafeTable{Name: "T1", IsActive: true})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	require.NoError(t, r.Delete(ctx, off.ID))
	assert.ErrorIs(t, r.Delete(ctx, off.ID), repo.ErrNotFound)
}

func TestOrderGorm_HeaderThenItems(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderGormRepository(gdb)
	items := NewOrderItemGormRepository(gdb)

	latte := seedProduct(t, gdb, "Latte", "50.00", true, time.Now())
	userID := uuid.NewString()

	id, err := orders.Create(ctx, model.Order{
		UserID:      userID,
		TotalPrice:  decimal.RequireFromString("100.00"),
		TableNumber: "T1",
	})
	require.NoError(t, err)

	o, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, o.Status)
	assert.Equal(t, "T1", o.TableNumber)

	require.NoError(t, items.CreateBulk(ctx, id, []model.OrderItem{
		{ProductID: latte.ID, Quantity: 2, UnitPrice: latte.Price},
	}))

	details, err := items.ListByOrderID(ctx, id)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Latte", details[0].ProductName)
	assert.Equal(t, 2, details[0].Quantity)
	assert.Equal(t, id, details[0].OrderID)
}

func TestOrderGorm_ItemsKeepUnitPriceAfterProductChange(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	products := NewProductGormRepository(gdb)
	orders := NewOrderGormRepository(gdb)
	items := NewOrderItemGormRepository(gdb)

	latte := seedProduct(t, gdb, "Latte", "50.00", true, time.Now())
	id, err := orders.Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: latte.Price, TableNumber: "T1"})
	require.NoError(t, err)
	require.NoError(t, items.CreateBulk(ctx, id, []model.OrderItem{{ProductID: latte.ID, Quantity: 1, UnitPrice: latte.Price}}))

	latte.Price = decimal.RequireFromString("70.00")
	require.NoError(t, products.Update(ctx, latte))

	details, err := items.ListByOrderID(ctx, id)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.True(t, details[0].UnitPrice.Equal(decimal.RequireFromString("50")))

	o, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("50")))
}

func TestOrderGorm_ListAllWithProfileName(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	users := NewUserGormRepository(gdb)
	orders := NewOrderGormRepository(gdb)

	u := &model.User{Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, users.CreateWithProfile(ctx, u, &model.Profile{Name: strPtr("Alice")}))

	base := time.Now().Add(-time.Hour)
	_, err := orders.Create(ctx, model.Order{UserID: u.ID, TotalPrice: decimal.NewFromInt(1), TableNumber: "T1", CreatedAt: base})
	require.NoError(t, err)
	// プロフィールの無いユーザーの注文
	_, err = orders.Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: decimal.NewFromInt(2), TableNumber: "T2", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	rows, err := orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "T2", rows[0].TableNumber)
	assert.Nil(t, rows[0].ProfileName)
	require.NotNil(t, rows[1].ProfileName)
	assert.Equal(t, "Alice", *rows[1].ProfileName)

	mine, err := orders.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "T1", mine[0].TableNumber)
}

func TestOrderGorm_UpdateStatus(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderGormRepository(gdb)

	id, err := orders.Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: decimal.NewFromInt(1), TableNumber: "T1"})
	require.NoError(t, err)

	require.NoError(t, orders.UpdateStatus(ctx, id, model.OrderStatusCancelled))
	require.NoError(t, orders.UpdateStatus(ctx, id, model.OrderStatusNew))

	o, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, o.Status)

	assert.ErrorIs(t, orders.UpdateStatus(ctx, uuid.NewString(), model.OrderStatusNew), repo.ErrNotFound)
}

func TestOrderGorm_OrphanHeaders(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderGormRepository(gdb)
	items := NewOrderItemGormRepository(gdb)

	old := time.Now().Add(-time.Hour)
	orphan, err := orders.Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: decimal.NewFromInt(1), TableNumber: "T1", CreatedAt: old})
	require.NoError(t, err)
	full, err := orders.Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: decimal.NewFromInt(1), TableNumber: "T1", CreatedAt: old})
	require.NoError(t, err)
	require.NoError(t, items.CreateBulk(ctx, full, []model.OrderItem{{ProductID: uuid.NewString(), Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}))
	// 新しすぎるものは対象外
	_, err = orders.Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: decimal.NewFromInt(1), TableNumber: "T1"})
	require.NoError(t, err)

	got, err := orders.ListWithoutItems(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, orphan, got[0].ID)

	deleted, err := orders.DeleteIfNoItems(ctx, full)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = orders.DeleteIfNoItems(ctx, orphan)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = orders.FindByID(ctx, orphan)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTxManagerGorm_RollbackOnError(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	tm := NewTxManagerGorm(gdb)

	var orderID string
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, model.Order{UserID: uuid.NewString(), TotalPrice: decimal.NewFromInt(1), TableNumber: "T1"})
		if err != nil {
			return err
		}
		orderID = id
		return fmt.Errorf("items failed")
	})
	require.Error(t, err)

	_, err = NewOrderGormRepository(gdb).FindByID(ctx, orderID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUserGorm_CreateWithProfileAndTokenVersion(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	users := NewUserGormRepository(gdb)
	profiles := NewProfileGormRepository(gdb)

	u := &model.User{Email: "b@example.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateWithProfile(ctx, u, &model.Profile{}))
	require.NotEmpty(t, u.ID)

	p, err := profiles.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, p.Role)

	err = users.CreateWithProfile(ctx, &model.User{Email: "b@example.com", PasswordHash: "hash"}, &model.Profile{})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	tv, err := users.IncrementTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tv)

	_, err = users.IncrementTokenVersion(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repo.ErrUserNotFound)

	_, err = users.FindByEmail(ctx, "none@example.com")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestProfileGorm_UpdateRole(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	users := NewUserGormRepository(gdb)
	profiles := NewProfileGormRepository(gdb)

	u := &model.User{Email: "c@example.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateWithProfile(ctx, u, &model.Profile{}))

	require.NoError(t, profiles.UpdateRole(ctx, u.ID, model.RoleAdmin))
	p, err := profiles.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, p.Role)

	assert.ErrorIs(t, profiles.UpdateRole(ctx, uuid.NewString(), model.RoleAdmin), repo.ErrNotFound)
	_, err = profiles.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repo.ErrNotFound)

	list, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAuditLogGorm_CreateAndFilter(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewAuditLogGormRepository(gdb)

	require.NoError(t, r.Create(ctx, model.AuditLog{
		ActorUserID:  "admin-1",
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   "o-1",
		BeforeJSON:   `{"status":"new"}`,
		AfterJSON:    `{"status":"processing"}`,
		CreatedAt:    time.Now(),
	}))
	require.NoError(t, r.Create(ctx, model.AuditLog{
		ActorUserID:  model.SystemActorID,
		Action:       model.AuditActionDeleteOrphanOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   "o-2",
		CreatedAt:    time.Now(),
	}))

	action := model.AuditActionDeleteOrphanOrder
	logs, err := r.List(ctx, repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "o-2", logs[0].ResourceID)
}
