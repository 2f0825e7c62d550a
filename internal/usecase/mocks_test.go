package usecase_test

import (
	"context"
	"sync"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/identity"
	repo "cafe/internal/repository"
	"cafe/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定する
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	auditLogs  repo.AuditLogRepository
	profiles   repo.ProfileRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }
func (r *TxReposMock) Profiles() repo.ProfileRepository     { return r.profiles }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *OrderRepoMock) ListAll(ctx context.Context) ([]repo.OrderWithProfile, error) {
	args := m.Called(ctx)
	os, _ := args.Get(0).([]repo.OrderWithProfile)
	return os, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) ListWithoutItems(ctx context.Context, createdBefore time.Time) ([]model.Order, error) {
	args := m.Called(ctx, createdBefore)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *OrderRepoMock) DeleteIfNoItems(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItemDetail, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItemDetail)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in usecase tests")
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAvailable(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type TableRepoMock struct{ mock.Mock }

func (m *TableRepoMock) ListActive(ctx context.Context) ([]model.CafeTable, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]model.CafeTable)
	return ts, args.Error(1)
}

func (m *TableRepoMock) ListAll(ctx context.Context) ([]model.CafeTable, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]model.CafeTable)
	return ts, args.Error(1)
}

func (m *TableRepoMock) FindActiveByID(ctx context.Context, id string) (model.CafeTable, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(model.CafeTable)
	return t, args.Error(1)
}

func (m *TableRepoMock) Create(ctx context.Context, t model.CafeTable) (model.CafeTable, error) {
	args := m.Called(ctx, t)
	out, _ := args.Get(0).(model.CafeTable)
	return out, args.Error(1)
}

func (m *TableRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ProfileRepoMock struct{ mock.Mock }

func (m *ProfileRepoMock) FindByID(ctx context.Context, id string) (model.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepoMock) List(ctx context.Context) ([]model.Profile, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Profile)
	return ps, args.Error(1)
}

func (m *ProfileRepoMock) UpdateRole(ctx context.Context, id string, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// =====================
// 通知・イベントの記録
// =====================

type busRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (b *busRecorder) Publish(_ context.Context, keys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, keys...)
}

func (b *busRecorder) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

type eventRecorder struct {
	mu     sync.Mutex
	events []interface{}
	err    error
}

func (e *eventRecorder) PublishEvent(_ context.Context, _ string, event interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

type refresherRecorder struct {
	ids []string
}

func (r *refresherRecorder) RefreshRole(userID string) {
	r.ids = append(r.ids, userID)
}

// =====================
// Helpers
// =====================

type fixedIdentity struct {
	id identity.Identity
	ok bool
}

func (f fixedIdentity) CurrentUser(context.Context) (identity.Identity, bool) {
	return f.id, f.ok
}

func signedIn(userID string) fixedIdentity {
	return fixedIdentity{id: identity.Identity{UserID: userID, Email: userID + "@example.com"}, ok: true}
}

func newSession(userID string) *session.Session {
	st := session.NewStore(func(context.Context, string) model.RoleState {
		return model.RoleStateNotAdmin
	}, time.Second)
	return st.Get(userID)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id, name, price string) model.Product {
	return model.Product{ID: id, Name: name, Price: dec(price), IsAvailable: true}
}
