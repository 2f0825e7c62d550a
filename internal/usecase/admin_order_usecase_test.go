package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"
	repo "cafe/internal/repository"
	"cafe/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminOrderFixture() (*usecase.AdminOrderUsecase, *OrderRepoMock, *AuditRepoMock, *TxManagerMock, *busRecorder) {
	orders := new(OrderRepoMock)
	items := new(OrderItemRepoMock)
	audit := new(AuditRepoMock)
	tx := new(TxManagerMock)
	tx.Repos = &TxReposMock{orders: orders, orderItems: items, auditLogs: audit}
	bus := &busRecorder{}
	uc := usecase.NewAdminOrderUsecase(orders, items, tx, usecase.OrderOptions{Bus: bus})
	return uc, orders, audit, tx, bus
}

// =====================
// UpdateStatus tests
// =====================

func TestAdminOrderUsecase_UpdateStatus_AnyTransitionAllowed(t *testing.T) {
	cases := []struct {
		from model.OrderStatus
		to   string
	}{
		{model.OrderStatusNew, "processing"},
		{model.OrderStatusCompleted, "new"},
		{model.OrderStatusCancelled, "processing"},
		{model.OrderStatusProcessing, "processing"},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+tc.to, func(t *testing.T) {
			uc, orders, audit, tx, bus := newAdminOrderFixture()
			tx.On("WithinTx", mock.Anything).Return(nil)

			orders.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", UserID: "u1", Status: tc.from}, nil)
			orders.On("UpdateStatus", mock.Anything, "o1", model.OrderStatus(tc.to)).Return(nil)
			audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
				return l.ActorUserID == "admin1" &&
					l.Action == model.AuditActionUpdateOrderStatus &&
					l.ResourceID == "o1" &&
					strings.Contains(l.BeforeJSON, string(tc.from)) &&
					strings.Contains(l.AfterJSON, tc.to)
			})).Return(nil)

			got, err := uc.UpdateStatus(context.Background(), "admin1", "o1", usecase.AdminUpdateOrderStatusInput{Status: tc.to})
			require.NoError(t, err)
			assert.Equal(t, model.OrderStatus(tc.to), got.Status)
			assert.Contains(t, bus.Keys(), invalidation.KeyOrdersWithProfiles)
			assert.Contains(t, bus.Keys(), invalidation.MyOrders("u1"))
			assert.Contains(t, bus.Keys(), invalidation.OrderDetails("u1", "o1"))

			orders.AssertExpectations(t)
			audit.AssertExpectations(t)
		})
	}
}

func TestAdminOrderUsecase_UpdateStatus_EmptyStatus(t *testing.T) {
	uc, orders, _, tx, _ := newAdminOrderFixture()

	_, err := uc.UpdateStatus(context.Background(), "admin1", "o1", usecase.AdminUpdateOrderStatusInput{Status: "  "})
	assert.ErrorIs(t, err, usecase.ErrValidation)
	assert.Contains(t, err.Error(), "status required")

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	uc, orders, _, tx, _ := newAdminOrderFixture()

	_, err := uc.UpdateStatus(context.Background(), "admin1", "o1", usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	uc, orders, audit, tx, bus := newAdminOrderFixture()
	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, "missing").Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.UpdateStatus(context.Background(), "admin1", "missing", usecase.AdminUpdateOrderStatusInput{Status: "completed"})
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, bus.Keys())
}

func TestAdminOrderUsecase_UpdateStatus_AuditFailureFails(t *testing.T) {
	uc, orders, audit, tx, bus := newAdminOrderFixture()
	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", UserID: "u1", Status: model.OrderStatusNew}, nil)
	orders.On("UpdateStatus", mock.Anything, "o1", model.OrderStatusCompleted).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := uc.UpdateStatus(context.Background(), "admin1", "o1", usecase.AdminUpdateOrderStatusInput{Status: "completed"})
	assert.ErrorIs(t, err, usecase.ErrInternal)
	assert.Empty(t, bus.Keys())
}

func TestAdminOrderUsecase_UpdateStatus_RequiresActor(t *testing.T) {
	uc, _, _, tx, _ := newAdminOrderFixture()

	_, err := uc.UpdateStatus(context.Background(), "", "o1", usecase.AdminUpdateOrderStatusInput{Status: "new"})
	assert.ErrorIs(t, err, usecase.ErrUnauthenticated)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// =====================
// List / Items tests
// =====================

func TestAdminOrderUsecase_List(t *testing.T) {
	uc, orders, _, _, _ := newAdminOrderFixture()
	name := "Hanako"
	orders.On("ListAll", mock.Anything).Return([]repo.OrderWithProfile{
		{Order: model.Order{ID: "o2"}, ProfileName: &name},
		{Order: model.Order{ID: "o1"}},
	}, nil)

	rows, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Hanako", *rows[0].ProfileName)
	assert.Nil(t, rows[1].ProfileName)
}

func TestAdminOrderUsecase_Items_OrderMissing(t *testing.T) {
	uc, orders, _, _, _ := newAdminOrderFixture()
	orders.On("FindByID", mock.Anything, "nope").Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.Items(context.Background(), "nope")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}
