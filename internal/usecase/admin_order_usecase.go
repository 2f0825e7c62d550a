package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"
	"cafe/internal/logging"
	"cafe/internal/metrics"
	repo "cafe/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	tx     repo.TransactionManager

	bus     invalidation.Publisher
	events  EventPublisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAdminOrderUsecase(
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	tx repo.TransactionManager,
	opts OrderOptions,
) *AdminOrderUsecase {
	u := &AdminOrderUsecase{
		orders:  orders,
		items:   items,
		tx:      tx,
		bus:     opts.Bus,
		events:  opts.Events,
		metrics: opts.Metrics,
		now:     opts.Clock,
	}
	if u.bus == nil {
		u.bus = invalidation.Nop{}
	}
	if u.events == nil {
		u.events = NopEventPublisher{}
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 全注文（プロフィール名つき）、新しい順
func (u *AdminOrderUsecase) List(ctx context.Context) ([]repo.OrderWithProfile, error) {
	rows, err := u.orders.ListAll(ctx)
	if err != nil {
		return []repo.OrderWithProfile{}, wrapError(ErrInternal, "db error", err)
	}
	return rows, nil
}

// 注文の明細（商品名つき）
func (u *AdminOrderUsecase) Items(ctx context.Context, orderID string) ([]model.OrderItemDetail, error) {
	if strings.TrimSpace(orderID) == "" {
		return []model.OrderItemDetail{}, newError(ErrValidation, "invalid id")
	}
	if _, err := u.orders.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []model.OrderItemDetail{}, newError(ErrNotFound, "not found")
		}
		return []model.OrderItemDetail{}, wrapError(ErrInternal, "db error", err)
	}
	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return []model.OrderItemDetail{}, wrapError(ErrInternal, "db error", err)
	}
	return items, nil
}

// UpdateStatusは4つの値のどれにでも変更できる（遷移元は見ない・後勝ち）。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorID string, orderID string, in AdminUpdateOrderStatusInput) (model.Order, error) {
	if actorID == "" {
		return model.Order{}, newError(ErrUnauthenticated, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, newError(ErrValidation, "invalid id")
	}
	if strings.TrimSpace(in.Status) == "" {
		return model.Order{}, newError(ErrValidation, "status required")
	}
	newStatus, err := model.ParseOrderStatus(in.Status)
	if err != nil {
		return model.Order{}, wrapError(ErrValidation, "invalid status", err)
	}

	var before model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return wrapError(ErrInternal, "db error", err)
		}
		before = o

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newError(ErrNotFound, "not found")
			}
			return wrapError(ErrInternal, "db error", err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
			CreatedAt:    u.now(),
		}); err != nil {
			return wrapError(ErrInternal, "db error", err)
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	after := before
	after.Status = newStatus

	u.bus.Publish(ctx,
		invalidation.KeyOrdersWithProfiles,
		invalidation.MyOrders(after.UserID),
		invalidation.OrderDetails(after.UserID, orderID),
	)
	ev := OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        orderID,
		UserID:         after.UserID,
		Status:         string(newStatus),
		PreviousStatus: string(before.Status),
		TotalPrice:     after.TotalPrice,
		TableNumber:    after.TableNumber,
		ActorID:        actorID,
		OccurredAt:     u.now(),
	}
	if err := u.events.PublishEvent(ctx, orderID, ev); err != nil {
		logging.FromContext(ctx).Warn("order event publish failed", zap.String("order_id", orderID), zap.Error(err))
	}
	u.metrics.OrderStatusUpdated(string(newStatus))
	logging.FromContext(ctx).Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(before.Status)),
		zap.String("to", string(newStatus)),
		zap.String("actor_id", actorID),
	)
	return after, nil
}
