package usecase

import (
	"context"
	"errors"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/identity"
	"cafe/internal/invalidation"
	"cafe/internal/logging"
	"cafe/internal/metrics"
	repo "cafe/internal/repository"
	"cafe/internal/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 注文送信のモード
type SubmitMode string

const (
	// ヘッダ→明細の2回書き込み。明細が失敗するとヘッダだけ残る。
	SubmitTwoStep SubmitMode = "two_step"
	// 2回の書き込みを1つのTxで行う
	SubmitAtomic SubmitMode = "atomic"
)

// 送信以外の依存（nilなら何もしない）
type OrderOptions struct {
	Mode    SubmitMode
	Bus     invalidation.Publisher
	Events  EventPublisher
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

type OrderUsecase struct {
	identity identity.Provider
	orders   repo.OrderRepository
	items    repo.OrderItemRepository
	tx       repo.TransactionManager

	mode    SubmitMode
	bus     invalidation.Publisher
	events  EventPublisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOrderUsecase(
	idp identity.Provider,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	tx repo.TransactionManager,
	opts OrderOptions,
) *OrderUsecase {
	u := &OrderUsecase{
		identity: idp,
		orders:   orders,
		items:    items,
		tx:       tx,
		mode:     opts.Mode,
		bus:      opts.Bus,
		events:   opts.Events,
		metrics:  opts.Metrics,
		now:      opts.Clock,
	}
	if u.mode == "" {
		u.mode = SubmitTwoStep
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

type OrderItemOutput struct {
	ProductID   string          `json:"coffee_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type OrderOutput struct {
	model.Order
	Items []OrderItemOutput `json:"items"`
}

// PlaceOrderはカートと席から注文を作る。
//  1. ヘッダ（status=new, 合計, 席名）
//  2. 明細（1回のINSERT）。1が成功してからしか書かない。
//
// 成功時だけカートと席を空にする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, sess *session.Session) (OrderOutput, error) {
	log := logging.FromContext(ctx)

	//認証が先（未サインインなら何も書かない）
	who, ok := u.identity.CurrentUser(ctx)
	if !ok {
		return OrderOutput{}, newError(ErrUnauthenticated, "sign in to place an order")
	}
	if sess == nil || sess.UserID() != who.UserID {
		return OrderOutput{}, newError(ErrForbidden, "session does not belong to the current user")
	}

	//席とカートの確認
	if sess.SelectedTable() == "" {
		return OrderOutput{}, newError(ErrValidation, "select a table")
	}
	if items, _ := sess.Cart(); len(items) == 0 {
		return OrderOutput{}, newError(ErrValidation, "cart is empty")
	}

	//送信開始時点のスナップショット
	sub, err := sess.BeginSubmit()
	if errors.Is(err, session.ErrSubmissionInProgress) {
		return OrderOutput{}, newError(ErrSubmissionInProgress, "order submission already in progress")
	}
	if err != nil {
		return OrderOutput{}, wrapError(ErrInternal, "internal error", err)
	}
	success := false
	defer func() { sub.Finish(success) }()

	// 確認と開始の間に空にされた場合
	if sub.Table == "" {
		return OrderOutput{}, newError(ErrValidation, "select a table")
	}
	if sub.Cart.IsEmpty() {
		return OrderOutput{}, newError(ErrValidation, "cart is empty")
	}

	header := model.Order{
		UserID:      who.UserID,
		Status:      model.OrderStatusNew,
		TotalPrice:  sub.Cart.Total(),
		TableNumber: sub.Table,
		CreatedAt:   u.now(),
	}
	lines := make([]model.OrderItem, 0, sub.Cart.Len())
	for _, it := range sub.Cart.Items() {
		lines = append(lines, model.OrderItem{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.Price,
			CreatedAt: header.CreatedAt,
		})
	}

	var orderID string
	switch u.mode {
	case SubmitAtomic:
		orderID, err = u.writeAtomic(ctx, header, lines)
	default:
		orderID, err = u.writeTwoStep(ctx, header, lines)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderHeaderWrite):
			u.metrics.OrderSubmitFailed(metrics.StageHeader)
			log.Error("order header write failed", zap.String("user_id", who.UserID), zap.Error(err))
		case errors.Is(err, ErrOrderItemsWrite):
			u.metrics.OrderSubmitFailed(metrics.StageItems)
			log.Error("order items write failed",
				zap.String("user_id", who.UserID),
				zap.String("order_id", orderID),
				zap.String("mode", string(u.mode)),
				zap.Error(err),
			)
		}
		return OrderOutput{}, err
	}

	success = true
	header.ID = orderID

	u.bus.Publish(ctx, invalidation.KeyOrdersWithProfiles, invalidation.MyOrders(who.UserID))
	u.publishEvent(ctx, OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     orderID,
		UserID:      who.UserID,
		Status:      string(header.Status),
		TotalPrice:  header.TotalPrice,
		TableNumber: header.TableNumber,
		ItemCount:   len(lines),
		OccurredAt:  header.CreatedAt,
	})
	u.metrics.OrderSubmitted()
	log.Info("order placed",
		zap.String("order_id", orderID),
		zap.String("user_id", who.UserID),
		zap.String("total", header.TotalPrice.StringFixed(2)),
		zap.Int("items", len(lines)),
	)

	out := OrderOutput{Order: header, Items: make([]OrderItemOutput, 0, len(lines))}
	for _, it := range sub.Cart.Items() {
		out.Items = append(out.Items, OrderItemOutput{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Product.Price,
		})
	}
	return out, nil
}

// ヘッダが失敗したら明細は書かない。明細の失敗時はヘッダのIDも返す。
func (u *OrderUsecase) writeTwoStep(ctx context.Context, header model.Order, lines []model.OrderItem) (string, error) {
	orderID, err := u.orders.Create(ctx, header)
	if err != nil {
		return "", wrapError(ErrOrderHeaderWrite, "could not create order", err)
	}
	if err := u.items.CreateBulk(ctx, orderID, lines); err != nil {
		return orderID, wrapError(ErrOrderItemsWrite, "could not save order items", err)
	}
	return orderID, nil
}

// 明細が失敗したらヘッダもロールバック
func (u *OrderUsecase) writeAtomic(ctx context.Context, header model.Order, lines []model.OrderItem) (string, error) {
	var orderID string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, header)
		if err != nil {
			return wrapError(ErrOrderHeaderWrite, "could not create order", err)
		}
		if err := r.OrderItems().CreateBulk(ctx, id, lines); err != nil {
			return wrapError(ErrOrderItemsWrite, "could not save order items", err)
		}
		orderID = id
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return "", err
		}
		// commit失敗など
		return "", wrapError(ErrOrderHeaderWrite, "could not create order", err)
	}
	return orderID, nil
}

func (u *OrderUsecase) publishEvent(ctx context.Context, ev OrderEvent) {
	if err := u.events.PublishEvent(ctx, ev.OrderID, ev); err != nil {
		logging.FromContext(ctx).Warn("order event publish failed",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

// 本人の注文、新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context) ([]model.Order, error) {
	who, ok := u.identity.CurrentUser(ctx)
	if !ok {
		return []model.Order{}, newError(ErrUnauthenticated, "unauthorized")
	}
	orders, err := u.orders.ListByUserID(ctx, who.UserID)
	if err != nil {
		return []model.Order{}, wrapError(ErrInternal, "db error", err)
	}
	return orders, nil
}

// 本人の注文の明細（他人の注文は404）
func (u *OrderUsecase) GetMyOrderItems(ctx context.Context, orderID string) ([]model.OrderItemDetail, error) {
	who, ok := u.identity.CurrentUser(ctx)
	if !ok {
		return []model.OrderItemDetail{}, newError(ErrUnauthenticated, "unauthorized")
	}
	if orderID == "" {
		return []model.OrderItemDetail{}, newError(ErrValidation, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return []model.OrderItemDetail{}, newError(ErrNotFound, "not found")
	}
	if err != nil {
		return []model.OrderItemDetail{}, wrapError(ErrInternal, "db error", err)
	}
	if o.UserID != who.UserID {
		return []model.OrderItemDetail{}, newError(ErrNotFound, "not found")
	}

	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return []model.OrderItemDetail{}, wrapError(ErrInternal, "db error", err)
	}
	return items, nil
}
