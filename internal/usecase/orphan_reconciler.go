package usecase

import (
	"context"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"
	"cafe/internal/logging"
	"cafe/internal/metrics"
	repo "cafe/internal/repository"

	"go.uber.org/zap"
)

// OrphanReconcilerは明細の無い古い注文ヘッダを消す（2段階書き込みの後始末）。
// 明細書き込み中のヘッダを消さないようにgraceより新しいものは対象外。
type OrphanReconciler struct {
	orders    repo.OrderRepository
	auditRepo repo.AuditLogRepository
	bus       invalidation.Publisher
	events    EventPublisher
	metrics   *metrics.Metrics
	grace     time.Duration
	now       func() time.Time
}

func NewOrphanReconciler(
	orders repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	grace time.Duration,
	opts OrderOptions,
) *OrphanReconciler {
	r := &OrphanReconciler{
		orders:    orders,
		auditRepo: auditRepo,
		bus:       opts.Bus,
		events:    opts.Events,
		metrics:   opts.Metrics,
		grace:     grace,
		now:       opts.Clock,
	}
	if r.bus == nil {
		r.bus = invalidation.Nop{}
	}
	if r.events == nil {
		r.events = NopEventPublisher{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

type ReconcileResult struct {
	Scanned int      `json:"scanned"`
	Deleted []string `json:"deleted"`
}

func (r *OrphanReconciler) RunOnce(ctx context.Context) (ReconcileResult, error) {
	log := logging.FromContext(ctx)
	out := ReconcileResult{Deleted: []string{}}

	cutoff := r.now().Add(-r.grace)
	orphans, err := r.orders.ListWithoutItems(ctx, cutoff)
	if err != nil {
		return out, wrapError(ErrInternal, "db error", err)
	}
	out.Scanned = len(orphans)

	for _, o := range orphans {
		deleted, err := r.orders.DeleteIfNoItems(ctx, o.ID)
		if err != nil {
			log.Warn("orphan order delete failed", zap.String("order_id", o.ID), zap.Error(err))
			continue
		}
		if !deleted {
			continue
		}
		out.Deleted = append(out.Deleted, o.ID)

		if err := r.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  model.SystemActorID,
			Action:       model.AuditActionDeleteOrphanOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `","total_price":"` + o.TotalPrice.StringFixed(2) + `"}`,
			CreatedAt:    r.now(),
		}); err != nil {
			log.Warn("audit log write failed", zap.String("order_id", o.ID), zap.Error(err))
		}
		if err := r.events.PublishEvent(ctx, o.ID, OrderEvent{
			Type:        EventOrderOrphanDeleted,
			OrderID:     o.ID,
			UserID:      o.UserID,
			Status:      string(o.Status),
			TotalPrice:  o.TotalPrice,
			TableNumber: o.TableNumber,
			ActorID:     model.SystemActorID,
			OccurredAt:  r.now(),
		}); err != nil {
			log.Warn("order event publish failed", zap.String("order_id", o.ID), zap.Error(err))
		}
		r.bus.Publish(ctx, invalidation.MyOrders(o.UserID), invalidation.OrderDetails(o.UserID, o.ID))
	}

	if len(out.Deleted) > 0 {
		r.bus.Publish(ctx, invalidation.KeyOrdersWithProfiles)
		r.metrics.OrphansDeleted(len(out.Deleted))
		log.Info("orphan orders removed", zap.Int("count", len(out.Deleted)))
	}
	return out, nil
}

// intervalごとにRunOnce。ctxが終わるまで。
func (r *OrphanReconciler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.RunOnce(ctx); err != nil {
					logging.FromContext(ctx).Warn("orphan reconcile failed", zap.Error(err))
				}
			}
		}
	}()
}
