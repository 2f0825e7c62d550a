package usecase

import (
	"context"
	"strings"
	"time"

	"cafe/internal/domain/model"
	repo "cafe/internal/repository"
)

// 管理者向けの監査ログ参照
type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

// 空の項目は条件にしない
type AuditLogQuery struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         string // RFC3339
	To           string // RFC3339
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error) {
	f := repo.AuditLogFilter{Limit: q.Limit, Offset: q.Offset}

	if v := strings.TrimSpace(q.ActorUserID); v != "" {
		f.ActorUserID = &v
	}
	if v := strings.TrimSpace(q.Action); v != "" {
		a := model.AuditAction(strings.ToUpper(v))
		switch a {
		case model.AuditActionUpdateOrderStatus, model.AuditActionUpdateUserRole, model.AuditActionDeleteOrphanOrder:
		default:
			return []model.AuditLog{}, newError(ErrValidation, "invalid action")
		}
		f.Action = &a
	}
	if v := strings.TrimSpace(q.ResourceType); v != "" {
		rt := model.AuditResourceType(strings.ToLower(v))
		if rt != model.AuditResourceOrder && rt != model.AuditResourceUser {
			return []model.AuditLog{}, newError(ErrValidation, "invalid resource_type")
		}
		f.ResourceType = &rt
	}
	if v := strings.TrimSpace(q.ResourceID); v != "" {
		f.ResourceID = &v
	}
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return []model.AuditLog{}, newError(ErrValidation, "invalid from")
		}
		f.CreatedFrom = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return []model.AuditLog{}, newError(ErrValidation, "invalid to")
		}
		f.CreatedTo = &t
	}
	if f.Limit < 0 || f.Offset < 0 {
		return []model.AuditLog{}, newError(ErrValidation, "invalid limit/offset")
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, wrapError(ErrInternal, "db error", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
