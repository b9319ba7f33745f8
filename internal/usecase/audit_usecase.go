package usecase

import (
	"context"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"
)

// AuditUsecase は監査ログの参照だけ
type AuditUsecase struct {
	audits repo.AuditLogRepository
}

func NewAuditUsecase(audits repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{audits: audits}
}

func (u *AuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	const op = "audit.list"
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, apperr.New(apperr.KindValidation, op, "from must be before to")
	}
	for _, a := range f.Actions {
		if !a.Known() {
			return nil, apperr.Newf(apperr.KindValidation, op, "unknown action %q", a)
		}
	}
	logs, err := u.audits.List(ctx, f)
	if err != nil {
		return nil, storageErr(op, err)
	}
	return logs, nil
}
