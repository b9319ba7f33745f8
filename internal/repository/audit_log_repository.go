package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"
)

const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 200
)

// AuditLogFilter のゼロ値は「全件の先頭ページ」。
// Actions は OR、それ以外の条件は AND。期間は [From, To)。
type AuditLogFilter struct {
	ActorUserID  *int64
	Actions      []model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// PageSize は Limit を許容範囲に丸める
func (f AuditLogFilter) PageSize() int {
	if f.Limit <= 0 {
		return DefaultAuditPageSize
	}
	if f.Limit > MaxAuditPageSize {
		return MaxAuditPageSize
	}
	return f.Limit
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
