package repository

import (
	"context"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// settle / cancel の tx 内では TxRepos 経由の db が渡る
func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return translateErr(r.db.WithContext(ctx).Create(&log).Error)
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditActor(f), auditActions(f), auditResource(f), auditPeriod(f)).
		Order("created_at DESC").Order("id DESC").
		Limit(f.PageSize()).
		Offset(max(f.Offset, 0)).
		Find(&logs).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return logs, nil
}

func auditActor(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ActorUserID == nil {
			return db
		}
		return db.Where("actor_user_id = ?", *f.ActorUserID)
	}
}

func auditActions(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch len(f.Actions) {
		case 0:
			return db
		case 1:
			return db.Where("action = ?", f.Actions[0])
		default:
			return db.Where("action IN ?", f.Actions)
		}
	}
}

// resource_id は resource_type と組で意味を持つ（注文ID・支払ID・設定キー）
func auditResource(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ResourceType != "" {
			db = db.Where("resource_type = ?", f.ResourceType)
		}
		if f.ResourceID != "" {
			db = db.Where("resource_id = ?", f.ResourceID)
		}
		return db
	}
}

func auditPeriod(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.From != nil {
			db = db.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("created_at < ?", *f.To)
		}
		return db
	}
}
