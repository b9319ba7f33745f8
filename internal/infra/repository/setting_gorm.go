package repository

import (
	"context"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingGormRepository struct {
	db *gorm.DB
}

func NewSettingGormRepository(db *gorm.DB) *SettingGormRepository {
	return &SettingGormRepository{db: db}
}

func (r *SettingGormRepository) Get(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error; err != nil {
		return model.Setting{}, translateErr(err)
	}
	return s, nil
}

func (r *SettingGormRepository) List(ctx context.Context) ([]model.Setting, error) {
	var ss []model.Setting
	if err := r.db.WithContext(ctx).Order("key asc").Find(&ss).Error; err != nil {
		return []model.Setting{}, err
	}
	return ss, nil
}

func (r *SettingGormRepository) Upsert(ctx context.Context, s model.Setting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(&s).Error
}

func (r *SettingGormRepository) InsertMissing(ctx context.Context, defaults []model.Setting) error {
	if len(defaults) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
}
