package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, s model.Setting) error
	// 無いキーだけ入れる
	InsertMissing(ctx context.Context, defaults []model.Setting) error
}
