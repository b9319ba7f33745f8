package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"
)

type QRTokenRepository interface {
	Create(ctx context.Context, t *model.QRToken) error
	FindByToken(ctx context.Context, token string) (model.QRToken, error)
	// 有効枠を持っているトークン（未使用）。無ければ ErrNotFound。
	FindLiveByOrderID(ctx context.Context, orderID int64) (model.QRToken, error)
	ClearLiveSlot(ctx context.Context, tokenID int64) error
	// 未使用のときだけ scanned_at を立てる。先に誰かが使っていたら false。
	MarkScanned(ctx context.Context, tokenID int64, at time.Time) (bool, error)
	HasScanned(ctx context.Context, orderID int64) (bool, error)
}
