package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"
)

type CounterRepository interface {
	Create(ctx context.Context, c *model.CheckoutCounter) error
	FindByID(ctx context.Context, counterID int64) (model.CheckoutCounter, error)
	List(ctx context.Context) ([]model.CheckoutCounter, error)
	// occupancy < max_kasir のときだけ +1。満席なら false。
	TryOccupy(ctx context.Context, counterID int64, at time.Time) (bool, error)
	// occupancy > 0 のときだけ -1
	Vacate(ctx context.Context, counterID int64, at time.Time) error
}

type CashierSessionRepository interface {
	Create(ctx context.Context, s *model.CashierSession) error
	FindByID(ctx context.Context, sessionID int64) (model.CashierSession, error)
	// アクティブなときだけ解放する。解放済みなら false。
	Release(ctx context.Context, sessionID int64, at time.Time) (bool, error)
	FindActiveByCashier(ctx context.Context, cashierID int64) (model.CashierSession, error)
	ListActiveByCounter(ctx context.Context, counterID int64) ([]model.CashierSession, error)
}
