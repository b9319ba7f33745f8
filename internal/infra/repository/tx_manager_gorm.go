package repository

import (
	"context"

	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	qrTokens      repo.QRTokenRepository
	counters      repo.CounterRepository
	sessions      repo.CashierSessionRepository
	payments      repo.PaymentRepository
	revenueShares repo.RevenueShareRepository
	settings      repo.SettingRepository
	auditLogs     repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository               { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *txReposGorm) QRTokens() repo.QRTokenRepository           { return r.qrTokens }
func (r *txReposGorm) Counters() repo.CounterRepository           { return r.counters }
func (r *txReposGorm) Sessions() repo.CashierSessionRepository    { return r.sessions }
func (r *txReposGorm) Payments() repo.PaymentRepository           { return r.payments }
func (r *txReposGorm) RevenueShares() repo.RevenueShareRepository { return r.revenueShares }
func (r *txReposGorm) Settings() repo.SettingRepository           { return r.settings }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			qrTokens:      NewQRTokenGormRepository(tx),
			counters:      NewCounterGormRepository(tx),
			sessions:      NewCashierSessionGormRepository(tx),
			payments:      NewPaymentGormRepository(tx),
			revenueShares: NewRevenueShareGormRepository(tx),
			settings:      NewSettingGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
