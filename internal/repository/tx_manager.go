package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	QRTokens() QRTokenRepository
	Counters() CounterRepository
	Sessions() CashierSessionRepository
	Payments() PaymentRepository
	RevenueShares() RevenueShareRepository
	Settings() SettingRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
