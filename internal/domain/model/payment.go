package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodQRIS     PaymentMethod = "qris"
	PaymentMethodDebit    PaymentMethod = "debit"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodQRIS, PaymentMethodDebit, PaymentMethodTransfer:
		return true
	}
	return false
}

// 支払いレコードの状態。success / failed になったら変えない。
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateFailed  PaymentState = "failed"
)

type Payment struct {
	ID                   int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64         `gorm:"not null;index" json:"order_id"`
	CounterID            int64         `gorm:"not null;index" json:"counter_id"`
	CashierID            int64         `gorm:"not null;index" json:"cashier_id"`
	AmountPaid           int64         `gorm:"not null" json:"amount_paid"`
	Method               PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	TransactionReference string        `gorm:"type:varchar(100);not null;uniqueIndex" json:"transaction_reference"`
	Status               PaymentState  `gorm:"type:varchar(20);not null;index" json:"status"`
	FailureReason        string        `gorm:"type:varchar(255)" json:"failure_reason,omitempty"`
	SettledAt            *time.Time    `json:"settled_at,omitempty"`
	Version              int64         `gorm:"not null" json:"version"`
	CreatedAt            time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"not null" json:"updated_at"`
}
