package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 支払い状態（注文ステータスとは別の軸）
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      int64         `gorm:"not null;index" json:"tenant_id"`
	OrderNumber   string        `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_number"`
	TableCode     string        `gorm:"type:varchar(40)" json:"table_code,omitempty"`
	CustomerName  string        `gorm:"type:varchar(120)" json:"customer_name,omitempty"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	Version       int64         `gorm:"not null" json:"version"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`

	// 明細は OrderItemRepository で別に読む
	Items []OrderItem `gorm:"-" json:"items"`
}

// IsTerminal は completed / cancelled のとき true
func (o Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
