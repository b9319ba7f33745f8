package model

import "time"

// 精算済み支払い1件ごとの取り分。作成後は変更しない。
// TenantShare + PlatformShare + CheckoutShare == GrossAmount
type RevenueShare struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64     `gorm:"not null;index" json:"order_id"`
	PaymentID     int64     `gorm:"not null;uniqueIndex" json:"payment_id"`
	TenantID      int64     `gorm:"not null;index" json:"tenant_id"`
	GrossAmount   int64     `gorm:"not null" json:"gross_amount"`
	TenantShare   int64     `gorm:"not null" json:"tenant_share"`
	PlatformShare int64     `gorm:"not null" json:"platform_share"`
	CheckoutShare int64     `gorm:"not null" json:"checkout_share"`
	TenantPct     string    `gorm:"type:varchar(20);not null" json:"tenant_pct"`
	PlatformPct   string    `gorm:"type:varchar(20);not null" json:"platform_pct"`
	CheckoutPct   string    `gorm:"type:varchar(20);not null" json:"checkout_pct"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
