package model

import "time"

// 注文に1対1で紐づくQRトークン。
// LiveSlot は有効な間だけ注文IDを持つ（ユニーク）。使用済み・失効後は NULL。
type QRToken struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64      `gorm:"not null;index" json:"order_id"`
	Token     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`
	LiveSlot  *int64     `gorm:"uniqueIndex" json:"-"`
	IssuedAt  time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (t QRToken) Consumed() bool { return t.ScannedAt != nil }

// 期限ちょうどはまだ有効
func (t QRToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

func (t QRToken) Live(now time.Time) bool { return !t.Consumed() && !t.Expired(now) }
