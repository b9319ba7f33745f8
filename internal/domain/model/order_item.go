package model

import "time"

// 注文明細。注文が pending を抜けたあとは変更しない。
type OrderItem struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64     `gorm:"not null;index" json:"order_id"`
	MenuItemName string    `gorm:"type:varchar(255);not null" json:"menu_item_name"`
	Quantity     int64     `gorm:"not null" json:"quantity"`
	UnitPrice    int64     `gorm:"not null" json:"unit_price"`
	Subtotal     int64     `gorm:"not null" json:"subtotal"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
