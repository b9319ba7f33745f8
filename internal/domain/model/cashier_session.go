package model

import "time"

// カウンターに入っているキャッシャーのセッション。
// LiveSlot はアクティブな間だけ CashierID を持つ（1人1セッション）。
type CashierSession struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CounterID  int64      `gorm:"not null;index" json:"counter_id"`
	CashierID  int64      `gorm:"not null;index" json:"cashier_id"`
	LiveSlot   *int64     `gorm:"uniqueIndex" json:"-"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

func (s CashierSession) Active() bool { return s.ReleasedAt == nil }
