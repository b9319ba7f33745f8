package model

import "time"

type AuditAction string

const (
	//設定値を更新した操作。
	AuditActionUpdateSetting AuditAction = "UPDATE_SETTING"
	//注文をキャンセルした操作。
	AuditActionCancelOrder AuditAction = "CANCEL_ORDER"
	//支払いを精算した操作。
	AuditActionSettlePayment AuditAction = "SETTLE_PAYMENT"
)

func (a AuditAction) Known() bool {
	switch a {
	case AuditActionUpdateSetting, AuditActionCancelOrder, AuditActionSettlePayment:
		return true
	}
	return false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceSetting AuditResourceType = "setting"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourcePayment AuditResourceType = "payment"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。システム操作は0。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID（設定はキー名）。
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
