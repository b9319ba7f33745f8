package model

import "time"

// 設定キー
const (
	SettingTenantPercentage   = "TENANT_PERCENTAGE"
	SettingPlatformPercentage = "PLATFORM_PERCENTAGE"
	SettingCheckoutPercentage = "CHECKOUT_PERCENTAGE"
	SettingQRExpiryMinutes    = "QR_EXPIRY_MINUTES"
	SettingTaxRate            = "TAX_RATE"

	// 支払額と注文合計の許容差（通貨単位）。既定は0＝完全一致。
	SettingPaymentTolerance = "PAYMENT_TOLERANCE"
)

type Setting struct {
	Key         string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value       string    `gorm:"type:varchar(255);not null" json:"value"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// DefaultSettings は初回起動時に投入する値
func DefaultSettings() []Setting {
	return []Setting{
		{Key: SettingTenantPercentage, Value: "97", Description: "tenant share percentage"},
		{Key: SettingPlatformPercentage, Value: "2", Description: "platform share percentage"},
		{Key: SettingCheckoutPercentage, Value: "1", Description: "checkout operator share percentage"},
		{Key: SettingQRExpiryMinutes, Value: "120", Description: "minutes until an issued QR token expires"},
		{Key: SettingTaxRate, Value: "0", Description: "tax rate percentage"},
		{Key: SettingPaymentTolerance, Value: "0", Description: "allowed difference between payment amount and order total"},
	}
}
