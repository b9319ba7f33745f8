package notify

import (
	"strconv"
	"strings"
	"time"
)

// 表示板（全テナント共通）
const DisplayTopic = "display"

func TenantTopic(tenantID int64) string { return "tenant:" + strconv.FormatInt(tenantID, 10) }

func CounterTopic(counterID int64) string { return "counter:" + strconv.FormatInt(counterID, 10) }

// ValidTopic は購読できるトピック名か
func ValidTopic(topic string) bool {
	if topic == DisplayTopic {
		return true
	}
	for _, prefix := range []string{"tenant:", "counter:"} {
		if rest, ok := strings.CutPrefix(topic, prefix); ok {
			id, err := strconv.ParseInt(rest, 10, 64)
			return err == nil && id > 0
		}
	}
	return false
}

// イベント種別
const (
	TypeOrderSubmitted  = "order.submitted"
	TypeOrderTransition = "order.transitioned"
	TypeQRIssued        = "qr.issued"
	TypeQRRedeemed      = "qr.redeemed"
	TypePaymentRecorded = "payment.recorded"
	TypePaymentSettled  = "payment.settled"
	TypePaymentFailed   = "payment.failed"
	TypeCounterAssigned = "counter.assigned"
	TypeCounterReleased = "counter.released"
)

type Event struct {
	Type          string         `json:"type"`
	Topic         string         `json:"topic"`
	OrderID       int64          `json:"order_id,omitempty"`
	OrderNumber   string         `json:"order_number,omitempty"`
	TenantID      int64          `json:"tenant_id,omitempty"`
	CounterID     int64          `json:"counter_id,omitempty"`
	Status        string         `json:"status,omitempty"`
	PaymentStatus string         `json:"payment_status,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	At            time.Time      `json:"at"`
}
