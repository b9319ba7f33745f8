package model

import (
	"testing"
	"time"

	"foodcourt/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flowNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newPendingOrder() Order {
	return Order{
		ID:            1,
		TenantID:      7,
		OrderNumber:   "ORD-20261014-AAAA0001",
		TotalAmount:   85000,
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusPending,
		Version:       1,
	}
}

func TestApply_KitchenHappyPath(t *testing.T) {
	o := newPendingOrder()

	var err error
	for _, ev := range []OrderEvent{EventConfirm, EventStartPreparing, EventMarkReady, EventPaymentSucceeded, EventComplete} {
		o, err = o.Apply(ev, flowNow)
		require.NoError(t, err, "event=%s", ev)
	}

	assert.Equal(t, OrderStatusCompleted, o.Status)
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	require.NotNil(t, o.PaidAt)
	require.NotNil(t, o.CompletedAt)
	assert.True(t, o.IsTerminal())
}

func TestApply_IllegalTransitions(t *testing.T) {
	cases := []struct {
		name    string
		status  OrderStatus
		payment PaymentStatus
		event   OrderEvent
	}{
		{name: "prepare before confirm", status: OrderStatusPending, payment: PaymentStatusPending, event: EventStartPreparing},
		{name: "ready before preparing", status: OrderStatusConfirmed, payment: PaymentStatusPending, event: EventMarkReady},
		{name: "confirm twice", status: OrderStatusConfirmed, payment: PaymentStatusPending, event: EventConfirm},
		{name: "complete unpaid", status: OrderStatusReady, payment: PaymentStatusPending, event: EventComplete},
		{name: "complete not ready", status: OrderStatusPreparing, payment: PaymentStatusPaid, event: EventComplete},
		{name: "cancel completed", status: OrderStatusCompleted, payment: PaymentStatusPaid, event: EventCancel},
		{name: "cancel cancelled", status: OrderStatusCancelled, payment: PaymentStatusPending, event: EventCancel},
		{name: "cancel paid", status: OrderStatusReady, payment: PaymentStatusPaid, event: EventCancel},
		{name: "pay twice", status: OrderStatusReady, payment: PaymentStatusPaid, event: EventPaymentSucceeded},
		{name: "pay cancelled", status: OrderStatusCancelled, payment: PaymentStatusPending, event: EventPaymentSucceeded},
		{name: "pay after failure", status: OrderStatusConfirmed, payment: PaymentStatusFailed, event: EventPaymentSucceeded},
		{name: "fail after paid", status: OrderStatusConfirmed, payment: PaymentStatusPaid, event: EventPaymentFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newPendingOrder()
			o.Status = tc.status
			o.PaymentStatus = tc.payment
			before := o

			got, err := o.Apply(tc.event, flowNow)

			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindState), "err=%v", err)
			assert.Contains(t, err.Error(), string(tc.status))
			assert.Contains(t, err.Error(), string(tc.event))
			// 失敗時は何も変わらない
			assert.Equal(t, before, got)
			assert.Equal(t, before, o)
		})
	}
}

func TestApply_CancelFromEveryOpenState(t *testing.T) {
	for _, st := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady} {
		o := newPendingOrder()
		o.Status = st

		got, err := o.Apply(EventCancel, flowNow)
		require.NoError(t, err, "status=%s", st)
		assert.Equal(t, OrderStatusCancelled, got.Status)
		require.NotNil(t, got.CancelledAt)

		_, err = got.Apply(EventConfirm, flowNow)
		assert.True(t, apperr.Is(err, apperr.KindState))
	}
}

func TestApply_CompleteRequiresPayment(t *testing.T) {
	o := newPendingOrder()
	o.Status = OrderStatusReady

	_, err := o.Apply(EventComplete, flowNow)
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "ready", ae.Details["status"])
	assert.Equal(t, "complete", ae.Details["event"])

	paid, err := o.Apply(EventPaymentSucceeded, flowNow)
	require.NoError(t, err)
	done, err := paid.Apply(EventComplete, flowNow)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCompleted, done.Status)
}

func TestApply_PaymentFailedKeepsKitchenStatus(t *testing.T) {
	o := newPendingOrder()
	o.Status = OrderStatusPreparing

	got, err := o.Apply(EventPaymentFailed, flowNow)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPreparing, got.Status)
	assert.Equal(t, PaymentStatusFailed, got.PaymentStatus)
	assert.Nil(t, got.PaidAt)
}

func TestApply_UnknownEvent(t *testing.T) {
	_, err := newPendingOrder().Apply(OrderEvent("teleport"), flowNow)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestParseOrderEvent(t *testing.T) {
	ev, ok := ParseOrderEvent("mark_ready")
	assert.True(t, ok)
	assert.Equal(t, EventMarkReady, ev)

	_, ok = ParseOrderEvent("MARK_READY")
	assert.False(t, ok)
}

func TestQRToken_ExpiryBoundary(t *testing.T) {
	tok := QRToken{IssuedAt: flowNow, ExpiresAt: flowNow.Add(120 * time.Minute)}

	assert.True(t, tok.Live(flowNow.Add(119*time.Minute)))
	assert.False(t, tok.Expired(flowNow.Add(120*time.Minute)))
	assert.True(t, tok.Expired(flowNow.Add(121*time.Minute)))

	scanned := flowNow
	tok.ScannedAt = &scanned
	assert.False(t, tok.Live(flowNow))
}
