package model

import (
	"time"

	"foodcourt/internal/apperr"
)

// 注文の状態機械に渡すイベント
type OrderEvent string

const (
	EventConfirm          OrderEvent = "confirm"
	EventStartPreparing   OrderEvent = "start_preparing"
	EventMarkReady        OrderEvent = "mark_ready"
	EventComplete         OrderEvent = "complete"
	EventCancel           OrderEvent = "cancel"
	EventPaymentSucceeded OrderEvent = "payment_succeeded"
	EventPaymentFailed    OrderEvent = "payment_failed"
)

// 調理の流れ（from -> to）
var kitchenSteps = map[OrderEvent][2]OrderStatus{
	EventConfirm:        {OrderStatusPending, OrderStatusConfirmed},
	EventStartPreparing: {OrderStatusConfirmed, OrderStatusPreparing},
	EventMarkReady:      {OrderStatusPreparing, OrderStatusReady},
}

func ParseOrderEvent(s string) (OrderEvent, bool) {
	switch ev := OrderEvent(s); ev {
	case EventConfirm, EventStartPreparing, EventMarkReady, EventComplete,
		EventCancel, EventPaymentSucceeded, EventPaymentFailed:
		return ev, true
	}
	return "", false
}

// Apply はイベント適用後の注文を返す。失敗時は元の注文に一切触れない。
func (o Order) Apply(ev OrderEvent, now time.Time) (Order, error) {
	next := o

	switch ev {
	case EventConfirm, EventStartPreparing, EventMarkReady:
		step := kitchenSteps[ev]
		if o.Status != step[0] {
			return o, stateError(o, ev, "")
		}
		next.Status = step[1]

	case EventComplete:
		if o.Status != OrderStatusReady {
			return o, stateError(o, ev, "")
		}
		if o.PaymentStatus != PaymentStatusPaid {
			return o, stateError(o, ev, "payment is not settled")
		}
		next.Status = OrderStatusCompleted
		next.CompletedAt = &now

	case EventCancel:
		if o.IsTerminal() {
			return o, stateError(o, ev, "")
		}
		// 支払い済みはキャンセル不可（精算が先に確定した）
		if o.PaymentStatus == PaymentStatusPaid {
			return o, stateError(o, ev, "order is already paid")
		}
		next.Status = OrderStatusCancelled
		next.CancelledAt = &now

	case EventPaymentSucceeded, EventPaymentFailed:
		if o.IsTerminal() || o.PaymentStatus != PaymentStatusPending {
			return o, stateError(o, ev, "")
		}
		if ev == EventPaymentSucceeded {
			next.PaymentStatus = PaymentStatusPaid
			next.PaidAt = &now
		} else {
			next.PaymentStatus = PaymentStatusFailed
		}

	default:
		return o, apperr.Newf(apperr.KindValidation, "order.apply", "unknown order event %q", ev)
	}

	next.UpdatedAt = now
	return next, nil
}

func stateError(o Order, ev OrderEvent, reason string) error {
	msg := "cannot " + string(ev) + " order in status " + string(o.Status) +
		" (payment " + string(o.PaymentStatus) + ")"
	if reason != "" {
		msg += ": " + reason
	}
	return apperr.New(apperr.KindState, "order.apply", msg).
		With("status", string(o.Status)).
		With("payment_status", string(o.PaymentStatus)).
		With("event", string(ev))
}
