package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentUsecase_SettleSplitsRevenue(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.redeemedOrder(t, 5)
	p := e.pendingPayment(t, o, 301, "REF-85000")

	res, err := e.payments.Settle(ctx, 9, p.ID)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStateSuccess, res.Payment.Status)
	assert.NotNil(t, res.Payment.SettledAt)
	assert.Equal(t, model.PaymentStatusPaid, res.Order.PaymentStatus)
	assert.Equal(t, int64(85000), res.RevenueShare.GrossAmount)
	assert.Equal(t, int64(1700), res.RevenueShare.PlatformShare)
	assert.Equal(t, int64(850), res.RevenueShare.CheckoutShare)
	assert.Equal(t, int64(82450), res.RevenueShare.TenantShare)
	assert.Equal(t, "97", res.RevenueShare.TenantPct)

	stored, err := e.payments.RevenueShare(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, res.RevenueShare.TenantShare+res.RevenueShare.PlatformShare+res.RevenueShare.CheckoutShare, stored.GrossAmount)
	assert.Equal(t, int64(5), stored.TenantID)

	ps, err := e.payments.ListOrderPayments(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, model.PaymentStateSuccess, ps[0].Status)

	_, err = e.payments.Settle(ctx, 9, p.ID)
	requireKind(t, err, apperr.KindConflict)
}

func TestPaymentUsecase_SettleRollsBackOnMisconfiguredSplit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.redeemedOrder(t, 1)
	p := e.pendingPayment(t, o, 302, "REF-ROLLBACK")

	_, err := e.settings.Update(ctx, 1, model.SettingPlatformPercentage, "60")
	require.NoError(t, err)
	_, err = e.settings.Update(ctx, 1, model.SettingCheckoutPercentage, "50")
	require.NoError(t, err)

	before, err := e.orders.Get(ctx, o.ID)
	require.NoError(t, err)

	_, err = e.payments.Settle(ctx, 1, p.ID)
	requireKind(t, err, apperr.KindConfig)

	after, err := e.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, after.PaymentStatus)
	assert.Equal(t, before.Version, after.Version)

	ps, err := e.payments.ListOrderPayments(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatePending, ps[0].Status)
	assert.Nil(t, ps[0].SettledAt)

	_, err = e.payments.RevenueShare(ctx, p.ID)
	requireKind(t, err, apperr.KindNotFound)

	var settleLogs int64
	require.NoError(t, e.db.Model(&model.AuditLog{}).Where("action = ?", model.AuditActionSettlePayment).Count(&settleLogs).Error)
	assert.Zero(t, settleLogs)

	// 設定を直せば同じ支払いを精算できる
	_, err = e.settings.Update(ctx, 1, model.SettingPlatformPercentage, "2")
	require.NoError(t, err)
	res, err := e.payments.Settle(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(85000-1700-42500), res.RevenueShare.TenantShare)
}

func TestPaymentUsecase_SettleRacingCancel(t *testing.T) {
	for round := 0; round < 5; round++ {
		e := newTestEnv(t)
		ctx := context.Background()
		o := e.redeemedOrder(t, 1)
		p := e.pendingPayment(t, o, 303, "REF-RACE")

		start := make(chan struct{})
		var wg sync.WaitGroup
		var settleErr, cancelErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, settleErr = e.payments.Settle(ctx, 0, p.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, cancelErr = e.orders.Transition(ctx, 0, o.ID, model.EventCancel)
		}()
		close(start)
		wg.Wait()

		got, err := e.orders.Get(ctx, o.ID)
		require.NoError(t, err)

		if settleErr == nil {
			requireKind(t, cancelErr, apperr.KindState)
			assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
			assert.NotEqual(t, model.OrderStatusCancelled, got.Status)
		} else {
			require.NoError(t, cancelErr)
			requireKind(t, settleErr, apperr.KindConflict)
			assert.Equal(t, model.OrderStatusCancelled, got.Status)
			assert.Equal(t, model.PaymentStatusPending, got.PaymentStatus)
			_, err := e.payments.RevenueShare(ctx, p.ID)
			requireKind(t, err, apperr.KindNotFound)
		}
	}
}

func TestPaymentUsecase_RecordValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.redeemedOrder(t, 1)
	c := e.counterAt(t, "PV", 2)
	_, err := e.counters.Assign(ctx, c.ID, 401)
	require.NoError(t, err)

	base := usecase.RecordPaymentInput{
		OrderID:              o.ID,
		CounterID:            c.ID,
		CashierID:            401,
		AmountPaid:           85000,
		Method:               model.PaymentMethodQRIS,
		TransactionReference: "REF-V1",
	}

	cases := []struct {
		name   string
		mutate func(in *usecase.RecordPaymentInput)
	}{
		{name: "zero amount", mutate: func(in *usecase.RecordPaymentInput) { in.AmountPaid = 0 }},
		{name: "unknown method", mutate: func(in *usecase.RecordPaymentInput) { in.Method = "coupon" }},
		{name: "empty reference", mutate: func(in *usecase.RecordPaymentInput) { in.TransactionReference = " " }},
		{name: "short of total", mutate: func(in *usecase.RecordPaymentInput) { in.AmountPaid = 84950 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := e.payments.Record(ctx, in)
			requireKind(t, err, apperr.KindValidation)
		})
	}

	// 許容差を設定すれば通る
	_, err = e.settings.Update(ctx, 1, model.SettingPaymentTolerance, "100")
	require.NoError(t, err)
	in := base
	in.AmountPaid = 84950
	p, err := e.payments.Record(ctx, in)
	require.NoError(t, err)

	// 使用済みの参照番号は失敗にしたあとでも使えない
	_, err = e.payments.Fail(ctx, p.ID, "card declined")
	require.NoError(t, err)
	other := e.redeemedOrder(t, 1)
	in = base
	in.OrderID = other.ID
	_, err = e.payments.Record(ctx, in)
	requireKind(t, err, apperr.KindValidation)
}

func TestPaymentUsecase_RecordPreconditions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.counterAt(t, "PP", 2)
	_, err := e.counters.Assign(ctx, c.ID, 402)
	require.NoError(t, err)

	in := func(orderID, cashierID int64, ref string) usecase.RecordPaymentInput {
		return usecase.RecordPaymentInput{
			OrderID: orderID, CounterID: c.ID, CashierID: cashierID,
			AmountPaid: 85000, Method: model.PaymentMethodCash, TransactionReference: ref,
		}
	}

	// QR未通過
	notScanned := e.submitSample(t, 1)
	_, err = e.payments.Record(ctx, in(notScanned.ID, 402, "REF-P1"))
	requireKind(t, err, apperr.KindState)

	// セッションなし
	o := e.redeemedOrder(t, 1)
	_, err = e.payments.Record(ctx, in(o.ID, 999, "REF-P2"))
	requireKind(t, err, apperr.KindState)

	// 保留中の支払いは1件まで
	_, err = e.payments.Record(ctx, in(o.ID, 402, "REF-P3"))
	require.NoError(t, err)
	_, err = e.payments.Record(ctx, in(o.ID, 402, "REF-P4"))
	requireKind(t, err, apperr.KindState)

	_, err = e.payments.Record(ctx, in(12345, 402, "REF-P5"))
	requireKind(t, err, apperr.KindNotFound)
}

func TestPaymentUsecase_FailMarksOrderPaymentFailed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.redeemedOrder(t, 1)
	p := e.pendingPayment(t, o, 304, "REF-FAIL")

	_, err := e.payments.Fail(ctx, p.ID, "")
	requireKind(t, err, apperr.KindValidation)

	failed, err := e.payments.Fail(ctx, p.ID, "insufficient balance")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStateFailed, failed.Status)
	assert.Equal(t, "insufficient balance", failed.FailureReason)

	got, err := e.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, got.PaymentStatus)

	_, err = e.payments.Settle(ctx, 0, p.ID)
	requireKind(t, err, apperr.KindState)
	_, err = e.payments.Fail(ctx, p.ID, "again")
	requireKind(t, err, apperr.KindState)

	// failed の注文はキャンセルだけできる
	_, err = e.orders.Transition(ctx, 0, o.ID, model.EventCancel)
	assert.NoError(t, err)
}

func TestPaymentUsecase_FailTruncatesReasonOnRuneBoundary(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.redeemedOrder(t, 1)
	p := e.pendingPayment(t, o, 305, "REF-LONG")

	// 2バイト文字×200 = 400バイト
	failed, err := e.payments.Fail(ctx, p.ID, strings.Repeat("é", 200))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(failed.FailureReason))
	assert.Equal(t, 254, len(failed.FailureReason))
	assert.Equal(t, strings.Repeat("é", 127), failed.FailureReason)

	stored, err := e.payments.ListOrderPayments(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, failed.FailureReason, stored[0].FailureReason)
}

func TestSplitUsecase_ComputeSplitIsSideEffectFree(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	shares, err := e.splitter.ComputeSplit(ctx, 85000)
	require.NoError(t, err)
	assert.Equal(t, int64(82450), shares.TenantShare)

	again, err := e.splitter.ComputeSplit(ctx, 85000)
	require.NoError(t, err)
	assert.Equal(t, shares, again)

	var n int64
	require.NoError(t, e.db.Model(&model.RevenueShare{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = e.splitter.ComputeSplit(ctx, -1)
	requireKind(t, err, apperr.KindValidation)
}
