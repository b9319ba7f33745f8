package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/domain/split"
	"foodcourt/internal/logging"
	"foodcourt/internal/notify"
	repo "foodcourt/internal/repository"
)

type PaymentUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	payments repo.PaymentRepository
	shares   repo.RevenueShareRepository
	settings *SettingsStore
	splitter *SplitUsecase
	locks    Locker
	pub      Publisher
	clock    Clock
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	shares repo.RevenueShareRepository,
	settings *SettingsStore,
	splitter *SplitUsecase,
	locks Locker,
	pub Publisher,
	clock Clock,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:       tx,
		orders:   orders,
		payments: payments,
		shares:   shares,
		settings: settings,
		splitter: splitter,
		locks:    locks,
		pub:      pub,
		clock:    clock,
	}
}

type RecordPaymentInput struct {
	OrderID              int64               `json:"order_id"`
	CounterID            int64               `json:"counter_id"`
	CashierID            int64               `json:"cashier_id"`
	AmountPaid           int64               `json:"amount_paid"`
	Method               model.PaymentMethod `json:"method"`
	TransactionReference string              `json:"transaction_reference"`
}

func validateRecord(in RecordPaymentInput) error {
	const op = "payment.record"
	if in.AmountPaid <= 0 {
		return apperr.New(apperr.KindValidation, op, "amount_paid must be positive")
	}
	if !in.Method.Valid() {
		return apperr.Newf(apperr.KindValidation, op, "unknown payment method %q", in.Method)
	}
	ref := strings.TrimSpace(in.TransactionReference)
	if ref == "" || len(ref) > 100 {
		return apperr.New(apperr.KindValidation, op, "transaction_reference is required (max 100 chars)")
	}
	if in.CounterID <= 0 || in.CashierID <= 0 {
		return apperr.New(apperr.KindValidation, op, "counter_id and cashier_id must be positive")
	}
	return nil
}

// Record は支払いを pending で記録する
func (u *PaymentUsecase) Record(ctx context.Context, in RecordPaymentInput) (model.Payment, error) {
	const op = "payment.record"
	if err := validateRecord(in); err != nil {
		return model.Payment{}, err
	}
	tolerance, err := u.settings.Int(ctx, model.SettingPaymentTolerance)
	if err != nil {
		return model.Payment{}, err
	}
	if tolerance < 0 {
		return model.Payment{}, apperr.New(apperr.KindConfig, op, "PAYMENT_TOLERANCE must not be negative")
	}

	unlock, err := u.locks.Lock(ctx, orderKey(in.OrderID))
	if err != nil {
		return model.Payment{}, err
	}
	defer unlock()

	now := u.clock.Now()
	p := model.Payment{
		OrderID:              in.OrderID,
		CounterID:            in.CounterID,
		CashierID:            in.CashierID,
		AmountPaid:           in.AmountPaid,
		Method:               in.Method,
		TransactionReference: strings.TrimSpace(in.TransactionReference),
		Status:               model.PaymentStatePending,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var order model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o.IsTerminal() || o.PaymentStatus != model.PaymentStatusPending {
			return apperr.Newf(apperr.KindState, op, "cannot take payment for order in status %s (payment %s)", o.Status, o.PaymentStatus).
				With("status", string(o.Status)).
				With("payment_status", string(o.PaymentStatus))
		}
		if diff := in.AmountPaid - o.TotalAmount; diff > tolerance || -diff > tolerance {
			return apperr.New(apperr.KindValidation, op, "amount_paid does not match order total").
				With("total_amount", strconv.FormatInt(o.TotalAmount, 10)).
				With("amount_paid", strconv.FormatInt(in.AmountPaid, 10)).
				With("tolerance", strconv.FormatInt(tolerance, 10))
		}

		scanned, err := r.QRTokens().HasScanned(ctx, o.ID)
		if err != nil {
			return err
		}
		if !scanned {
			return apperr.New(apperr.KindState, op, "order QR token has not been redeemed")
		}

		s, err := r.Sessions().FindActiveByCashier(ctx, in.CashierID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && s.CounterID != in.CounterID) {
			return apperr.New(apperr.KindState, op, "cashier has no active session at this counter").
				With("counter_id", strconv.FormatInt(in.CounterID, 10))
		}
		if err != nil {
			return err
		}

		existing, err := r.Payments().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.Status == model.PaymentStatePending {
				return apperr.New(apperr.KindState, op, "order already has a pending payment").
					With("payment_id", strconv.FormatInt(e.ID, 10))
			}
		}

		if err := r.Payments().Create(ctx, &p); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return apperr.New(apperr.KindValidation, op, "transaction_reference already used")
			}
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return model.Payment{}, storageErr(op, err)
	}

	ev := orderEvent(notify.TypePaymentRecorded, order, now)
	ev.Data = map[string]any{"payment_id": p.ID, "amount_paid": p.AmountPaid, "method": string(p.Method)}
	publishOrder(u.pub, ev, p.CounterID)
	return p, nil
}

type SettleResult struct {
	Payment      model.Payment      `json:"payment"`
	Order        model.Order        `json:"order"`
	RevenueShare model.RevenueShare `json:"revenue_share"`
}

// Settle は 支払い成功 → 注文 paid → 取り分作成 を1つのTxで行う。
// どこかで失敗したら何も残らない。
func (u *PaymentUsecase) Settle(ctx context.Context, actorID, paymentID int64) (SettleResult, error) {
	const op = "payment.settle"

	head, err := u.payments.FindByID(ctx, paymentID)
	if err != nil {
		return SettleResult{}, storageErr(op, err)
	}
	// 設定はTxの外で読む
	pct, err := u.splitter.Percentages(ctx)
	if err != nil {
		return SettleResult{}, err
	}

	unlock, err := u.locks.Lock(ctx, orderKey(head.OrderID))
	if err != nil {
		return SettleResult{}, err
	}
	defer unlock()

	now := u.clock.Now()
	var res SettleResult
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		switch p.Status {
		case model.PaymentStatePending:
		case model.PaymentStateSuccess:
			return apperr.New(apperr.KindConflict, op, "payment is already settled")
		default:
			return apperr.Newf(apperr.KindState, op, "payment is %s", p.Status).With("payment_state", string(p.Status))
		}

		o, err := r.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		// キャンセルが先に確定していた
		if o.Status == model.OrderStatusCancelled {
			return apperr.New(apperr.KindConflict, op, "order was cancelled before settlement").
				With("status", string(o.Status))
		}
		next, err := o.Apply(model.EventPaymentSucceeded, now)
		if err != nil {
			return err
		}

		ok, err := r.Payments().Transition(ctx, p.ID, model.PaymentStatePending, model.PaymentStateSuccess, "", now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindConflict, op, "payment changed during settlement")
		}
		if next.Version, err = r.Orders().Update(ctx, next); err != nil {
			return err
		}

		shares, err := split.Compute(p.AmountPaid, pct)
		if err != nil {
			return err
		}
		rs := model.RevenueShare{
			OrderID:       o.ID,
			PaymentID:     p.ID,
			TenantID:      o.TenantID,
			GrossAmount:   shares.GrossAmount,
			TenantShare:   shares.TenantShare,
			PlatformShare: shares.PlatformShare,
			CheckoutShare: shares.CheckoutShare,
			TenantPct:     pct.Tenant.String(),
			PlatformPct:   pct.Platform.String(),
			CheckoutPct:   pct.Checkout.String(),
			CreatedAt:     now,
		}
		if err := r.RevenueShares().Create(ctx, &rs); err != nil {
			return err
		}

		after, _ := json.Marshal(rs)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionSettlePayment,
			ResourceType: model.AuditResourcePayment,
			ResourceID:   strconv.FormatInt(p.ID, 10),
			BeforeJSON:   `{"status":"pending"}`,
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		p.Status = model.PaymentStateSuccess
		p.SettledAt = &now
		p.UpdatedAt = now
		p.Version++
		res = SettleResult{Payment: p, Order: next, RevenueShare: rs}
		return nil
	})
	if err != nil {
		logging.FromContext(ctx).Warn("settlement rolled back",
			"payment_id", paymentID,
			"order_id", head.OrderID,
			"kind", string(apperr.KindOf(err)),
			"error", err,
		)
		return SettleResult{}, storageErr(op, err)
	}

	ev := orderEvent(notify.TypePaymentSettled, res.Order, now)
	ev.Data = map[string]any{
		"event":          string(model.EventPaymentSucceeded),
		"payment_id":     res.Payment.ID,
		"tenant_share":   res.RevenueShare.TenantShare,
		"platform_share": res.RevenueShare.PlatformShare,
		"checkout_share": res.RevenueShare.CheckoutShare,
	}
	publishOrder(u.pub, ev, res.Payment.CounterID)
	return res, nil
}

const maxFailureReasonBytes = 255

// truncateUTF8 は max バイト以内に収まるよう、文字の途中で切らずに詰める
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i]
}

// Fail は支払いを failed にし、注文が未払いなら payment_failed を適用する
func (u *PaymentUsecase) Fail(ctx context.Context, paymentID int64, reason string) (model.Payment, error) {
	const op = "payment.fail"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Payment{}, apperr.New(apperr.KindValidation, op, "reason is required")
	}
	reason = truncateUTF8(reason, maxFailureReasonBytes)

	head, err := u.payments.FindByID(ctx, paymentID)
	if err != nil {
		return model.Payment{}, storageErr(op, err)
	}
	unlock, err := u.locks.Lock(ctx, orderKey(head.OrderID))
	if err != nil {
		return model.Payment{}, err
	}
	defer unlock()

	now := u.clock.Now()
	var out model.Payment
	var order model.Order
	orderChanged := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != model.PaymentStatePending {
			return apperr.Newf(apperr.KindState, op, "payment is %s", p.Status).With("payment_state", string(p.Status))
		}
		ok, err := r.Payments().Transition(ctx, p.ID, model.PaymentStatePending, model.PaymentStateFailed, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindConflict, op, "payment changed concurrently")
		}

		o, err := r.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		order = o
		if !o.IsTerminal() && o.PaymentStatus == model.PaymentStatusPending {
			next, err := o.Apply(model.EventPaymentFailed, now)
			if err != nil {
				return err
			}
			if next.Version, err = r.Orders().Update(ctx, next); err != nil {
				return err
			}
			order = next
			orderChanged = true
		}

		p.Status = model.PaymentStateFailed
		p.FailureReason = reason
		p.UpdatedAt = now
		p.Version++
		out = p
		return nil
	})
	if err != nil {
		return model.Payment{}, storageErr(op, err)
	}

	ev := orderEvent(notify.TypePaymentFailed, order, now)
	ev.Data = map[string]any{"payment_id": out.ID, "reason": reason, "order_changed": orderChanged}
	if orderChanged {
		ev.Data["event"] = string(model.EventPaymentFailed)
	}
	publishOrder(u.pub, ev, out.CounterID)
	return out, nil
}

func (u *PaymentUsecase) ListOrderPayments(ctx context.Context, orderID int64) ([]model.Payment, error) {
	const op = "payment.list"
	if _, err := u.orders.FindByID(ctx, orderID); err != nil {
		return nil, storageErr(op, err)
	}
	ps, err := u.payments.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, storageErr(op, err)
	}
	return ps, nil
}

func (u *PaymentUsecase) RevenueShare(ctx context.Context, paymentID int64) (model.RevenueShare, error) {
	rs, err := u.shares.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return model.RevenueShare{}, storageErr("payment.revenue_share", err)
	}
	return rs, nil
}

type TenantRevenue struct {
	TenantID    int64                `json:"tenant_id"`
	GrossAmount int64                `json:"gross_amount"`
	TenantShare int64                `json:"tenant_share"`
	Shares      []model.RevenueShare `json:"shares"`
}

// TenantRevenueReport は期間内の取り分を合計する
func (u *PaymentUsecase) TenantRevenueReport(ctx context.Context, tenantID int64, from, to *time.Time) (TenantRevenue, error) {
	const op = "payment.tenant_revenue"
	if tenantID <= 0 {
		return TenantRevenue{}, apperr.New(apperr.KindValidation, op, "tenant_id must be positive")
	}
	if from != nil && to != nil && from.After(*to) {
		return TenantRevenue{}, apperr.New(apperr.KindValidation, op, "from must not be after to")
	}
	shares, err := u.shares.ListByTenant(ctx, tenantID, from, to)
	if err != nil {
		return TenantRevenue{}, storageErr(op, err)
	}
	out := TenantRevenue{TenantID: tenantID, Shares: shares}
	for _, s := range shares {
		out.GrossAmount += s.GrossAmount
		out.TenantShare += s.TenantShare
	}
	return out, nil
}
