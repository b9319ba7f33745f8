package usecase_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/infra/db"
	infraRepo "foodcourt/internal/infra/repository"
	"foodcourt/internal/lock"
	"foodcourt/internal/notify"
	"foodcourt/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

type testEnv struct {
	db       *gorm.DB
	clock    *fakeClock
	hub      *notify.Hub
	settings *usecase.SettingsStore
	splitter *usecase.SplitUsecase
	orders   *usecase.OrderUsecase
	qr       *usecase.QRUsecase
	counters *usecase.CounterUsecase
	payments *usecase.PaymentUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	g, err := db.OpenSQLite(filepath.Join(t.TempDir(), "foodcourt.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))
	t.Cleanup(func() {
		if sqlDB, err := g.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clock := newFakeClock()
	hub := notify.NewHub(256)
	locks := lock.New(5 * time.Second)
	ids := uuidGenerator{}
	tx := infraRepo.NewTxManagerGorm(g)

	orderRepo := infraRepo.NewOrderGormRepository(g)
	settings := usecase.NewSettingsStore(infraRepo.NewSettingGormRepository(g), infraRepo.NewAuditLogGormRepository(g), clock)
	require.NoError(t, settings.Seed(context.Background()))
	splitter := usecase.NewSplitUsecase(settings)

	return &testEnv{
		db:       g,
		clock:    clock,
		hub:      hub,
		settings: settings,
		splitter: splitter,
		orders:   usecase.NewOrderUsecase(tx, orderRepo, infraRepo.NewOrderItemGormRepository(g), locks, hub, clock, ids),
		qr:       usecase.NewQRUsecase(tx, infraRepo.NewQRTokenGormRepository(g), settings, locks, hub, clock, ids),
		counters: usecase.NewCounterUsecase(tx, infraRepo.NewCounterGormRepository(g), infraRepo.NewCashierSessionGormRepository(g), locks, hub, clock),
		payments: usecase.NewPaymentUsecase(
			tx, orderRepo, infraRepo.NewPaymentGormRepository(g), infraRepo.NewRevenueShareGormRepository(g),
			settings, splitter, locks, hub, clock,
		),
	}
}

// 2 x 25000 + 1 x 35000 = 85000
func (e *testEnv) submitSample(t *testing.T, tenantID int64) model.Order {
	t.Helper()
	o, err := e.orders.Submit(context.Background(), usecase.SubmitOrderInput{
		TenantID:  tenantID,
		TableCode: "A12",
		Items: []usecase.SubmitOrderItem{
			{MenuItemName: "Nasi Goreng", Quantity: 2, UnitPrice: 25000},
			{MenuItemName: "Es Teh Jumbo", Quantity: 1, UnitPrice: 35000},
		},
	})
	require.NoError(t, err)
	return o
}

// QRゲートを通過済みの注文
func (e *testEnv) redeemedOrder(t *testing.T, tenantID int64) model.Order {
	t.Helper()
	ctx := context.Background()
	o := e.submitSample(t, tenantID)
	tok, err := e.qr.Issue(ctx, o.ID)
	require.NoError(t, err)
	_, err = e.qr.Redeem(ctx, tok.Token)
	require.NoError(t, err)
	return o
}

func (e *testEnv) counterAt(t *testing.T, code string, maxKasir int) model.CheckoutCounter {
	t.Helper()
	c, err := e.counters.Create(context.Background(), usecase.CreateCounterInput{Code: code, Name: "Counter " + code, MaxKasir: maxKasir})
	require.NoError(t, err)
	return c
}

// 支払い記録までを済ませる
func (e *testEnv) pendingPayment(t *testing.T, o model.Order, cashierID int64, ref string) model.Payment {
	t.Helper()
	ctx := context.Background()
	c := e.counterAt(t, "C-"+ref, 3)
	_, err := e.counters.Assign(ctx, c.ID, cashierID)
	require.NoError(t, err)
	p, err := e.payments.Record(ctx, usecase.RecordPaymentInput{
		OrderID:              o.ID,
		CounterID:            c.ID,
		CashierID:            cashierID,
		AmountPaid:           o.TotalAmount,
		Method:               model.PaymentMethodCash,
		TransactionReference: ref,
	})
	require.NoError(t, err)
	return p
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "err=%v", err)
}

func drain(sub *notify.Subscription) []notify.Event {
	var out []notify.Event
	for {
		select {
		case ev := <-sub.C:
			out = append(out, ev)
		default:
			return out
		}
	}
}
