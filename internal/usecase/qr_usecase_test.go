package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRUsecase_ConcurrentRedeemSucceedsOnce(t *testing.T) {
	e := newTestEnv(t)
	o := e.submitSample(t, 1)
	tok, err := e.qr.Issue(context.Background(), o.ID)
	require.NoError(t, err)

	const n = 10
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = e.qr.Redeem(context.Background(), tok.Token)
		}(i)
	}
	close(start)
	wg.Wait()

	success, consumed := 0, 0
	for _, err := range errs {
		switch apperr.KindOf(err) {
		case "":
			require.NoError(t, err)
			success++
		case apperr.KindAlreadyConsumed:
			consumed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, consumed)
}

func TestQRUsecase_ExpiryBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		kind    apperr.Kind
	}{
		{name: "119 minutes", elapsed: 119 * time.Minute},
		{name: "exactly 120 minutes", elapsed: 120 * time.Minute},
		{name: "121 minutes", elapsed: 121 * time.Minute, kind: apperr.KindExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			ctx := context.Background()
			o := e.submitSample(t, 1)
			tok, err := e.qr.Issue(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, 120*time.Minute, tok.ExpiresAt.Sub(tok.IssuedAt))

			e.clock.Advance(tc.elapsed)
			got, err := e.qr.Redeem(ctx, tok.Token)
			if tc.kind == "" {
				require.NoError(t, err)
				assert.Equal(t, o.ID, got.ID)
				return
			}
			requireKind(t, err, tc.kind)
		})
	}
}

func TestQRUsecase_ExpiryFixedAtIssuance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.submitSample(t, 1)
	tok, err := e.qr.Issue(ctx, o.ID)
	require.NoError(t, err)

	_, err = e.settings.Update(ctx, 1, model.SettingQRExpiryMinutes, "5")
	require.NoError(t, err)

	e.clock.Advance(60 * time.Minute)
	_, err = e.qr.Redeem(ctx, tok.Token)
	assert.NoError(t, err)
}

func TestQRUsecase_OneLiveTokenPerOrder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.submitSample(t, 1)

	first, err := e.qr.Issue(ctx, o.ID)
	require.NoError(t, err)
	_, err = e.qr.Issue(ctx, o.ID)
	requireKind(t, err, apperr.KindState)

	// 期限切れなら差し替えられる
	e.clock.Advance(121 * time.Minute)
	second, err := e.qr.Issue(ctx, o.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = e.qr.Redeem(ctx, first.Token)
	requireKind(t, err, apperr.KindExpired)
	_, err = e.qr.Redeem(ctx, second.Token)
	require.NoError(t, err)

	// ゲート通過後は再発行しない
	_, err = e.qr.Issue(ctx, o.ID)
	requireKind(t, err, apperr.KindState)
}

func TestQRUsecase_RedeemErrors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.qr.Redeem(ctx, "no-such-token")
	requireKind(t, err, apperr.KindNotFound)

	_, err = e.qr.Redeem(ctx, "  ")
	requireKind(t, err, apperr.KindValidation)

	o := e.submitSample(t, 1)
	tok, err := e.qr.Issue(ctx, o.ID)
	require.NoError(t, err)
	_, err = e.orders.Transition(ctx, 0, o.ID, model.EventCancel)
	require.NoError(t, err)
	_, err = e.qr.Redeem(ctx, tok.Token)
	requireKind(t, err, apperr.KindState)
}

func TestQRUsecase_IssueForTerminalOrder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	o := e.submitSample(t, 1)
	_, err := e.orders.Transition(ctx, 0, o.ID, model.EventCancel)
	require.NoError(t, err)

	_, err = e.qr.Issue(ctx, o.ID)
	requireKind(t, err, apperr.KindState)

	_, err = e.qr.Issue(ctx, 12345)
	requireKind(t, err, apperr.KindNotFound)
}
