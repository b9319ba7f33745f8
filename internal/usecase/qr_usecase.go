package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/notify"
	repo "foodcourt/internal/repository"
)

type QRUsecase struct {
	tx       repo.TransactionManager
	tokens   repo.QRTokenRepository
	settings *SettingsStore
	locks    Locker
	pub      Publisher
	clock    Clock
	ids      IDGenerator
}

func NewQRUsecase(
	tx repo.TransactionManager,
	tokens repo.QRTokenRepository,
	settings *SettingsStore,
	locks Locker,
	pub Publisher,
	clock Clock,
	ids IDGenerator,
) *QRUsecase {
	return &QRUsecase{tx: tx, tokens: tokens, settings: settings, locks: locks, pub: pub, clock: clock, ids: ids}
}

// Issue は注文にQRトークンを1枚発行する。
// 有効期限は発行時点の QR_EXPIRY_MINUTES で決まり、あとから設定を変えても変わらない。
func (u *QRUsecase) Issue(ctx context.Context, orderID int64) (model.QRToken, error) {
	const op = "qr.issue"

	// 設定はTxの外で読む
	minutes, err := u.settings.Int(ctx, model.SettingQRExpiryMinutes)
	if err != nil {
		return model.QRToken{}, err
	}
	if minutes <= 0 {
		return model.QRToken{}, apperr.New(apperr.KindConfig, op, "QR_EXPIRY_MINUTES must be positive")
	}

	unlock, err := u.locks.Lock(ctx, orderKey(orderID))
	if err != nil {
		return model.QRToken{}, err
	}
	defer unlock()

	now := u.clock.Now()
	var order model.Order
	tok := model.QRToken{
		OrderID:   orderID,
		Token:     strings.ReplaceAll(u.ids.NewID(), "-", ""),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Duration(minutes) * time.Minute),
		CreatedAt: now,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.IsTerminal() {
			return apperr.Newf(apperr.KindState, op, "cannot issue QR token for order in status %s", o.Status).
				With("status", string(o.Status))
		}
		scanned, err := r.QRTokens().HasScanned(ctx, orderID)
		if err != nil {
			return err
		}
		if scanned {
			return apperr.New(apperr.KindState, op, "order has already passed the QR gate")
		}

		live, err := r.QRTokens().FindLiveByOrderID(ctx, orderID)
		switch {
		case err == nil && live.Live(now):
			return apperr.New(apperr.KindState, op, "order already has a live QR token").
				With("expires_at", live.ExpiresAt.UTC().Format(time.RFC3339))
		case err == nil:
			// 期限切れのトークンは枠を空けて差し替える
			if err := r.QRTokens().ClearLiveSlot(ctx, live.ID); err != nil {
				return err
			}
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		slot := orderID
		tok.LiveSlot = &slot
		if err := r.QRTokens().Create(ctx, &tok); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return model.QRToken{}, storageErr(op, err)
	}

	ev := orderEvent(notify.TypeQRIssued, order, now)
	ev.Data = map[string]any{"expires_at": tok.ExpiresAt}
	publishOrder(u.pub, ev, 0)
	return tok, nil
}

// Redeem はトークンを1回だけ使う。同時に来ても成功は1つだけ。
func (u *QRUsecase) Redeem(ctx context.Context, token string) (model.Order, error) {
	const op = "qr.redeem"
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Order{}, apperr.New(apperr.KindValidation, op, "token is required")
	}

	unlock, err := u.locks.Lock(ctx, qrKey(token))
	if err != nil {
		return model.Order{}, err
	}
	defer unlock()

	found, err := u.tokens.FindByToken(ctx, token)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, apperr.New(apperr.KindNotFound, op, "unknown QR token")
	}
	if err != nil {
		return model.Order{}, storageErr(op, err)
	}
	// 注文側のイベント順を崩さないよう注文ロックも取る（qr → order の順）
	unlockOrder, err := u.locks.Lock(ctx, orderKey(found.OrderID))
	if err != nil {
		return model.Order{}, err
	}
	defer unlockOrder()

	now := u.clock.Now()
	var order model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.QRTokens().FindByToken(ctx, token)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, op, "unknown QR token")
		}
		if err != nil {
			return err
		}
		if t.Consumed() {
			return apperr.New(apperr.KindAlreadyConsumed, op, "QR token was already used").
				With("scanned_at", t.ScannedAt.UTC().Format(time.RFC3339))
		}
		if t.Expired(now) {
			return apperr.New(apperr.KindExpired, op, "QR token has expired").
				With("expires_at", t.ExpiresAt.UTC().Format(time.RFC3339))
		}

		o, err := r.Orders().FindByID(ctx, t.OrderID)
		if err != nil {
			return err
		}
		if o.IsTerminal() {
			return apperr.Newf(apperr.KindState, op, "order is %s", o.Status).With("status", string(o.Status))
		}

		ok, err := r.QRTokens().MarkScanned(ctx, t.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindAlreadyConsumed, op, "QR token was already used")
		}
		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, storageErr(op, err)
	}

	publishOrder(u.pub, orderEvent(notify.TypeQRRedeemed, order, now), 0)
	return order, nil
}
