package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/notify"
	repo "foodcourt/internal/repository"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// イベントの配信先（notify.Hub）
type Publisher interface {
	Publish(topic string, ev notify.Event) int
}

// エンティティ単位のロック（lock.KeyedMutex）
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func orderKey(id int64) string   { return "order:" + strconv.FormatInt(id, 10) }
func counterKey(id int64) string { return "counter:" + strconv.FormatInt(id, 10) }
func sessionKey(id int64) string { return "session:" + strconv.FormatInt(id, 10) }
func qrKey(token string) string  { return "qr:" + token }

// storageErr は repository のエラーを apperr に寄せる。
// apperr はそのまま通す。
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, op, "not found", err)
	case errors.Is(err, repo.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, op, "modified concurrently", err)
	case errors.Is(err, repo.ErrDuplicate):
		return apperr.Wrap(apperr.KindConflict, op, "already exists", err)
	default:
		return apperr.Wrap(apperr.KindStorageUnavailable, op, "storage unavailable", err)
	}
}

func orderEvent(typ string, o model.Order, at time.Time) notify.Event {
	return notify.Event{
		Type:          typ,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		TenantID:      o.TenantID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		At:            at,
	}
}

// publishOrder は注文ロックを持ったまま呼ぶ。
// テナントと表示板、counterID があればカウンターにも同じイベントを出す。
func publishOrder(p Publisher, ev notify.Event, counterID int64) {
	p.Publish(notify.TenantTopic(ev.TenantID), ev)
	p.Publish(notify.DisplayTopic, ev)
	if counterID > 0 {
		ev.CounterID = counterID
		p.Publish(notify.CounterTopic(counterID), ev)
	}
}
