package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/notify"
	repo "foodcourt/internal/repository"
)

type CounterUsecase struct {
	tx       repo.TransactionManager
	counters repo.CounterRepository
	sessions repo.CashierSessionRepository
	locks    Locker
	pub      Publisher
	clock    Clock
}

func NewCounterUsecase(
	tx repo.TransactionManager,
	counters repo.CounterRepository,
	sessions repo.CashierSessionRepository,
	locks Locker,
	pub Publisher,
	clock Clock,
) *CounterUsecase {
	return &CounterUsecase{tx: tx, counters: counters, sessions: sessions, locks: locks, pub: pub, clock: clock}
}

type CreateCounterInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	MaxKasir int    `json:"max_kasir"`
}

func (u *CounterUsecase) Create(ctx context.Context, in CreateCounterInput) (model.CheckoutCounter, error) {
	const op = "counter.create"
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return model.CheckoutCounter{}, apperr.New(apperr.KindValidation, op, "code is required")
	}
	if in.MaxKasir <= 0 {
		return model.CheckoutCounter{}, apperr.New(apperr.KindValidation, op, "max_kasir must be positive")
	}

	now := u.clock.Now()
	c := model.CheckoutCounter{
		Code:      code,
		Name:      strings.TrimSpace(in.Name),
		MaxKasir:  in.MaxKasir,
		Occupancy: 0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.counters.Create(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.CheckoutCounter{}, apperr.New(apperr.KindValidation, op, "counter code already exists").With("code", code)
		}
		return model.CheckoutCounter{}, storageErr(op, err)
	}
	return c, nil
}

type CounterDetail struct {
	model.CheckoutCounter
	Sessions []model.CashierSession `json:"sessions"`
}

func (u *CounterUsecase) Get(ctx context.Context, counterID int64) (CounterDetail, error) {
	c, err := u.counters.FindByID(ctx, counterID)
	if err != nil {
		return CounterDetail{}, storageErr("counter.get", err)
	}
	ss, err := u.sessions.ListActiveByCounter(ctx, counterID)
	if err != nil {
		return CounterDetail{}, storageErr("counter.get", err)
	}
	return CounterDetail{CheckoutCounter: c, Sessions: ss}, nil
}

func (u *CounterUsecase) List(ctx context.Context) ([]model.CheckoutCounter, error) {
	cs, err := u.counters.List(ctx)
	if err != nil {
		return nil, storageErr("counter.list", err)
	}
	return cs, nil
}

// Assign はキャッシャーをカウンターに入れる。満員なら CapacityError。
func (u *CounterUsecase) Assign(ctx context.Context, counterID, cashierID int64) (model.CashierSession, error) {
	const op = "counter.assign"
	if cashierID <= 0 {
		return model.CashierSession{}, apperr.New(apperr.KindValidation, op, "cashier_id must be positive")
	}

	unlock, err := u.locks.Lock(ctx, counterKey(counterID))
	if err != nil {
		return model.CashierSession{}, err
	}
	defer unlock()

	now := u.clock.Now()
	slot := cashierID
	s := model.CashierSession{
		CounterID: counterID,
		CashierID: cashierID,
		LiveSlot:  &slot,
		StartedAt: now,
	}

	var counter model.CheckoutCounter
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Counters().FindByID(ctx, counterID)
		if err != nil {
			return err
		}

		active, err := r.Sessions().FindActiveByCashier(ctx, cashierID)
		if err == nil {
			return apperr.New(apperr.KindState, op, "cashier already has an active session").
				With("session_id", strconv.FormatInt(active.ID, 10)).
				With("counter_id", strconv.FormatInt(active.CounterID, 10))
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		ok, err := r.Counters().TryOccupy(ctx, counterID, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindCapacity, op, "counter is full").
				With("max_kasir", strconv.Itoa(c.MaxKasir))
		}

		if err := r.Sessions().Create(ctx, &s); err != nil {
			// 別カウンターで同じキャッシャーが先に入った
			if errors.Is(err, repo.ErrDuplicate) {
				return apperr.New(apperr.KindState, op, "cashier already has an active session")
			}
			return err
		}
		counter = c
		return nil
	})
	if err != nil {
		return model.CashierSession{}, storageErr(op, err)
	}

	u.pub.Publish(notify.CounterTopic(counterID), notify.Event{
		Type:      notify.TypeCounterAssigned,
		CounterID: counterID,
		Data: map[string]any{
			"session_id": s.ID,
			"cashier_id": cashierID,
			"occupancy":  counter.Occupancy + 1,
			"max_kasir":  counter.MaxKasir,
		},
		At: now,
	})
	return s, nil
}

func (u *CounterUsecase) Session(ctx context.Context, sessionID int64) (model.CashierSession, error) {
	s, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return model.CashierSession{}, storageErr("counter.session", err)
	}
	return s, nil
}

// Release はセッションを閉じて席を返す。2回目以降は何もしない。
func (u *CounterUsecase) Release(ctx context.Context, sessionID int64) (model.CashierSession, error) {
	const op = "counter.release"

	s, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return model.CashierSession{}, storageErr(op, err)
	}

	// session → counter の順
	unlock, err := u.locks.Lock(ctx, sessionKey(sessionID))
	if err != nil {
		return model.CashierSession{}, err
	}
	defer unlock()
	unlockCounter, err := u.locks.Lock(ctx, counterKey(s.CounterID))
	if err != nil {
		return model.CashierSession{}, err
	}
	defer unlockCounter()

	now := u.clock.Now()
	released := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Sessions().Release(ctx, sessionID, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		released = true
		return r.Counters().Vacate(ctx, s.CounterID, now)
	})
	if err != nil {
		return model.CashierSession{}, storageErr(op, err)
	}

	if released {
		u.pub.Publish(notify.CounterTopic(s.CounterID), notify.Event{
			Type:      notify.TypeCounterReleased,
			CounterID: s.CounterID,
			Data:      map[string]any{"session_id": sessionID, "cashier_id": s.CashierID},
			At:        now,
		})
	}

	out, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return model.CashierSession{}, storageErr(op, err)
	}
	return out, nil
}
