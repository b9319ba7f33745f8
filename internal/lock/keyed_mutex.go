// Package lock はエンティティ単位の直列化を提供する。
package lock

import (
	"context"
	"sync"
	"time"

	"foodcourt/internal/apperr"
)

type entry struct {
	ch   chan struct{} // 容量1。値が入っている間だけ保持中
	refs int
}

// KeyedMutex はキーごとの排他ロック。別キー同士は互いに待たない。
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxWait time.Duration
}

// maxWait は ctx に締め切りが無いときの上限。0 なら無制限。
func New(maxWait time.Duration) *KeyedMutex {
	return &KeyedMutex{entries: map[string]*entry{}, maxWait: maxWait}
}

func (k *KeyedMutex) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock はキーを取るまで待つ。返した unlock は1回だけ呼ぶこと。
// 締め切りを過ぎたら StorageUnavailable を返す。
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok && k.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.maxWait)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorageUnavailable, "lock", "gave up waiting for "+key, err)
	}

	e := k.acquire(key)
	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, apperr.Wrap(apperr.KindStorageUnavailable, "lock", "gave up waiting for "+key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

// Held は待機中を含めて参照されているキーの数（テスト用）
func (k *KeyedMutex) Held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
