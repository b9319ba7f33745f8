// Package notify は注文イベントをトピック単位で購読者に配る。
//
// 配信はノンブロッキング。購読者のバッファが満杯ならその購読者分だけ捨て、
// Dropped の数を増やす。再送・リプレイはしない。
package notify

import (
	"sync"
	"sync/atomic"
)

type Subscription struct {
	C <-chan Event

	ch      chan Event
	hub     *Hub
	topic   string // 空なら全トピック
	dropped atomic.Int64
	once    sync.Once
}

// Dropped はバッファ満杯で捨てたイベント数
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

// Close は購読をやめて C を閉じる。何度呼んでもよい。
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	all    map[*Subscription]struct{}
	buf    int
}

func NewHub(buf int) *Hub {
	if buf <= 0 {
		buf = 1
	}
	return &Hub{
		topics: map[string]map[*Subscription]struct{}{},
		all:    map[*Subscription]struct{}{},
		buf:    buf,
	}
}

func (h *Hub) newSub(topic string) *Subscription {
	ch := make(chan Event, h.buf)
	return &Subscription{C: ch, ch: ch, hub: h, topic: topic}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	s := h.newSub(topic)
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.topics[topic]
	if !ok {
		set = map[*Subscription]struct{}{}
		h.topics[topic] = set
	}
	set[s] = struct{}{}
	return s
}

// SubscribeAll は全トピックを受け取る（ブローカー中継用）
func (h *Hub) SubscribeAll() *Subscription {
	s := h.newSub("")
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[s] = struct{}{}
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.topic == "" {
		delete(h.all, s)
	} else if set, ok := h.topics[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.topics, s.topic)
		}
	}
	close(s.ch)
}

// Publish は topic の購読者に ev を配り、届いた数を返す。
// 遅い購読者がいても待たない。
func (h *Hub) Publish(topic string, ev Event) int {
	ev.Topic = topic

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.topics[topic] {
		if deliver(s, ev) {
			delivered++
		}
	}
	for s := range h.all {
		if deliver(s, ev) {
			delivered++
		}
	}
	return delivered
}

func deliver(s *Subscription, ev Event) bool {
	select {
	case s.ch <- ev:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Subscribers はトピックの購読者数（全トピック購読は含めない）
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
