package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversOnlyToTopic(t *testing.T) {
	h := NewHub(4)
	tenant := h.Subscribe(TenantTopic(1))
	other := h.Subscribe(TenantTopic(2))
	defer tenant.Close()
	defer other.Close()

	n := h.Publish(TenantTopic(1), Event{Type: TypeOrderSubmitted, OrderID: 10})
	assert.Equal(t, 1, n)

	ev := <-tenant.C
	assert.Equal(t, "tenant:1", ev.Topic)
	assert.Equal(t, int64(10), ev.OrderID)
	assert.Len(t, other.C, 0)
}

func TestHub_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	h := NewHub(2)
	slow := h.Subscribe(DisplayTopic)
	fast := h.Subscribe(DisplayTopic)
	defer slow.Close()
	defer fast.Close()

	var got []int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range fast.C {
			got = append(got, ev.OrderID)
			if len(got) == 5 {
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		for i := int64(1); i <= 5; i++ {
			h.Publish(DisplayTopic, Event{Type: TypeOrderTransition, OrderID: i})
			time.Sleep(2 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	wg.Wait()

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	assert.Equal(t, int64(3), slow.Dropped())
	assert.Len(t, slow.C, 2)
}

func TestHub_PreservesPublishOrder(t *testing.T) {
	h := NewHub(16)
	s := h.Subscribe(TenantTopic(3))
	defer s.Close()

	types := []string{TypeOrderSubmitted, TypeQRIssued, TypeQRRedeemed, TypePaymentRecorded, TypePaymentSettled}
	for _, typ := range types {
		h.Publish(TenantTopic(3), Event{Type: typ, OrderID: 1})
	}

	for _, want := range types {
		ev := <-s.C
		assert.Equal(t, want, ev.Type)
	}
}

func TestHub_SubscribeAllSeesEveryTopic(t *testing.T) {
	h := NewHub(8)
	all := h.SubscribeAll()
	defer all.Close()

	h.Publish(TenantTopic(1), Event{Type: TypeOrderSubmitted})
	h.Publish(DisplayTopic, Event{Type: TypeOrderSubmitted})
	h.Publish(CounterTopic(4), Event{Type: TypeCounterAssigned})

	require.Len(t, all.C, 3)
	assert.Equal(t, "tenant:1", (<-all.C).Topic)
	assert.Equal(t, "display", (<-all.C).Topic)
	assert.Equal(t, "counter:4", (<-all.C).Topic)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub(1)
	s := h.Subscribe(DisplayTopic)
	assert.Equal(t, 1, h.Subscribers(DisplayTopic))

	s.Close()
	s.Close()

	_, ok := <-s.C
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers(DisplayTopic))
	assert.Equal(t, 0, h.Publish(DisplayTopic, Event{Type: TypeOrderSubmitted}))
}

func TestValidTopic(t *testing.T) {
	assert.True(t, ValidTopic("display"))
	assert.True(t, ValidTopic("tenant:12"))
	assert.True(t, ValidTopic("counter:3"))
	assert.False(t, ValidTopic("tenant:"))
	assert.False(t, ValidTopic("tenant:-1"))
	assert.False(t, ValidTopic("kitchen"))
}
