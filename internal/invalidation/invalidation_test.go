package invalidation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestHub_PublishToAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer a.Close()
	defer b.Close()

	h.Publish(context.Background(), KeyOrdersWithProfiles, MyOrders("u1"))

	assert.Equal(t, KeyOrdersWithProfiles, recv(t, a).Key)
	assert.Equal(t, "myOrders:u1", recv(t, a).Key)
	assert.Equal(t, KeyOrdersWithProfiles, recv(t, b).Key)
}

func TestHub_CloseUnsubscribes(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Subscribers())

	h.Publish(context.Background(), KeyProducts)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultSubscriberBuffer*3; i++ {
			h.Publish(context.Background(), KeyProducts)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
	assert.Len(t, s.Events(), defaultSubscriberBuffer)
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(MyOrders("u1"), "u1", false))
	assert.False(t, Visible(MyOrders("u2"), "u1", false))
	assert.True(t, Visible(OrderDetails("u1", "o1"), "u1", false))
	assert.False(t, Visible(OrderDetails("u2", "o1"), "u1", false))
	assert.False(t, Visible("orderDetails:o1", "u1", false))
	assert.True(t, Visible(KeyProducts, "u1", false))

	// 管理者は全注文の明細を見る
	assert.True(t, Visible(OrderDetails("u2", "o1"), "admin", true))
	assert.True(t, Visible(MyOrders("u2"), "admin", true))
}

func TestRedisBus_HandleMessage(t *testing.T) {
	b := NewRedisBus(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "", nil)
	s := b.Subscribe()
	defer s.Close()

	b.handleMessage(`{"key":"orderDetails:u1:o1","at":"2026-01-01T00:00:00Z"}`)
	assert.Equal(t, OrderDetails("u1", "o1"), recv(t, s).Key)

	// 壊れたメッセージは捨てる
	b.handleMessage(`not json`)
	assert.Len(t, s.Events(), 0)
}

func TestRedisBus_FallsBackToLocalWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	b := NewRedisBus(client, "test", nil)
	s := b.Subscribe()
	defer s.Close()

	b.Publish(context.Background(), KeyProfiles)

	ev := recv(t, s)
	require.Equal(t, KeyProfiles, ev.Key)
}

func TestRedisBus_PublishBeforeSubscribedDeliversLocally(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	b := NewRedisBus(client, "test", nil)
	s := b.Subscribe()
	defer s.Close()

	// Redisへの送信は成功するが、まだ誰も購読していない
	b.Publish(context.Background(), KeyProducts)

	assert.Equal(t, KeyProducts, recv(t, s).Key)
	assert.False(t, b.Subscribed())
}

func TestRedisBus_RunResubscribesAfterRedisComesBack(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	b := NewRedisBus(client, "test", nil)
	b.retryMin = 10 * time.Millisecond
	b.retryMax = 50 * time.Millisecond

	s := b.Subscribe()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// 接続できなくても終わらない
	select {
	case err := <-done:
		t.Fatalf("Run returned while redis was down: %v", err)
	case <-time.After(150 * time.Millisecond):
	}
	assert.False(t, b.Subscribed())

	require.NoError(t, mr.Restart())
	require.Eventually(t, b.Subscribed, 3*time.Second, 10*time.Millisecond)

	// 購読中はRedis経由で1回だけ届く
	b.Publish(context.Background(), KeyCafeTables)
	assert.Equal(t, KeyCafeTables, recv(t, s).Key)
	select {
	case ev := <-s.Events():
		t.Fatalf("duplicate event: %s", ev.Key)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
