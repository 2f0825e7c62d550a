package invalidation

import (
	"context"
	"strings"
	"sync"
	"time"
)

// 画面側のキャッシュキー。変更があったキーを通知して再取得させる。
const (
	KeyProducts           = "products"
	KeyCafeTables         = "cafeTables"
	KeyActiveCafeTables   = "activeCafeTables"
	KeyOrdersWithProfiles = "ordersWithProfiles"
	KeyProfiles           = "profiles"

	prefixMyOrders     = "myOrders:"
	prefixOrderDetails = "orderDetails:"
)

func MyOrders(userID string) string { return prefixMyOrders + userID }

// 注文明細のキーは持ち主込み（orderDetails:<owner>:<order>）
func OrderDetails(ownerID, orderID string) string {
	return prefixOrderDetails + ownerID + ":" + orderID
}

// Visibleはユーザーに送ってよいキーかどうか。
// 管理者はすべて、それ以外は他人のmyOrders/orderDetailsを受け取らない。
func Visible(key, userID string, admin bool) bool {
	if admin {
		return true
	}
	if owner, ok := strings.CutPrefix(key, prefixMyOrders); ok {
		return owner == userID
	}
	if rest, ok := strings.CutPrefix(key, prefixOrderDetails); ok {
		owner, _, found := strings.Cut(rest, ":")
		return found && owner == userID
	}
	return true
}

type Event struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, keys ...string)
}

type Bus interface {
	Publisher
	Subscribe() *Subscription
}

const defaultSubscriberBuffer = 32

// プロセス内の購読者へ配る
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[uint64]chan Event),
		buffer: defaultSubscriberBuffer,
	}
}

// 詰まっている購読者には送らない（取りこぼしは次の通知で再取得される）
func (h *Hub) Publish(_ context.Context, keys ...string) {
	now := time.Now()
	for _, k := range keys {
		h.deliver(Event{Key: k, At: now})
	}
}

func (h *Hub) deliver(ev Event) {
	if strings.TrimSpace(ev.Key) == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch
	return &Subscription{hub: h, id: id, ch: ch}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan Event
	once sync.Once
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}

// 何もしない（テストや通知不要な場面用）
type Nop struct{}

func (Nop) Publish(context.Context, ...string) {}
