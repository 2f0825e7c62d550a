package session

import (
	"context"
	"sync"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/logging"

	"go.uber.org/zap"
)

// ユーザーIDからロール判定結果を返す（失敗してもNotAdminを返す）
type RoleResolveFunc func(ctx context.Context, userID string) model.RoleState

// IDごとに1つのSession
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	resolve RoleResolveFunc
	timeout time.Duration
	now     func() time.Time
}

func NewStore(resolve RoleResolveFunc, resolveTimeout time.Duration) *Store {
	if resolveTimeout <= 0 {
		resolveTimeout = 5 * time.Second
	}
	return &Store{
		sessions: make(map[string]*Session),
		resolve:  resolve,
		timeout:  resolveTimeout,
		now:      time.Now,
	}
}

// 無ければ作ってロール判定を裏で始める
func (st *Store) Get(userID string) *Session {
	st.mu.Lock()
	s, ok := st.sessions[userID]
	if !ok {
		s = newSession(userID)
		st.sessions[userID] = s
	}
	st.mu.Unlock()
	s.touch(st.now())

	if !ok {
		st.startResolve(s, s.resetRole())
	}
	return s
}

// 既存のSessionだけ返す
func (st *Store) Lookup(userID string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	return s, ok
}

// サインアウト時。カートも捨てる。
func (st *Store) End(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// ロール変更後に再判定する（Sessionが無ければ何もしない）
func (st *Store) RefreshRole(userID string) {
	s, ok := st.Lookup(userID)
	if !ok {
		return
	}
	st.startResolve(s, s.resetRole())
}

// Sweepはidleより長く使われていないSessionを捨てる（送信中は残す）
func (st *Store) Sweep(idle time.Duration) int {
	before := st.now().Add(-idle)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.idleSince(before) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeperはctxが終わるまで定期的にSweepする。idle<=0なら何もしない。
func (st *Store) StartSweeper(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	log := logging.FromContext(ctx)
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := st.Sweep(idle); n > 0 {
					log.Info("idle sessions removed", zap.Int("count", n), zap.Int("remaining", st.Len()))
				}
			}
		}
	}()
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) startResolve(s *Session, gen int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), st.timeout)
		defer cancel()
		state := model.RoleStateNotAdmin
		if st.resolve != nil {
			state = st.resolve(ctx, s.userID)
		}
		s.setRole(state, gen)
	}()
}
