package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"cafe/internal/cart"
	"cafe/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 送信中にもう一度送信しようとした
var ErrSubmissionInProgress = errors.New("submission in progress")

// 客1人分の画面状態（カート・選択中の席・ロール判定）。DBには保存しない。
type Session struct {
	userID string

	mu         sync.Mutex
	cart       *cart.Cart
	table      string
	submitting bool
	lastSeen   time.Time

	roleMu    sync.Mutex
	role      model.RoleState
	roleGen   int
	roleReady chan struct{}
}

func newSession(userID string) *Session {
	return &Session{
		userID:    userID,
		cart:      cart.New(),
		roleReady: make(chan struct{}),
	}
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// 送信中でなく、before より前から使われていない
func (s *Session) idleSince(before time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.submitting && s.lastSeen.Before(before)
}

func (s *Session) AddToCart(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(p)
}

func (s *Session) DecreaseItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Decrease(productID)
}

func (s *Session) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
}

// カートの中身（コピー）と合計
func (s *Session) Cart() ([]cart.Item, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items(), s.cart.Total()
}

// 席名を選ぶ。空文字で未選択に戻す。
func (s *Session) SelectTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = name
}

func (s *Session) SelectedTable() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// 送信開始時点のカートと席
type Submission struct {
	Cart  *cart.Cart
	Table string

	s    *Session
	once sync.Once
}

// BeginSubmitは送信中フラグを立ててスナップショットを返す。
// 送信中ならErrSubmissionInProgress。
func (s *Session) BeginSubmit() (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return nil, ErrSubmissionInProgress
	}
	s.submitting = true
	return &Submission{Cart: s.cart.Snapshot(), Table: s.table, s: s}, nil
}

// 成功ならカートと席を空にする。失敗ならそのまま。
// 何度呼んでも1回だけ効く。
func (sub *Submission) Finish(success bool) {
	sub.once.Do(func() {
		s := sub.s
		s.mu.Lock()
		defer s.mu.Unlock()
		if success {
			s.cart.Clear()
			s.table = ""
		}
		s.submitting = false
	})
}

// 判定中ならRoleStateUnresolved
func (s *Session) RoleState() model.RoleState {
	s.roleMu.Lock()
	defer s.roleMu.Unlock()
	return s.role
}

// 判定が終わるまで待つ
func (s *Session) AwaitRole(ctx context.Context) (model.RoleState, error) {
	s.roleMu.Lock()
	ready := s.roleReady
	s.roleMu.Unlock()

	select {
	case <-ready:
		return s.RoleState(), nil
	case <-ctx.Done():
		return model.RoleStateUnresolved, ctx.Err()
	}
}

// 判定結果を入れる。genが古い結果は捨てる。
func (s *Session) setRole(state model.RoleState, gen int) {
	if state == model.RoleStateUnresolved {
		state = model.RoleStateNotAdmin
	}
	s.roleMu.Lock()
	defer s.roleMu.Unlock()
	if gen != s.roleGen {
		return
	}
	s.role = state
	select {
	case <-s.roleReady:
	default:
		close(s.roleReady)
	}
}

// 判定をやり直す。待っている人は新しい結果を待つ。
func (s *Session) resetRole() int {
	s.roleMu.Lock()
	defer s.roleMu.Unlock()
	select {
	case <-s.roleReady:
		s.roleReady = make(chan struct{})
	default:
	}
	s.role = model.RoleStateUnresolved
	s.roleGen++
	return s.roleGen
}
