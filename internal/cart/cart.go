// Package cart はセッション内だけで持つカート（注文確定までは保存しない）。
package cart

import (
	"cafe/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 追加時点の商品スナップショット＋数量。
// 数量は常に1以上（0になる前に行ごと消す）。
type Item struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// 行の小計。
func (it Item) Subtotal() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cartは追加順を保つ。並行利用は想定しない（sessionがロックする）。
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Addは同じ商品なら+1、無ければ数量1で追加する。
func (c *Cart) Add(p model.Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// Decreaseは1減らす。1のときは行を消す。無ければ何もしない。
func (c *Cart) Decrease(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if c.items[i].Quantity > 1 {
		c.items[i].Quantity--
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// Removeは行ごと消す。
func (c *Cart) Remove(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// Totalは単価×数量の合計（丸めない）。
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Itemsはコピーを返す。
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshotは送信開始時点の独立したカートを返す。
// 元のカートを後から変更しても影響しない。
func (c *Cart) Snapshot() *Cart {
	return &Cart{items: c.Items()}
}
