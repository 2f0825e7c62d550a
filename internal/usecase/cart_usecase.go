package usecase

import (
	"context"
	"errors"
	"strings"

	repo "cafe/internal/repository"
	"cafe/internal/session"

	"github.com/shopspring/decimal"
)

// CartUsecaseはセッション内のカートと席を操作する（DBには書かない）
type CartUsecase struct {
	products repo.ProductRepository
	tables   repo.TableRepository
}

func NewCartUsecase(products repo.ProductRepository, tables repo.TableRepository) *CartUsecase {
	return &CartUsecase{products: products, tables: tables}
}

// priceは追加時点の価格
type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
	Table string             `json:"table"`
}

func (u *CartUsecase) View(sess *session.Session) CartResponse {
	items, total := sess.Cart()
	out := CartResponse{
		Items: make([]CartItemResponse, 0, len(items)),
		Total: total,
		Table: sess.SelectedTable(),
	}
	for _, it := range items {
		out.Items = append(out.Items, CartItemResponse{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	return out
}

// 公開中の商品だけ追加できる
func (u *CartUsecase) Add(ctx context.Context, sess *session.Session, productID string) (CartResponse, error) {
	if strings.TrimSpace(productID) == "" {
		return CartResponse{}, newError(ErrValidation, "product_id required")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, newError(ErrNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, wrapError(ErrCatalogFetch, "could not load product", err)
	}
	if !p.IsAvailable {
		return CartResponse{}, newError(ErrValidation, "product is not available")
	}
	sess.AddToCart(p)
	return u.View(sess), nil
}

func (u *CartUsecase) Decrease(sess *session.Session, productID string) CartResponse {
	sess.DecreaseItem(productID)
	return u.View(sess)
}

func (u *CartUsecase) Remove(sess *session.Session, productID string) CartResponse {
	sess.RemoveItem(productID)
	return u.View(sess)
}

// 有効な席を選ぶ。table_idが空なら未選択に戻す。
func (u *CartUsecase) SelectTable(ctx context.Context, sess *session.Session, tableID string) (CartResponse, error) {
	tableID = strings.TrimSpace(tableID)
	if tableID == "" {
		sess.SelectTable("")
		return u.View(sess), nil
	}
	t, err := u.tables.FindActiveByID(ctx, tableID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, newError(ErrNotFound, "table not found")
	}
	if err != nil {
		return CartResponse{}, wrapError(ErrCatalogFetch, "could not load table", err)
	}
	sess.SelectTable(t.Name)
	return u.View(sess), nil
}

