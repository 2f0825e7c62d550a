package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"
	repo "cafe/internal/repository"

	"github.com/shopspring/decimal"
)

// 管理者の商品管理
type ProductUsecase struct {
	productRepo repo.ProductRepository
	bus         invalidation.Publisher
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, bus invalidation.Publisher) *ProductUsecase {
	if bus == nil {
		bus = invalidation.Nop{}
	}
	return &ProductUsecase{productRepo: productRepo, bus: bus}
}

// 作成・更新の入力。priceは文字列で受ける（小数の誤差を避ける）
type ProductInput struct {
	Name        string
	Description *string
	Price       string
	Category    *string
	ImageURL    *string
	IsAvailable *bool
}

func (u *ProductUsecase) AdminList(ctx context.Context) ([]model.Product, error) {
	ps, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return []model.Product{}, wrapError(ErrInternal, "db error", err)
	}
	return ps, nil
}

func (u *ProductUsecase) AdminCreate(ctx context.Context, in ProductInput) (model.Product, error) {
	p, err := toProduct(in)
	if err != nil {
		return model.Product{}, err
	}
	p.CreatedAt = time.Now()

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, wrapError(ErrInternal, "db error", err)
	}
	u.bus.Publish(ctx, invalidation.KeyProducts)
	return created, nil
}

func (u *ProductUsecase) AdminUpdate(ctx context.Context, productID string, in ProductInput) (model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return model.Product{}, newError(ErrValidation, "invalid product id")
	}
	p, err := toProduct(in)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = productID

	if err := u.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, newError(ErrNotFound, "not found")
		}
		return model.Product{}, wrapError(ErrInternal, "db error", err)
	}
	u.bus.Publish(ctx, invalidation.KeyProducts)

	updated, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return p, nil
	}
	return updated, nil
}

// 物理削除。過去の注文明細は単価を持っているので影響しない。
func (u *ProductUsecase) AdminDelete(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return newError(ErrValidation, "invalid product id")
	}
	if err := u.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		return wrapError(ErrInternal, "db error", err)
	}
	u.bus.Publish(ctx, invalidation.KeyProducts)
	return nil
}

// 入力チェック（name必須、price>=0）
func toProduct(in ProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, newError(ErrValidation, "name required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return model.Product{}, newError(ErrValidation, "invalid price")
	}
	if price.IsNegative() {
		return model.Product{}, newError(ErrValidation, "price must be >= 0")
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	return model.Product{
		Name:        name,
		Description: trimOptional(in.Description),
		Price:       price.Round(2),
		Category:    trimOptional(in.Category),
		ImageURL:    trimOptional(in.ImageURL),
		IsAvailable: available,
	}, nil
}

// 空文字はnull
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
