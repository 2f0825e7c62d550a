package usecase

import (
	"context"

	"cafe/internal/domain/model"
	"cafe/internal/logging"
	repo "cafe/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 客向けのメニュー（公開商品と有効な席）
type CatalogUsecase struct {
	products repo.ProductRepository
	tables   repo.TableRepository
}

func NewCatalogUsecase(products repo.ProductRepository, tables repo.TableRepository) *CatalogUsecase {
	return &CatalogUsecase{products: products, tables: tables}
}

func (u *CatalogUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	ps, err := u.products.ListAvailable(ctx)
	if err != nil {
		return []model.Product{}, wrapError(ErrCatalogFetch, "could not load products", err)
	}
	return ps, nil
}

func (u *CatalogUsecase) ListTables(ctx context.Context) ([]model.CafeTable, error) {
	ts, err := u.tables.ListActive(ctx)
	if err != nil {
		return []model.CafeTable{}, wrapError(ErrCatalogFetch, "could not load tables", err)
	}
	return ts, nil
}

// 片方が失敗してももう片方は返す（エラーは項目ごと）
type MenuOutput struct {
	Products      []model.Product   `json:"products"`
	Tables        []model.CafeTable `json:"tables"`
	ProductsError string            `json:"products_error,omitempty"`
	TablesError   string            `json:"tables_error,omitempty"`
}

// 商品と席を並行で取得する。両方失敗した時だけエラー。
func (u *CatalogUsecase) Menu(ctx context.Context) (MenuOutput, error) {
	out := MenuOutput{Products: []model.Product{}, Tables: []model.CafeTable{}}
	var productsErr, tablesErr error

	var g errgroup.Group
	g.Go(func() error {
		ps, err := u.products.ListAvailable(ctx)
		if err != nil {
			productsErr = err
			return nil
		}
		out.Products = ps
		return nil
	})
	g.Go(func() error {
		ts, err := u.tables.ListActive(ctx)
		if err != nil {
			tablesErr = err
			return nil
		}
		out.Tables = ts
		return nil
	})
	_ = g.Wait()

	log := logging.FromContext(ctx)
	if productsErr != nil {
		out.ProductsError = "could not load products"
		log.Warn("menu products fetch failed", zap.Error(productsErr))
	}
	if tablesErr != nil {
		out.TablesError = "could not load tables"
		log.Warn("menu tables fetch failed", zap.Error(tablesErr))
	}
	if productsErr != nil && tablesErr != nil {
		return out, wrapError(ErrCatalogFetch, "could not load menu", productsErr)
	}
	return out, nil
}
