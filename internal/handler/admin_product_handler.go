package handler

import (
	"net/http"

	"cafe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductRequestは作成・更新共通。priceは数値でも文字列でも受ける
type ProductRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url"`
	IsAvailable *bool            `json:"is_available"`
}

type TableCreateRequest struct {
	Name string `json:"name"`
}

// /admin/products と /admin/tables をまとめる
type AdminProductHandler struct {
	products *usecase.ProductUsecase
	tables   *usecase.TableUsecase
}

// DI
func NewAdminProductHandler(products *usecase.ProductUsecase, tables *usecase.TableUsecase) *AdminProductHandler {
	return &AdminProductHandler{products: products, tables: tables}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, admin ...echo.MiddlewareFunc) {
	g := e.Group("/admin", admin...)

	g.GET("/products", h.listProducts)
	g.POST("/products", h.createProduct)
	g.PUT("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.GET("/tables", h.listTables)
	g.POST("/tables", h.createTable)
	g.DELETE("/tables/:id", h.deleteTable)
}

func (req ProductRequest) input() usecase.ProductInput {
	in := usecase.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
	}
	if req.Price != nil {
		in.Price = req.Price.String()
	}
	return in
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	out, err := h.products.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.products.AdminCreate(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.products.AdminUpdate(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := h.products.AdminDelete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// 古い順
func (h *AdminProductHandler) listTables(c echo.Context) error {
	out, err := h.tables.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createTable(c echo.Context) error {
	var req TableCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.tables.AdminCreate(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) deleteTable(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := h.tables.AdminDelete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
