package handler

import (
	"net/http"

	"cafe/internal/logging"
	"cafe/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("request failed", zap.Int("status", he.Status), zap.Error(err))
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	logging.FromContext(c.Request().Context()).Error("unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /products, /tables, /menu
type ProductHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewProductHandler(uc *usecase.CatalogUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 一覧は公開、/menuはサインイン後
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, authed ...echo.MiddlewareFunc) {
	e.GET("/products", h.listProducts)
	e.GET("/tables", h.listTables)
	e.GET("/menu", h.menu, authed...)
}

func (h *ProductHandler) listProducts(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) listTables(c echo.Context) error {
	out, err := h.uc.ListTables(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 片方だけ失敗した時は200でエラー項目つき
func (h *ProductHandler) menu(c echo.Context) error {
	out, err := h.uc.Menu(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
