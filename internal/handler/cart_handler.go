package handler

import (
	"net/http"

	"cafe/internal/usecase"
	"cafe/internal/validator"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP（カートはサーバー側のSessionにある）
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"product_id"`
}

type SelectTableRequest struct {
	TableID string `json:"table_id"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, authed ...echo.MiddlewareFunc) {
	g := e.Group("/cart", authed...)

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.POST("/items/:productId/decrease", h.decreaseItem)
	g.DELETE("/items/:productId", h.removeItem)
	g.PUT("/table", h.selectTable)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, h.uc.View(sess))
}

func (h *CartHandler) addItem(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID != "" && validator.ValidateID(req.ProductID) != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, err := h.uc.Add(c.Request().Context(), sess, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) decreaseItem(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, h.uc.Decrease(sess, c.Param("productId")))
}

func (h *CartHandler) removeItem(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, h.uc.Remove(sess, c.Param("productId")))
}

// table_idが空なら選択解除
func (h *CartHandler) selectTable(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return unauthorized(c)
	}

	var req SelectTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.TableID != "" && validator.ValidateID(req.TableID) != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid table_id"})
	}

	out, err := h.uc.SelectTable(c.Request().Context(), sess, req.TableID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
