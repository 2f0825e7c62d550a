package handler

import (
	"net/http"

	"cafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, authed ...echo.MiddlewareFunc) {
	g := e.Group("/orders", authed...)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id/items", h.items)
}

// カートと選択中の席から注文する（bodyは無し）
func (h *OrderHandler) create(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.uc.ListMyOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) items(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	out, err := h.uc.GetMyOrderItems(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
