package handler

import (
	"net/http"

	"cafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc         *usecase.AdminOrderUsecase
	reconciler *usecase.OrphanReconciler
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, reconciler *usecase.OrphanReconciler) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, reconciler: reconciler}
}

type AdminUpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, admin ...echo.MiddlewareFunc) {
	g := e.Group("/admin/orders", admin...)

	g.GET("", h.list)
	g.GET("/:id/items", h.items)
	g.PUT("/:id/status", h.updateStatus)
	g.POST("/reconcile", h.reconcile)
}

// 全注文（新しい順、プロフィール名つき）
func (h *AdminOrderHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) items(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Items(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req AdminUpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput{
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 明細の無い古いヘッダを今すぐ掃除する
func (h *AdminOrderHandler) reconcile(c echo.Context) error {
	out, err := h.reconciler.RunOnce(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
