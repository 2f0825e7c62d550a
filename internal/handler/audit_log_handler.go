package handler

import (
	"net/http"
	"strconv"

	"cafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/audit-logs
type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, admin ...echo.MiddlewareFunc) {
	e.GET("/admin/audit-logs", h.list, admin...)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	q := usecase.AuditLogQuery{
		ActorUserID:  c.QueryParam("actor_user_id"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		From:         c.QueryParam("from"),
		To:           c.QueryParam("to"),
	}

	// limit/offset（省略時は0）
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		q.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		q.Offset = n
	}

	out, err := h.uc.List(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
