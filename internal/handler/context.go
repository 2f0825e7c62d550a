package handler

import (
	"net/http"

	"cafe/internal/middleware"
	"cafe/internal/session"
	"cafe/internal/validator"

	"github.com/labstack/echo/v4"
)

// middleware.AuthJWTがc.Setしたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	return middleware.UserID(c)
}

// middleware.AttachSessionが入れたSession
func getSession(c echo.Context) (*session.Session, bool) {
	return middleware.SessionFrom(c)
}

// パスのidはUUIDだけ受け付ける
func pathID(c echo.Context, name string) (string, bool) {
	id := c.Param(name)
	if err := validator.ValidateID(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}
