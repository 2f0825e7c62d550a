package handler

import (
	"errors"
	"net/http"

	"cafe/internal/identity"
	"cafe/internal/validator"
	auth "cafe/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	signUpUC  *auth.SignUpUsecase
	signInUC  *auth.SignInUsecase
	signOutUC *auth.SignOutUsecase
}

// DIコンストラクタ
func NewAuthHandler(
	signUpUC *auth.SignUpUsecase,
	signInUC *auth.SignInUsecase,
	signOutUC *auth.SignOutUsecase,
) *AuthHandler {
	return &AuthHandler{
		signUpUC:  signUpUC,
		signInUC:  signInUC,
		signOutUC: signOutUC,
	}
}

// /auth/signup のリクエストボディ。
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// /auth/signin のリクエストボディ。
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// signup/signinは公開、signout/meはサインイン後
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, authed ...echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/signup", h.signUp)
	g.POST("/signin", h.signIn)
	g.POST("/signout", h.signOut, authed...)
	g.GET("/me", h.me, authed...)
}

func (h *AuthHandler) signUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.signUpUC.Execute(c.Request().Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) signIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := validator.ValidateSignIn(req.Email, req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password required"})
	}

	out, err := h.signInUC.Execute(c.Request().Context(), auth.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// token_versionを上げてカートも捨てる
func (h *AuthHandler) signOut(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.signOutUC.Execute(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// roleはunresolved/admin/not-admin
func (h *AuthHandler) me(c echo.Context) error {
	who, ok := identity.FromContext(c.Request().Context())
	if !ok {
		return unauthorized(c)
	}
	out := meResponse{ID: who.UserID, Email: who.Email, Role: "unresolved"}
	if sess, ok := getSession(c); ok {
		out.Role = sess.RoleState().String()
	}
	return c.JSON(http.StatusOK, out)
}

func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmailFormat),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
	default:
		return writeError(c, err)
	}
}
