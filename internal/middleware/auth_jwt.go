package middleware

import (
	"net/http"
	"strings"

	"cafe/internal/identity"
	"cafe/internal/logging"
	auth "cafe/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	CtxUserIDKey       = "user_id"       // string
	CtxUserEmailKey    = "user_email"    // string
	CtxTokenVersionKey = "token_version" // int
	CtxSessionKey      = "session"       // *session.Session
)

// bearerAuth用のJWT検証ミドルウェア。
// EventSourceはヘッダを付けられないので/eventsだけaccess_tokenクエリも見る。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名・期限・アルゴリズムを検証
			claims, err := auth.ParseToken(secret, rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.Subject)
			c.Set(CtxUserEmailKey, claims.Email)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			//usecase側はidentity.Providerで取り出す
			ctx := identity.IntoContext(c.Request().Context(), identity.Identity{
				UserID: claims.Subject,
				Email:  claims.Email,
			})
			ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With(zap.String("user_id", claims.Subject)))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// Authorizationヘッダ（Bearer）からtokenを抜く
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		if c.Path() == "/events" {
			t := strings.TrimSpace(c.QueryParam("access_token"))
			return t, t != ""
		}
		return "", false
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	rawToken := strings.TrimSpace(parts[1])
	return rawToken, rawToken != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// AuthJWTが入れたuser_idを取り出す
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
