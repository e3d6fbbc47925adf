package middleware

import (
	"net/http"

	"app/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AdminRoleGuard はAuthJWTの後段に置く。管理者ロール以外を通さない。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)

			switch model.Role(role) {
			case model.RoleAdmin:
				return next(c)
			case model.RoleUser:
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			default:
				//roleが入っていない＝AuthJWTを通っていない
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
		}
	}
}
