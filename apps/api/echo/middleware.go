package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/services/ratelimit"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if identity(ctx).Role == access.RoleAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// loginRateLimitMiddleware counts login attempts per client IP and endpoint.
func loginRateLimitMiddleware(limiter ratelimit.Limiter, conf core.RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if limiter == nil || conf.LoginAttempts <= 0 {
				return next(ctx)
			}
			key := "login:" + ctx.Path() + ":" + ctx.RealIP()
			dec := limiter.Allow(ctx.Request().Context(), key, conf.LoginAttempts)
			if !dec.Allowed {
				wait := dec.RetryAfter(time.Now())
				ctx.Response().Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)))
				return errTooManyLoginAttempts
			}
			return next(ctx)
		}
	}
}
