package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
)

type authApi struct {
	conf       *core.Config
	staffSvc   *staff.Service
	studentSvc *student.Service
	validate   *validator.Validate
}

func registerAuthAPI(g *echo.Group, auth authMiddlewares, opts *Options) {
	api := authApi{
		conf:       opts.Conf,
		staffSvc:   opts.StaffSvc,
		studentSvc: opts.StudentSvc,
		validate:   opts.Validate,
	}
	throttle := loginRateLimitMiddleware(opts.Limiter, opts.Conf.RateLimit)

	g.POST("/auth/login", api.login, throttle)
	g.POST("/auth/token-refresh", api.refreshToken, auth.required()...)
	g.POST("/student-auth/login", api.studentLogin, throttle)
}

func (api *authApi) token(p access.Principal) (string, error) {
	token, err := GenerateToken(GetClaims(p, api.conf), api.conf.SecretKey)
	return token, errors.Wrap(err, "generating token")
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.staffSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if core.IsNotFound(err) {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.token(s)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: newStaffUser(s)})
}

func (api *authApi) studentLogin(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.studentSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case core.IsNotFound(err):
			return errInvalidCredentials
		case errors.Cause(err) == student.ErrAccountDisabled:
			return errAccountDisabled
		}
		return errors.Wrap(err, "authenticating student")
	}
	token, err := api.token(s)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: newStudentUser(s)})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	token, err := api.token(p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}
