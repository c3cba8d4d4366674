package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/staff"
)

type adminApi struct {
	svc      *staff.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, auth authMiddlewares, opts *Options) {
	api := adminApi{
		svc:      opts.StaffSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/admin", append(auth.required(), adminMiddleware())...)
	ag.GET("/teachers", api.queryTeachers)
	ag.PUT("/reset-password/:id", api.resetPassword)
}

func (api *adminApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context(), identity(ctx))
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *adminApi) resetPassword(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data core.PasswordReset
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordReset")
	}

	reqCtx := ctx.Request().Context()
	teacher, err := api.svc.GetByID(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "finding teacher")
	}
	data.Username = teacher.Username
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	teacher, err = api.svc.ResetTeacherPassword(reqCtx, identity(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, PasswordResetResponse{
		Message:     "password reset successfully",
		Username:    teacher.Username,
		NewPassword: data.NewPassword,
	})
}
