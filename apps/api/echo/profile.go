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
	"github.com/trezcool/tuitioncenter/core/tuition"
	"github.com/trezcool/tuitioncenter/storage/uploads"
)

type profileApi struct {
	staffSvc   *staff.Service
	studentSvc *student.Service
	tuitionSvc *tuition.Service
	store      *uploads.DiskStore
	validate   *validator.Validate
}

func registerProfileAPI(g *echo.Group, auth authMiddlewares, opts *Options) {
	api := profileApi{
		staffSvc:   opts.StaffSvc,
		studentSvc: opts.StudentSvc,
		tuitionSvc: opts.TuitionSvc,
		store:      opts.Uploads,
		validate:   opts.Validate,
	}

	pg := g.Group("/profile", auth.required()...)
	pg.GET("", api.retrieve)
	pg.PUT("", api.update)
	pg.PUT("/password", api.changePassword)
	pg.POST("/picture", api.setPicture)
	pg.GET("/summary", api.summary)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id := identity(ctx)

	if id.Role == access.RoleStudent {
		st, err := api.studentSvc.GetProfile(reqCtx, id)
		if err != nil {
			return errors.Wrap(err, "getting student profile")
		}
		return ctx.JSON(http.StatusOK, st)
	}
	s, err := api.staffSvc.GetProfile(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "getting staff profile")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *profileApi) update(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	switch orig := p.(type) {
	case staff.Staff:
		var data staff.UpdateProfile
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to staff.UpdateProfile")
		}
		if err = data.Validate(orig, api.validate); err != nil {
			return err
		}
		s, err := api.staffSvc.UpdateProfile(reqCtx, orig, data)
		if err != nil {
			return errors.Wrap(err, "updating staff profile")
		}
		return ctx.JSON(http.StatusOK, s)
	case student.Student:
		var data student.UpdateProfile
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to student.UpdateProfile")
		}
		if err = data.Validate(orig, api.validate); err != nil {
			return err
		}
		st, err := api.studentSvc.UpdateProfile(reqCtx, orig, data)
		if err != nil {
			return errors.Wrap(err, "updating student profile")
		}
		return ctx.JSON(http.StatusOK, st)
	}
	return errHttpForbidden
}

func (api *profileApi) changePassword(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data core.PasswordChange
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordChange")
	}
	data.Username = p.Identity().Username
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	switch orig := p.(type) {
	case staff.Staff:
		err = api.staffSvc.ChangePassword(reqCtx, orig, data)
	case student.Student:
		err = api.studentSvc.ChangePassword(reqCtx, orig, data)
	default:
		err = errHttpForbidden
	}
	if err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "password updated successfully"})
}

func (api *profileApi) setPicture(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if _, err = access.Authorize(p.Identity(), access.ProfilePicture, access.Update); err != nil {
		return err
	}
	orig, ok := p.(staff.Staff)
	if !ok {
		return errHttpForbidden
	}

	fh, err := ctx.FormFile("profilePicture")
	if err != nil {
		return requiredFile("profilePicture")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded picture")
	}
	defer f.Close()

	name, err := api.store.SaveProfilePicture(fh.Filename, f)
	if err != nil {
		return errors.Wrap(err, "saving profile picture")
	}
	s, err := api.staffSvc.SetProfilePicture(ctx.Request().Context(), orig, name)
	if err != nil {
		return errors.Wrap(err, "setting profile picture")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *profileApi) summary(ctx echo.Context) error {
	sum, err := api.tuitionSvc.OwnSummary(ctx.Request().Context(), identity(ctx))
	if err != nil {
		return errors.Wrap(err, "computing summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}
