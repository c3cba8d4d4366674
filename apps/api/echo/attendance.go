package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
	binder   echo.DefaultBinder
}

func registerAttendanceAPI(g *echo.Group, auth authMiddlewares, opts *Options) {
	api := attendanceApi{
		svc:      opts.AttendanceSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/attendance", auth.required()...)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/student/:id", api.history)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.Filter
	if err := api.binder.BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to attendance.Filter")
	}

	records, err := api.svc.Query(ctx.Request().Context(), identity(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Mark(ctx.Request().Context(), identity(ctx), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *attendanceApi) history(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	records, err := api.svc.History(ctx.Request().Context(), identity(ctx), id)
	if err != nil {
		return errors.Wrap(err, "querying attendance history")
	}
	return ctx.JSON(http.StatusOK, records)
}
