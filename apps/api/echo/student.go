package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/tuition"
)

type studentApi struct {
	svc        *student.Service
	tuitionSvc *tuition.Service
	validate   *validator.Validate
}

func registerStudentAPI(g *echo.Group, auth authMiddlewares, opts *Options) {
	api := studentApi{
		svc:        opts.StudentSvc,
		tuitionSvc: opts.TuitionSvc,
		validate:   opts.Validate,
	}

	sg := g.Group("/students")

	// registration is open to anonymous visitors
	sg.POST("", api.create, auth.maybe()...)

	sg.GET("", api.query, auth.required()...)
	sg.GET("/:id", api.retrieve, auth.required()...)
	sg.PUT("/:id", api.update, append(auth.required(), adminMiddleware())...)
	sg.GET("/:id/summary", api.summary, auth.required()...)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, creds, err := api.svc.Register(ctx.Request().Context(), identity(ctx), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, RegistrationResponse{Student: st, Credentials: creds})
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.Query(ctx.Request().Context(), identity(ctx))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.Get(ctx.Request().Context(), identity(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Update(ctx.Request().Context(), identity(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) summary(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	sum, err := api.tuitionSvc.StudentSummary(ctx.Request().Context(), identity(ctx), id)
	if err != nil {
		return errors.Wrap(err, "computing summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}
