package echoapi

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core/payment"
)

type paymentApi struct {
	svc      *payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, auth authMiddlewares, opts *Options) {
	api := paymentApi{
		svc:      opts.PaymentSvc,
		validate: opts.Validate,
	}

	pg := g.Group("/payments")

	// receipts may be uploaded without an account
	pg.POST("/upload", api.upload, auth.maybe()...)

	pg.GET("", api.query, auth.required()...)
	pg.PUT("/:id/status", api.review, append(auth.required(), adminMiddleware())...)
}

func (api *paymentApi) upload(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// the receipt file is optional
	var (
		filename string
		receipt  io.Reader
	)
	fh, err := ctx.FormFile("receipt")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded receipt")
		}
		defer f.Close()
		filename, receipt = fh.Filename, f
	case errors.Is(err, http.ErrMissingFile):
	default:
		return errors.Wrap(err, "reading receipt")
	}

	p, err := api.svc.Submit(ctx.Request().Context(), identity(ctx), data, filename, receipt)
	if err != nil {
		return errors.Wrap(err, "submitting payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) query(ctx echo.Context) error {
	payments, err := api.svc.Query(ctx.Request().Context(), identity(ctx))
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) review(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data payment.StatusUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Review(ctx.Request().Context(), identity(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "reviewing payment")
	}
	return ctx.JSON(http.StatusOK, p)
}
