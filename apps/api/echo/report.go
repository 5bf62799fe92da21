package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/report"
)

type reportApi struct {
	svc      *report.Service
	mailer   *report.Mailer
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, svc *report.Service, mailer *report.Mailer, validate *validator.Validate) {
	api := reportApi{svc: svc, mailer: mailer, validate: validate}

	rg := g.Group("/reports")
	rg.POST("", api.generate)
	rg.GET("/state", api.state)
	rg.POST("/reset", api.reset)
	rg.GET("/history", api.history)
	rg.GET("/last", api.last)
	rg.GET("/last/export", api.export)
	rg.POST("/last/email", api.email)
}

// StateResponse describes the report generator. Error is the failure of the last generation.
type StateResponse struct {
	State report.State `json:"state"`
	Error string       `json:"error,omitempty"`
}

// SendResponse lists the recipients the report was sent to.
type SendResponse struct {
	To []string `json:"to"`
}

// Handlers

func (api *reportApi) generate(ctx echo.Context) error {
	var params report.Params
	if err := ctx.Bind(&params); err != nil {
		return errors.Wrap(err, "binding to Params")
	}
	r, err := api.svc.Generate(ctx.Request().Context(), params)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reportApi) state(ctx echo.Context) error {
	res := StateResponse{State: api.svc.State()}
	if err := api.svc.Err(); err != nil {
		res.Error = err.Error()
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reportApi) reset(ctx echo.Context) error {
	api.svc.Reset()
	return ctx.JSON(http.StatusOK, StateResponse{State: api.svc.State()})
}

func (api *reportApi) history(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.History())
}

func (api *reportApi) last(ctx echo.Context) error {
	r, err := api.svc.Last()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) export(ctx echo.Context) error {
	format := core.CleanString(ctx.QueryParam("format"), true /* lower */)
	if format == "" {
		format = report.FormatJSON
	}
	r, err := api.svc.Last()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = api.svc.ExportLast(&buf, format); err != nil {
		return errors.Wrap(err, "exporting report")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename(r, format)))
	return ctx.Blob(http.StatusOK, report.ContentType(format), buf.Bytes())
}

func (api *reportApi) email(ctx echo.Context) error {
	var data report.SendRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	to, err := api.mailer.SendLast(data)
	if err != nil {
		return errors.Wrap(err, "emailing report")
	}
	res := SendResponse{To: make([]string, 0, len(to))}
	for _, addr := range to {
		res.To = append(res.To, addr.Address)
	}
	return ctx.JSON(http.StatusAccepted, res)
}
