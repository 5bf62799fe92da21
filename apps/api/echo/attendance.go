package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance")
	ag.GET("", api.query)
	ag.POST("", api.mark)
	ag.GET("/daily", api.daily)
	ag.POST("/mark-all-present", api.markAllPresent)
	ag.GET("/stats", api.stats)
	ag.GET("/weekly", api.weekly)
	ag.GET("/statuses", api.queryStatuses)
	ag.GET("/:id", api.retrieve)
}

// Handlers

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}
	if err := filter.Validate(api.validate); err != nil {
		return err
	}
	records, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding attendance record by ID")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.MarkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Mark(ctx.Request().Context(), data.StudentID, data.Status, data.Reason)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// MarkAllResponse lists the marks made. Error is set when some marks failed.
type MarkAllResponse struct {
	Marked []attendance.Record `json:"marked"`
	Error  string              `json:"error,omitempty"`
}

func (api *attendanceApi) markAllPresent(ctx echo.Context) error {
	marked, err := api.svc.MarkAllPresent(ctx.Request().Context())
	if marked == nil {
		if err != nil {
			return errors.Wrap(err, "marking all present")
		}
		marked = []attendance.Record{}
	}
	res := MarkAllResponse{Marked: marked}
	if err != nil {
		res.Error = err.Error()
		return ctx.JSON(http.StatusMultiStatus, res)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) daily(ctx echo.Context) error {
	date, err := dateParam(ctx, "date", core.Today())
	if err != nil {
		return err
	}
	view, err := api.svc.DailyView(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "building daily view")
	}
	return ctx.JSON(http.StatusOK, view)
}

// DailyStats is the tally of a day with its attendance rate.
type DailyStats struct {
	attendance.Stats
	Date core.Date `json:"date"`
	Rate float64   `json:"rate"`
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	date, err := dateParam(ctx, "date", core.Today())
	if err != nil {
		return err
	}
	st, err := api.svc.Stats(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "computing attendance stats")
	}
	return ctx.JSON(http.StatusOK, DailyStats{Stats: st, Date: date, Rate: core.Round(st.Rate(), 1)})
}

func (api *attendanceApi) weekly(ctx echo.Context) error {
	from, err := dateParam(ctx, "from", core.Today().AddDays(-6))
	if err != nil {
		return err
	}
	summary, err := api.svc.Weekly(ctx.Request().Context(), from)
	if err != nil {
		return errors.Wrap(err, "computing weekly attendance")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *attendanceApi) queryStatuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, attendance.Statuses)
}
