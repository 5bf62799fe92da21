package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/dashboard"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
)

type studentApi struct {
	svc          *student.Service
	dashboardSvc *dashboard.Service
	gradeSvc     *grade.Service
	attSvc       *attendance.Service
	validate     *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	svc *student.Service,
	dashboardSvc *dashboard.Service,
	gradeSvc *grade.Service,
	attSvc *attendance.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:          svc,
		dashboardSvc: dashboardSvc,
		gradeSvc:     gradeSvc,
		attSvc:       attSvc,
		validate:     validate,
	}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/grade-levels", api.queryGradeLevels)

	// detail endpoints
	dg := sg.Group("/:id", objectMiddleware(svc.GetByID))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/profile", api.profile)
	dg.GET("/grades", api.grades)
	dg.GET("/attendance", api.attendance)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, student.OrderingFields...)

	students, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) queryGradeLevels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, student.GradeLevels)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(s, api.validate); err != nil {
		return err
	}

	s, err = api.svc.Update(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) profile(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return err
	}
	p, err := api.dashboardSvc.Profile(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "building student profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *studentApi) grades(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return err
	}
	grades, err := api.gradeSvc.GetByStudent(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *studentApi) attendance(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return err
	}
	records, err := api.attSvc.GetByStudent(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}
