package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}
	g.GET("/dashboard", api.stats)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	date, err := dateParam(ctx, "date", core.Today())
	if err != nil {
		return err
	}
	st, err := api.svc.Stats(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, st)
}
