package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store"
)

func (c *Controller) GetAreas(ctx echo.Context) error {
	group := ctx.QueryParams().Get("group")
	countyID := ctx.QueryParams().Get("county_id")

	opts := store.ListAreasOpts{}
	if group != "" {
		opts.Group = &group
	}
	if countyID != "" {
		opts.CountyID = &countyID
	}

	areas, err := c.service.ListAreas(ctx.Request().Context(), opts)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, areas)
}
