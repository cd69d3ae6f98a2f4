package controller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store"
)

func (c *Controller) GetContests(ctx echo.Context) error {
	title := ctx.QueryParams().Get("title")
	resultsGroup := ctx.QueryParams().Get("results_group")
	scope := ctx.QueryParams().Get("scope")
	limit := ctx.QueryParams().Get("limit")

	opts := store.SearchContestsOpts{}
	if title != "" {
		opts.Title = &title
	}
	if resultsGroup != "" {
		opts.ResultsGroup = &resultsGroup
	}
	if scope != "" {
		opts.Scope = &scope
	}
	if limit != "" {
		n, err := strconv.ParseUint(limit, 10, 64)
		if err == nil {
			opts.Limit = n
		}
	}

	contests, err := c.service.SearchContests(ctx.Request().Context(), opts)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, contests)
}

func (c *Controller) GetContest(ctx echo.Context) error {
	contest, err := c.service.GetContest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, contest)
}

func (c *Controller) GetContestResults(ctx echo.Context) error {
	contestID := ctx.Param("id")

	results, err := c.service.ContestResults(ctx.Request().Context(), contestID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, results)
}
