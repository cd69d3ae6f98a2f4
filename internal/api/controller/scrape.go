package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/scraper"
)

// Scrape kicks off one run for the requested entity type. The optional
// election query parameter picks a catalogue entry; empty means newest.
func (c *Controller) Scrape(ctx echo.Context) error {
	scrapeType := ctx.Param("type")
	electionID := ctx.QueryParams().Get("election")
	reqCtx := ctx.Request().Context()

	switch scrapeType {
	case "areas", "contests", "questions", "results":
		counters, err := c.service.Scrape(reqCtx, electionID, scraper.EntityType(scrapeType))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, counters)

	case "meta":
		counters, err := c.service.ScrapeMeta(reqCtx, electionID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, counters)

	case "match":
		counters, err := c.service.MatchContests(reqCtx)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, counters)

	default:
		return constants.ErrBadRequest
	}
}
