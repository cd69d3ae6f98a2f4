package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetMeta(ctx echo.Context) error {
	meta, err := c.service.Meta(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, meta)
}

func (c *Controller) GetElections(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.service.Elections())
}
