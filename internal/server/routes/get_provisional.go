package routes

import (
	"net/http"
	"strconv"

	"github.com/neurograph-hq/neurograph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

const defaultProvisionalLimit = 200

func GetProvisionalHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	limit := defaultProvisionalLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	relations, err := app.Graph.ListProvisional(ctx, limit)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, relations)
}
