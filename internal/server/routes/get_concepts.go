package routes

import (
	"net/http"

	"github.com/neurograph-hq/neurograph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetConceptHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "concept name is required"})
	}

	concept, err := app.Graph.GetConcept(ctx, name)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if concept == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "concept not found"})
	}

	return c.JSON(http.StatusOK, concept)
}
