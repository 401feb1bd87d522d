package routes

import (
	"net/http"

	"github.com/neurograph-hq/neurograph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetDocumentsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	documents, err := app.Graph.ListDocuments(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, documents)
}
