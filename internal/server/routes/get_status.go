package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/neurograph-hq/neurograph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// modelProbeTimeout bounds the model reachability check so a hung
// inference backend cannot stall the status endpoint.
const modelProbeTimeout = 5 * time.Second

func GetStatusHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	graphOK := app.Graph.Ping(ctx) == nil
	queueOK := app.Queue != nil && !app.Queue.IsClosed()

	modelOK := false
	if app.AI != nil {
		probeCtx, cancel := context.WithTimeout(ctx, modelProbeTimeout)
		modelOK = app.AI.LoadModel(probeCtx) == nil
		cancel()
	}

	status := http.StatusOK
	if !graphOK || !queueOK || !modelOK {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]bool{
		"graph": graphOK,
		"queue": queueOK,
		"model": modelOK,
	})
}
