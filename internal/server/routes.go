package server

import (
	"github.com/neurograph-hq/neurograph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	apiRoutes.GET("/status", routes.GetStatusHandler)

	// Document routes
	apiRoutes.POST("/documents", routes.PostDocumentHandler)
	apiRoutes.GET("/documents", routes.GetDocumentsHandler)

	// Review routes
	apiRoutes.GET("/provisional", routes.GetProvisionalHandler)
	apiRoutes.POST("/review/commit", routes.PostReviewCommitHandler)

	// Graph browsing routes
	apiRoutes.GET("/concepts/:name", routes.GetConceptHandler)
}
