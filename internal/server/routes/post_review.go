package routes

import (
	"net/http"

	"github.com/neurograph-hq/neurograph/internal/server/middleware"
	"github.com/neurograph-hq/neurograph/pkg/store"

	"github.com/labstack/echo/v4"
)

// PostReviewCommitHandler validates a batch of provisional relations by
// their graph identities, applying any reviewer corrections.
func PostReviewCommitHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	var body struct {
		Reviews []store.ReviewCorrection `json:"reviews" validate:"required,min=1,dive"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := app.Graph.CommitReview(ctx, body.Reviews)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}
