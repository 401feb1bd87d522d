package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/neurograph-hq/neurograph/pkg/ai"
	"github.com/neurograph-hq/neurograph/pkg/store"
)

// App bundles the shared clients every request handler needs.
type App struct {
	Queue *amqp091.Channel
	S3    *s3.Client
	Graph store.GraphStore
	AI    ai.GraphAIClient
}

// AppContext wraps the echo context with the application's shared clients.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the shared clients into every request.
func AppContextMiddleware(
	queue *amqp091.Channel,
	s3 *s3.Client,
	graph store.GraphStore,
	aiClient ai.GraphAIClient,
) echo.MiddlewareFunc {
	app := &App{
		Queue: queue,
		S3:    s3,
		Graph: graph,
		AI:    aiClient,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
