package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neurograph-hq/neurograph/internal/queue"
	mid "github.com/neurograph-hq/neurograph/internal/server/middleware"
	"github.com/neurograph-hq/neurograph/internal/storage"
	"github.com/neurograph-hq/neurograph/internal/util"
	"github.com/neurograph-hq/neurograph/pkg/ai"
	oai "github.com/neurograph-hq/neurograph/pkg/ai/ollama"
	gai "github.com/neurograph-hq/neurograph/pkg/ai/openai"
	"github.com/neurograph-hq/neurograph/pkg/logger"
	neo4jstore "github.com/neurograph-hq/neurograph/pkg/store/neo4j"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// Init wires the HTTP API: object storage for uploads, the ingest queue
// for handing documents to workers, and the graph store for reads and
// review commits. Blocks until shutdown.
func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := neo4jstore.NewClient(ctx, neo4jstore.NewClientParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USER"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnv("NEO4J_DATABASE"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Neo4j", "err", err)
	}
	graphStore := neo4jstore.NewStore(client)
	defer graphStore.Close(ctx)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	// same adapter the worker runs, used here only for the status probe
	var aiClient ai.GraphAIClient
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		aiClient, err = oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			VisionModel:         util.GetEnv("AI_VISION_MODEL"),
			ExtractionModel:     util.GetEnv("AI_EXTRACT_MODEL"),
			ClassificationModel: util.GetEnv("AI_CLASSIFY_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: 1,
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
	default:
		aiClient = gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			VisionModel:         util.GetEnv("AI_VISION_MODEL"),
			ExtractionModel:     util.GetEnv("AI_EXTRACT_MODEL"),
			ClassificationModel: util.GetEnv("AI_CLASSIFY_MODEL"),

			ChatURL:   util.GetEnv("AI_CHAT_URL"),
			ChatKey:   util.GetEnv("AI_CHAT_KEY"),
			VisionURL: util.GetEnv("AI_VISION_URL"),
			VisionKey: util.GetEnv("AI_VISION_KEY"),
		})
	}

	e.Use(mid.AppContextMiddleware(ch, s3, graphStore, aiClient))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1G"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
