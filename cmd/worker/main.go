package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neurograph-hq/neurograph/internal/queue"
	"github.com/neurograph-hq/neurograph/internal/storage"
	"github.com/neurograph-hq/neurograph/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/neurograph-hq/neurograph/pkg/ai"
	oai "github.com/neurograph-hq/neurograph/pkg/ai/ollama"
	gai "github.com/neurograph-hq/neurograph/pkg/ai/openai"
	"github.com/neurograph-hq/neurograph/pkg/graph"
	"github.com/neurograph-hq/neurograph/pkg/logger"
	"github.com/neurograph-hq/neurograph/pkg/logger/console"
	"github.com/neurograph-hq/neurograph/pkg/prompt"
	neo4jstore "github.com/neurograph-hq/neurograph/pkg/store/neo4j"
	"github.com/neurograph-hq/neurograph/pkg/trust"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init s3 client
	client := storage.NewS3Client(ctx)

	// GraphAiClient
	adapter := util.GetEnv("AI_ADAPTER")
	var aiClient ai.GraphAIClient

	switch adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			VisionModel:         util.GetEnv("AI_VISION_MODEL"),
			ExtractionModel:     util.GetEnv("AI_EXTRACT_MODEL"),
			ClassificationModel: util.GetEnv("AI_CLASSIFY_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 1)),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		aiClient = client
	default:
		aiClient = gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			VisionModel:         util.GetEnv("AI_VISION_MODEL"),
			ExtractionModel:     util.GetEnv("AI_EXTRACT_MODEL"),
			ClassificationModel: util.GetEnv("AI_CLASSIFY_MODEL"),

			ChatURL:   util.GetEnv("AI_CHAT_URL"),
			ChatKey:   util.GetEnv("AI_CHAT_KEY"),
			VisionURL: util.GetEnv("AI_VISION_URL"),
			VisionKey: util.GetEnv("AI_VISION_KEY"),

			MaxConcurrentVisionRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 1)),
		})
	}

	// Prompt templates
	promptsPath := util.GetEnv("PROMPTS_PATH")
	if promptsPath == "" {
		promptsPath = "prompts.yaml"
	}
	prompts, err := prompt.NewStore(promptsPath)
	if err != nil {
		logger.Fatal("Failed to load prompt templates", "err", err)
	}

	// Init neo4j store
	neoClient, err := neo4jstore.NewClient(ctx, neo4jstore.NewClientParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USER"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnv("NEO4J_DATABASE"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Neo4j", "err", err)
	}
	graphStore := neo4jstore.NewStore(neoClient)
	defer graphStore.Close(ctx)

	// Trust engine
	trustEngine := trust.NewEngine(trust.NewEngineParams{
		Identifiers: trust.NewScholarClient(trust.NewScholarClientParams{
			ApiKey: util.GetEnv("SEMANTIC_SCHOLAR_API_KEY"),
		}),
		Titles: trust.NewOpenAlexClient(trust.NewOpenAlexClientParams{
			MailTo: util.GetEnv("OPENALEX_MAILTO"),
		}),
		Classifier: trust.NewDocClassifier(aiClient, prompts),
	})

	// Ingestion pipeline
	pipeline := graph.NewPipeline(graph.NewPipelineParams{
		Assembler: graph.NewAssembler(aiClient, prompts),
		Extractor: graph.NewExtractor(aiClient, prompts),
		Trust:     trustEngine,
		Store:     graphStore,
	})

	// Warm up the extraction model so the first message doesn't pay the load
	if err := aiClient.LoadModel(ctx); err != nil {
		logger.Warn("Model warm-up failed", "err", err)
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	logger.Info("Listening for messages")

	// Single consumer channel with prefetch=1: one document at a time,
	// which keeps graph merges serialized per edge key.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.IngestQueue,
		"ingest_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.IngestQueue, "err", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.IngestQueue)
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.IngestQueue)

				processingErr := queue.ProcessIngestMessage(ctx, client, pipeline, string(msg.Body))

				// On error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", queue.IngestQueue, "err", processingErr)
					handleProcessingError(consumerCh, msg, queue.IngestQueue)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.IngestQueue)
				}

				metrics := aiClient.GetMetrics()
				aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
				aiHours := int(aiDuration.Hours())
				aiMinutes := int(aiDuration.Minutes()) % 60
				aiSeconds := int(aiDuration.Seconds()) % 60
				logger.Info(
					"AI Metrics",
					"input_tokens", metrics.InputTokens,
					"output_tokens", metrics.OutputTokens,
					"total_tokens", metrics.TotalTokens,
					"duration", fmt.Sprintf("%02d:%02d:%02d", aiHours, aiMinutes, aiSeconds),
				)

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
				aiClient.ResetMetrics()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// After 10 attempts the message parks in the dead-letter queue
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "queue", retryName, "err", pubErr)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}
