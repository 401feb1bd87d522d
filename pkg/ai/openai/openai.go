package openai

import (
	"math"
	"sync"

	"github.com/neurograph-hq/neurograph/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// GraphOpenAIClient is an OpenAI-compatible implementation of the
// ai.GraphAIClient interface. It manages separate clients for
// chat/completion and vision tasks so that each can point at a
// different endpoint.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	visionModel         string
	extractionModel     string
	classificationModel string

	chatURL   string
	chatKey   string
	visionURL string
	visionKey string

	visionLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient   *openai.Client
	VisionClient *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration parameters for
// creating a new GraphOpenAIClient.
//
// VisionModel specifies the model used for figure descriptions.
// ExtractionModel specifies the model used for triple extraction.
// ClassificationModel specifies the model used for document-type classification.
// ChatURL and ChatKey configure the chat/completion API endpoint.
// VisionURL and VisionKey configure the vision API endpoint; when left
// empty the chat endpoint is reused.
type NewGraphOpenAIClientParams struct {
	VisionModel         string
	ExtractionModel     string
	ClassificationModel string

	ChatURL   string
	ChatKey   string
	VisionURL string
	VisionKey string

	MaxConcurrentVisionRequests int64
}

// NewGraphOpenAIClient creates and returns a new GraphOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	params := openai.NewGraphOpenAIClientParams{
//		VisionModel:         "gpt-4o-mini",
//		ExtractionModel:     "gpt-4o-mini",
//		ClassificationModel: "gpt-4o-mini",
//		ChatKey:             os.Getenv("OPENAI_API_KEY"),
//	}
//	client := openai.NewGraphOpenAIClient(params)
func NewGraphOpenAIClient(
	params NewGraphOpenAIClientParams,
) *GraphOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)

	visionURL := params.VisionURL
	visionKey := params.VisionKey
	visionClient := newOpenaiClient(visionURL, visionKey)
	if visionClient == nil {
		visionURL = params.ChatURL
		visionKey = params.ChatKey
		visionClient = chatClient
	}

	maxVision := params.MaxConcurrentVisionRequests
	if maxVision <= 0 {
		maxVision = 1
	}

	return &GraphOpenAIClient{
		visionModel:         params.VisionModel,
		extractionModel:     params.ExtractionModel,
		classificationModel: params.ClassificationModel,

		chatURL:   params.ChatURL,
		chatKey:   params.ChatKey,
		visionURL: visionURL,
		visionKey: visionKey,

		visionLock: semaphore.NewWeighted(maxVision),

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient:   chatClient,
		VisionClient: visionClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *GraphOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{
		InputTokens:  0,
		OutputTokens: 0,
		TotalTokens:  0,
		DurationMs:   0,
	}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *GraphOpenAIClient) GetMetrics() ai.ModelMetrics {
	return c.metrics
}

func (c *GraphOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
