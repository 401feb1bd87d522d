package graph

import (
	"context"
	"strings"

	"github.com/neurograph-hq/neurograph/internal/util"
	"github.com/neurograph-hq/neurograph/pkg/ai"
	"github.com/neurograph-hq/neurograph/pkg/prompt"
)

const (
	// pages shorter than this carry no extractable knowledge, skip the call
	minExtractionChars = 50

	// cap prompt size to respect model context limits
	maxExtractionChars = 15000

	// extraction models occasionally emit unparseable JSON, one retry
	// recovers most of those
	maxExtractionTries = 2
)

// Extractor turns fused page content into subject-predicate-object triples
// using a language model constrained to JSON output.
type Extractor struct {
	client  ai.GraphAIClient
	prompts *prompt.Store
}

// NewExtractor creates a knowledge extractor. The prompt store must contain
// the "graph_extractor" template.
func NewExtractor(client ai.GraphAIClient, prompts *prompt.Store) *Extractor {
	return &Extractor{
		client:  client,
		prompts: prompts,
	}
}

// Extract returns the assertions found in the content. Content below the
// minimum length yields an empty list without a model call. Model and
// parse failures are returned to the caller, which treats them as "no
// knowledge extracted for this page".
func (e *Extractor) Extract(ctx context.Context, content string) ([]Triple, error) {
	content = strings.TrimSpace(content)
	if len(content) < minExtractionChars {
		return nil, nil
	}
	content = util.TruncateUTF8(content, maxExtractionChars)

	promptText, err := e.prompts.Format("graph_extractor", content)
	if err != nil {
		return nil, err
	}

	var envelope tripleEnvelope
	err = util.RetryErrWithContext(ctx, maxExtractionTries, func(ctx context.Context) error {
		envelope = tripleEnvelope{}
		return e.client.GenerateCompletionWithFormat(
			ctx,
			"knowledge_triples",
			"Subject-predicate-object assertions extracted from document content",
			promptText,
			&envelope,
		)
	})
	if err != nil {
		return nil, err
	}

	return envelope.Triples, nil
}
