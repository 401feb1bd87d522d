package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neurograph-hq/neurograph/pkg/ai"
	"github.com/neurograph-hq/neurograph/pkg/document"
	"github.com/neurograph-hq/neurograph/pkg/logger"
	"github.com/neurograph-hq/neurograph/pkg/prompt"
)

// Images below this size are assumed decorative (logos, rules, icons)
// and skipped without a vision call.
const (
	minFigureWidth  = 500
	minFigureHeight = 500
)

// Assembler fuses a page's raw text with vision-model descriptions of its
// qualifying figures into one text block for extraction.
type Assembler struct {
	client  ai.GraphAIClient
	prompts *prompt.Store
}

// NewAssembler creates a content assembler. The prompt store must contain
// the "visual_analyst" template.
func NewAssembler(client ai.GraphAIClient, prompts *prompt.Store) *Assembler {
	return &Assembler{
		client:  client,
		prompts: prompts,
	}
}

// FusePage produces the fused content block for one page: the raw text
// followed by a description per qualifying figure, in appearance order.
// Each description call is independent and best-effort: a failure is
// logged and contributes an empty description rather than aborting the
// page. An error is returned only for a missing prompt template.
func (a *Assembler) FusePage(ctx context.Context, page document.Page) (string, error) {
	qualifying := make([]document.Image, 0, len(page.Images))
	for _, img := range page.Images {
		if img.Width < minFigureWidth || img.Height < minFigureHeight {
			continue
		}
		qualifying = append(qualifying, img)
	}

	if len(qualifying) == 0 {
		return fmt.Sprintf("TEXT:\n%s", page.Text), nil
	}

	instruction, err := a.prompts.Get("visual_analyst")
	if err != nil {
		return "", err
	}

	var descriptions strings.Builder
	for _, img := range qualifying {
		description, err := a.client.GenerateImageDescription(ctx, instruction, img.Base64())
		if err != nil {
			logger.Warn(
				"[Graph] figure description failed",
				"page", page.Index,
				"figure", img.Index,
				"error", err,
			)
			description = ""
		}
		fmt.Fprintf(&descriptions, "[Figure %d]: %s\n", img.Index, description)
	}

	return fmt.Sprintf(
		"TEXT:\n%s\n\nFIGURE DESCRIPTIONS:\n%s",
		page.Text,
		strings.TrimRight(descriptions.String(), "\n"),
	), nil
}
