package trust

import (
	"context"
	"strings"

	"github.com/neurograph-hq/neurograph/internal/util"
	"github.com/neurograph-hq/neurograph/pkg/ai"
	"github.com/neurograph-hq/neurograph/pkg/prompt"
)

const classifierSampleLimit = 12000

// DocClassifier classifies a document's structural type with a language
// model constrained to JSON output. It implements Classifier.
type DocClassifier struct {
	client  ai.GraphAIClient
	prompts *prompt.Store
}

// NewDocClassifier creates a classifier backed by the given AI client and
// prompt store. The store must contain the "doc_classifier" template.
func NewDocClassifier(client ai.GraphAIClient, prompts *prompt.Store) *DocClassifier {
	return &DocClassifier{
		client:  client,
		prompts: prompts,
	}
}

type classificationResult struct {
	DocType    string  `json:"doc_type" jsonschema_description:"One of LAB_NOTE, TEXTBOOK, LECTURE_SLIDES, IMAGE_CAPTION, EXPERIMENTAL_STUDY, REVIEW_ARTICLE, POPULAR_SCIENCE, OTHER"`
	Confidence float64 `json:"confidence" jsonschema_description:"Classification confidence between 0.0 and 1.0"`
	Rationale  string  `json:"rationale" jsonschema_description:"Short reason for the chosen category"`
}

// ClassifyDocument asks the model for a structural category of the sample.
// The sample is truncated before the call to bound prompt size.
func (c *DocClassifier) ClassifyDocument(
	ctx context.Context,
	sample string,
) (DocumentType, float64, error) {
	sample = util.TruncateUTF8(sample, classifierSampleLimit)

	promptText, err := c.prompts.Format("doc_classifier", sample)
	if err != nil {
		return DocTypeOther, 0, err
	}

	var result classificationResult
	err = c.client.GenerateCompletionWithFormat(
		ctx,
		"document_classification",
		"Structural category of a document with confidence",
		promptText,
		&result,
	)
	if err != nil {
		return DocTypeOther, 0, err
	}

	docType := DocumentType(strings.ToUpper(strings.TrimSpace(result.DocType)))
	if _, ok := docTypeTrust[docType]; !ok {
		docType = DocTypeOther
	}

	return docType, result.Confidence, nil
}
