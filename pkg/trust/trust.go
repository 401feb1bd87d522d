package trust

import (
	"context"
	"strings"

	"github.com/neurograph-hq/neurograph/pkg/logger"
)

// DocumentType is a structural document category produced by the classifier.
type DocumentType string

const (
	DocTypeLabNote           DocumentType = "LAB_NOTE"
	DocTypeTextbook          DocumentType = "TEXTBOOK"
	DocTypeLectureSlides     DocumentType = "LECTURE_SLIDES"
	DocTypeImageCaption      DocumentType = "IMAGE_CAPTION"
	DocTypeExperimentalStudy DocumentType = "EXPERIMENTAL_STUDY"
	DocTypeReviewArticle     DocumentType = "REVIEW_ARTICLE"
	DocTypePopularScience    DocumentType = "POPULAR_SCIENCE"
	DocTypeOther             DocumentType = "OTHER"
)

// docTypeTrust maps a structural document category to its trust value.
// Firsthand experimental material ranks highest, unrecognized material
// falls back to the neutral prior.
var docTypeTrust = map[DocumentType]float64{
	DocTypeLabNote:           1.0,
	DocTypeTextbook:          0.90,
	DocTypeExperimentalStudy: 0.90,
	DocTypeReviewArticle:     0.85,
	DocTypeLectureSlides:     0.70,
	DocTypeImageCaption:      0.60,
	DocTypePopularScience:    0.60,
	DocTypeOther:             0.5,
}

const neutralTrust = 0.5

// retractedTrust keeps a floor above zero so edges referencing a retracted
// work are heavily discounted rather than discarded outright.
const retractedTrust = 0.1

// CitationRecord is the result of a bibliographic lookup.
type CitationRecord struct {
	Citations int
	Retracted bool
}

// IdentifierLookup resolves a persistent identifier (DOI) to citation data.
// A nil record means the identifier could not be resolved; the engine then
// falls through to the next signal.
type IdentifierLookup interface {
	CitationsByIdentifier(ctx context.Context, identifier string) (*CitationRecord, error)
}

// TitleLookup searches a scholarly-works index by document title.
// A nil record means no matching work was found.
type TitleLookup interface {
	SearchByTitle(ctx context.Context, title string) (*CitationRecord, error)
}

// Classifier assigns a structural document category to a text sample.
type Classifier interface {
	ClassifyDocument(ctx context.Context, sample string) (DocumentType, float64, error)
}

// Provenance records which signal decided a trust score.
type Provenance struct {
	Source     string       `json:"source"`
	Identifier string       `json:"identifier,omitempty"`
	Citations  int          `json:"citations,omitempty"`
	Retracted  bool         `json:"retracted,omitempty"`
	DocType    DocumentType `json:"doc_type,omitempty"`
	Confidence float64      `json:"confidence,omitempty"`
}

// Assessment is the outcome of scoring a document: a trust value in [0,1]
// plus the provenance of the deciding signal.
type Assessment struct {
	Score      float64    `json:"score"`
	Provenance Provenance `json:"provenance"`
}

// Input describes the document under assessment. Sample holds the text of
// the leading pages, Title the display title used for the works search,
// and TypeHint an optional upload-time category hint.
type Input struct {
	Sample   string
	Title    string
	TypeHint string
}

// Engine computes document trust scores by fusing bibliographic signals
// with a structural classification fallback. External lookups are
// best-effort: any failure degrades to the next signal in the chain and
// is never surfaced to the caller.
type Engine struct {
	identifiers IdentifierLookup
	titles      TitleLookup
	classifier  Classifier
}

// NewEngineParams configures a trust Engine. Any of the signal providers
// may be nil, in which case the corresponding signal is skipped.
type NewEngineParams struct {
	Identifiers IdentifierLookup
	Titles      TitleLookup
	Classifier  Classifier
}

// NewEngine creates a trust Engine with the given signal providers.
func NewEngine(params NewEngineParams) *Engine {
	return &Engine{
		identifiers: params.Identifiers,
		titles:      params.Titles,
		classifier:  params.Classifier,
	}
}

// Score assesses a document and returns its trust value with provenance.
//
// Decision policy, in priority order: an experimental/lab-note origin hint
// yields 1.0 immediately; a retraction reported by either bibliographic
// path forces the retracted floor; otherwise the text path (identifier
// citations, then classifier) and the title path (works search) are scored
// independently and the maximum wins. With no usable signal at all the
// neutral prior applies.
func (e *Engine) Score(ctx context.Context, input Input) Assessment {
	if isLabNoteHint(input.TypeHint) {
		return Assessment{
			Score:      1.0,
			Provenance: Provenance{Source: "identity"},
		}
	}

	text := e.textSignal(ctx, input.Sample)
	title := e.titleSignal(ctx, input.Title)

	// retraction overrides every other signal, including high citation counts
	if text != nil && text.Provenance.Retracted {
		return *text
	}
	if title != nil && title.Provenance.Retracted {
		return *title
	}

	best := Assessment{
		Score:      neutralTrust,
		Provenance: Provenance{Source: "neutral"},
	}
	if text != nil && text.Score > best.Score {
		best = *text
	}
	if title != nil && title.Score > best.Score {
		best = *title
	}

	return best
}

// textSignal scores the document from its text sample: identifier citation
// buckets first, classifier as fallback. Returns nil when no signal applies.
func (e *Engine) textSignal(ctx context.Context, sample string) *Assessment {
	if doi := FindDOI(sample); doi != "" && e.identifiers != nil {
		record, err := e.identifiers.CitationsByIdentifier(ctx, doi)
		if err != nil {
			logger.Warn("[Trust] citation lookup failed", "doi", doi, "error", err)
		}
		if record != nil {
			if record.Retracted {
				return &Assessment{
					Score: retractedTrust,
					Provenance: Provenance{
						Source:     "citations",
						Identifier: doi,
						Citations:  record.Citations,
						Retracted:  true,
					},
				}
			}
			if score, ok := citationBucket(record.Citations); ok {
				return &Assessment{
					Score: score,
					Provenance: Provenance{
						Source:     "citations",
						Identifier: doi,
						Citations:  record.Citations,
					},
				}
			}
			// zero citations is inconclusive, fall through to the classifier
		}
	}

	if e.classifier == nil || sample == "" {
		return nil
	}

	docType, confidence, err := e.classifier.ClassifyDocument(ctx, sample)
	if err != nil {
		logger.Warn("[Trust] document classification failed", "error", err)
		return nil
	}

	score, ok := docTypeTrust[docType]
	if !ok {
		score = neutralTrust
	}

	return &Assessment{
		Score: score,
		Provenance: Provenance{
			Source:     "classifier",
			DocType:    docType,
			Confidence: confidence,
		},
	}
}

// titleSignal scores the document via the scholarly-works index. Unlike the
// identifier path, a published-but-uncited work still yields a score.
func (e *Engine) titleSignal(ctx context.Context, title string) *Assessment {
	if e.titles == nil || title == "" {
		return nil
	}

	record, err := e.titles.SearchByTitle(ctx, title)
	if err != nil {
		logger.Warn("[Trust] title search failed", "title", title, "error", err)
		return nil
	}
	if record == nil {
		return nil
	}

	provenance := Provenance{
		Source:    "title_search",
		Citations: record.Citations,
		Retracted: record.Retracted,
	}

	if record.Retracted {
		return &Assessment{Score: retractedTrust, Provenance: provenance}
	}

	score := 0.75
	if bucket, ok := citationBucket(record.Citations); ok {
		score = bucket
	}

	return &Assessment{Score: score, Provenance: provenance}
}

func citationBucket(citations int) (float64, bool) {
	switch {
	case citations > 100:
		return 0.95, true
	case citations > 10:
		return 0.85, true
	case citations > 0:
		return 0.75, true
	default:
		return 0, false
	}
}

func isLabNoteHint(hint string) bool {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "note", "lab_note", "labnote":
		return true
	default:
		return false
	}
}
