package store

import (
	"context"
	"time"
)

// Relation lifecycle states. A relation is created PROVISIONAL by the
// merge engine and moves to VALIDATED only through a review commit.
const (
	StatusProvisional = "PROVISIONAL"
	StatusValidated   = "VALIDATED"
)

// Document is a persisted source document node.
type Document struct {
	Name       string    `json:"name"`
	TrustScore float64   `json:"trust_score"`
	IngestedAt time.Time `json:"ingested_at"`
}

// TripleUpsert describes one observation of a triple from a source
// document. Predicate must already be the canonical edge type. Trust
// seeds the edge weight on first observation and feeds the running
// average on re-observation.
type TripleUpsert struct {
	Subject   string
	Predicate string
	Object    string

	Document string
	Trust    float64
}

// Relation is a directed Concept→Concept edge as stored in the graph.
// ID is the store's opaque edge identity used for review targeting.
type Relation struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Predicate string     `json:"predicate"`
	Object    string     `json:"object"`
	Weight    float64    `json:"weight"`
	Sources   []string   `json:"sources"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Validated *time.Time `json:"validated_at,omitempty"`
}

// ReviewCorrection validates one relation by its opaque identity,
// optionally rewriting the reviewer-corrected subject/predicate/object
// text. Empty fields leave the stored value untouched.
type ReviewCorrection struct {
	ID        string `json:"id" validate:"required"`
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Concept is a node in the knowledge graph with its connected relations.
type Concept struct {
	Name      string     `json:"name"`
	Relations []Relation `json:"relations"`
}

// GraphStore is the persistence contract of the merge engine: idempotent
// document upsert, provisional triple upsert with weight averaging,
// provisional listing by recency, and batch review commit by identity.
// All statements issued by implementations are parameterized.
type GraphStore interface {
	// UpsertDocument merges a document node by name, overwriting its
	// trust score and refreshing its ingestion timestamp.
	UpsertDocument(ctx context.Context, name string, trustScore float64) error

	// UpsertTriple ensures both concept endpoints exist and merges the
	// directed edge keyed by (subject, predicate, object). On first
	// observation the edge weight is the document's trust score; on
	// re-observation the weight becomes the average of the stored weight
	// and the new trust score, and the document name is appended to the
	// edge's sources.
	UpsertTriple(ctx context.Context, up TripleUpsert) error

	// ListProvisional returns up to limit PROVISIONAL relations, most
	// recently created first.
	ListProvisional(ctx context.Context, limit int) ([]Relation, error)

	// CommitReview validates the given relations, stamping validated_at
	// on first commit and leaving it untouched on repeats. It returns
	// the number of relations matched.
	CommitReview(ctx context.Context, corrections []ReviewCorrection) (int, error)

	// ListDocuments returns all ingested documents, most recent first.
	ListDocuments(ctx context.Context) ([]Document, error)

	// GetConcept returns a concept and its relations, or nil when the
	// concept does not exist.
	GetConcept(ctx context.Context, name string) (*Concept, error)

	// Ping verifies the store connection is alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
