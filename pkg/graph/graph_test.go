package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neurograph-hq/neurograph/pkg/ai"
	"github.com/neurograph-hq/neurograph/pkg/prompt"
	"github.com/neurograph-hq/neurograph/pkg/store"
)

// fakeAIClient implements ai.GraphAIClient for pipeline tests. Structured
// responses are fed through the real flexible decoder so the tolerant
// parsing path is exercised.
type fakeAIClient struct {
	completionCalls int
	formatCalls     int
	imageCalls      int

	completionResponse string
	formatResponse     string
	formatErr          error
	formatErrOnce      bool

	lastFormatPrompt string

	imageDescriptions []string
	imageErr          error
}

func (f *fakeAIClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	f.completionCalls++
	return f.completionResponse, nil
}

func (f *fakeAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	f.formatCalls++
	f.lastFormatPrompt = prompt
	if f.formatErr != nil {
		err := f.formatErr
		if f.formatErrOnce {
			f.formatErr = nil
		}
		return err
	}
	return ai.UnmarshalFlexible(f.formatResponse, out)
}

func (f *fakeAIClient) GenerateImageDescription(
	ctx context.Context,
	prompt string,
	image ai.ImageBase64,
) (string, error) {
	f.imageCalls++
	if f.imageErr != nil {
		return "", f.imageErr
	}
	if len(f.imageDescriptions) > 0 {
		description := f.imageDescriptions[0]
		f.imageDescriptions = f.imageDescriptions[1:]
		return description, nil
	}
	return "a figure", nil
}

func (f *fakeAIClient) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error {
	return nil
}

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics {
	return ai.ModelMetrics{}
}

// memoryStore implements store.GraphStore in memory with the same
// averaging semantics as the real store.
type memoryStore struct {
	documents map[string]store.Document
	relations []*store.Relation

	upsertErr error
	nextID    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{documents: map[string]store.Document{}}
}

func (m *memoryStore) UpsertDocument(ctx context.Context, name string, trustScore float64) error {
	m.documents[name] = store.Document{
		Name:       name,
		TrustScore: trustScore,
		IngestedAt: time.Now(),
	}
	return nil
}

func (m *memoryStore) UpsertTriple(ctx context.Context, up store.TripleUpsert) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, r := range m.relations {
		if r.Subject == up.Subject && r.Predicate == up.Predicate && r.Object == up.Object {
			r.Weight = (r.Weight + up.Trust) / 2
			r.Sources = append(r.Sources, up.Document)
			return nil
		}
	}
	m.nextID++
	m.relations = append(m.relations, &store.Relation{
		ID:        fmt.Sprintf("rel-%d", m.nextID),
		Subject:   up.Subject,
		Predicate: up.Predicate,
		Object:    up.Object,
		Weight:    up.Trust,
		Sources:   []string{up.Document},
		Status:    store.StatusProvisional,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *memoryStore) ListProvisional(ctx context.Context, limit int) ([]store.Relation, error) {
	out := []store.Relation{}
	for _, r := range m.relations {
		if r.Status == store.StatusProvisional && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryStore) CommitReview(ctx context.Context, corrections []store.ReviewCorrection) (int, error) {
	matched := 0
	for _, c := range corrections {
		for _, r := range m.relations {
			if r.ID != c.ID {
				continue
			}
			r.Status = store.StatusValidated
			if r.Validated == nil {
				now := time.Now()
				r.Validated = &now
			}
			matched++
		}
	}
	return matched, nil
}

func (m *memoryStore) ListDocuments(ctx context.Context) ([]store.Document, error) {
	out := []store.Document{}
	for _, d := range m.documents {
		out = append(out, d)
	}
	return out, nil
}

func (m *memoryStore) GetConcept(ctx context.Context, name string) (*store.Concept, error) {
	return nil, nil
}

func (m *memoryStore) Ping(ctx context.Context) error { return nil }

func (m *memoryStore) Close(ctx context.Context) error { return nil }

func testPrompts(t *testing.T) *prompt.Store {
	t.Helper()
	content := `visual_analyst: Describe this scientific figure in one paragraph.
graph_extractor: 'Extract all knowledge triples as JSON from the following content: %s'
doc_classifier: 'Classify the document type of the following sample: %s'
`
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write prompts: %v", err)
	}
	prompts, err := prompt.NewStore(path)
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	return prompts
}

var errModelDown = errors.New("model unreachable")
