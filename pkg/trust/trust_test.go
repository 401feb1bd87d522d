package trust

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeIdentifierLookup struct {
	record *CitationRecord
	err    error
	calls  int
}

func (f *fakeIdentifierLookup) CitationsByIdentifier(
	ctx context.Context,
	identifier string,
) (*CitationRecord, error) {
	f.calls++
	return f.record, f.err
}

type fakeTitleLookup struct {
	record *CitationRecord
	err    error
	calls  int
}

func (f *fakeTitleLookup) SearchByTitle(
	ctx context.Context,
	title string,
) (*CitationRecord, error) {
	f.calls++
	return f.record, f.err
}

type fakeClassifier struct {
	docType    DocumentType
	confidence float64
	err        error
	calls      int
}

func (f *fakeClassifier) ClassifyDocument(
	ctx context.Context,
	sample string,
) (DocumentType, float64, error) {
	f.calls++
	return f.docType, f.confidence, f.err
}

const doiSample = "Reward prediction errors. doi:10.1038/nn.2013 for details."

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain doi",
			text: "see 10.1038/nn.2013 for details",
			want: "10.1038/nn.2013",
		},
		{
			name: "trailing punctuation trimmed",
			text: "as shown in (10.1016/j.neuron.2020.01.001).",
			want: "10.1016/j.neuron.2020.01.001",
		},
		{
			name: "no doi",
			text: "lecture notes on synaptic plasticity",
			want: "",
		},
		{
			name: "empty",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindDOI(tt.text); got != tt.want {
				t.Fatalf("FindDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreIdentityOverride(t *testing.T) {
	identifiers := &fakeIdentifierLookup{record: &CitationRecord{Citations: 500}}
	titles := &fakeTitleLookup{record: &CitationRecord{Citations: 500}}
	classifier := &fakeClassifier{docType: DocTypeTextbook, confidence: 0.9}

	engine := NewEngine(NewEngineParams{
		Identifiers: identifiers,
		Titles:      titles,
		Classifier:  classifier,
	})

	for _, hint := range []string{"note", "LAB_NOTE", "labnote", " Note "} {
		got := engine.Score(context.Background(), Input{
			Sample:   doiSample,
			Title:    "My experiment",
			TypeHint: hint,
		})
		if got.Score != 1.0 {
			t.Fatalf("hint %q: expected score 1.0, got %v", hint, got.Score)
		}
		if got.Provenance.Source != "identity" {
			t.Fatalf("hint %q: expected identity provenance, got %q", hint, got.Provenance.Source)
		}
	}

	// no other signals may be consulted
	if identifiers.calls != 0 || titles.calls != 0 || classifier.calls != 0 {
		t.Fatalf(
			"identity override consulted other signals: identifiers=%d titles=%d classifier=%d",
			identifiers.calls, titles.calls, classifier.calls,
		)
	}
}

func TestScoreRetractionOverridesCitations(t *testing.T) {
	engine := NewEngine(NewEngineParams{
		Identifiers: &fakeIdentifierLookup{
			record: &CitationRecord{Citations: 500, Retracted: true},
		},
		Titles:     &fakeTitleLookup{record: &CitationRecord{Citations: 500}},
		Classifier: &fakeClassifier{docType: DocTypeTextbook, confidence: 0.9},
	})

	got := engine.Score(context.Background(), Input{
		Sample: doiSample,
		Title:  "Retracted study",
	})
	if got.Score != 0.1 {
		t.Fatalf("expected retracted score 0.1, got %v", got.Score)
	}
	if !got.Provenance.Retracted {
		t.Fatal("expected provenance to record the retraction")
	}
}

func TestScoreRetractionViaTitleSearch(t *testing.T) {
	engine := NewEngine(NewEngineParams{
		Titles: &fakeTitleLookup{
			record: &CitationRecord{Citations: 500, Retracted: true},
		},
		Classifier: &fakeClassifier{docType: DocTypeTextbook, confidence: 0.9},
	})

	got := engine.Score(context.Background(), Input{
		Sample: "no identifier here",
		Title:  "Retracted study",
	})
	if got.Score != 0.1 {
		t.Fatalf("expected retracted score 0.1, got %v", got.Score)
	}
}

func TestScoreCitationBuckets(t *testing.T) {
	tests := []struct {
		citations int
		want      float64
	}{
		{citations: 101, want: 0.95},
		{citations: 500, want: 0.95},
		{citations: 11, want: 0.85},
		{citations: 100, want: 0.85},
		{citations: 1, want: 0.75},
		{citations: 10, want: 0.75},
	}

	for _, tt := range tests {
		engine := NewEngine(NewEngineParams{
			Identifiers: &fakeIdentifierLookup{
				record: &CitationRecord{Citations: tt.citations},
			},
		})

		got := engine.Score(context.Background(), Input{Sample: doiSample})
		if got.Score != tt.want {
			t.Fatalf("citations %d: expected %v, got %v", tt.citations, tt.want, got.Score)
		}
		if got.Provenance.Source != "citations" {
			t.Fatalf("citations %d: expected citations provenance, got %q", tt.citations, got.Provenance.Source)
		}
	}
}

func TestScoreZeroCitationsFallsThroughToClassifier(t *testing.T) {
	classifier := &fakeClassifier{docType: DocTypeReviewArticle, confidence: 0.8}
	engine := NewEngine(NewEngineParams{
		Identifiers: &fakeIdentifierLookup{record: &CitationRecord{Citations: 0}},
		Classifier:  classifier,
	})

	got := engine.Score(context.Background(), Input{Sample: doiSample})
	if got.Score != 0.85 {
		t.Fatalf("expected classifier score 0.85, got %v", got.Score)
	}
	if classifier.calls != 1 {
		t.Fatalf("expected 1 classifier call, got %d", classifier.calls)
	}
}

func TestScoreLookupErrorDegrades(t *testing.T) {
	engine := NewEngine(NewEngineParams{
		Identifiers: &fakeIdentifierLookup{err: errors.New("network down")},
		Titles:      &fakeTitleLookup{err: errors.New("network down")},
		Classifier:  &fakeClassifier{docType: DocTypeLectureSlides, confidence: 0.7},
	})

	got := engine.Score(context.Background(), Input{
		Sample: doiSample,
		Title:  "Slides on neurotransmitters",
	})
	if got.Score != 0.70 {
		t.Fatalf("expected classifier fallback 0.70, got %v", got.Score)
	}
}

func TestScoreNeutralDefault(t *testing.T) {
	engine := NewEngine(NewEngineParams{})

	got := engine.Score(context.Background(), Input{Sample: "no identifier"})
	if got.Score != 0.5 {
		t.Fatalf("expected neutral 0.5, got %v", got.Score)
	}
	if got.Provenance.Source != "neutral" {
		t.Fatalf("expected neutral provenance, got %q", got.Provenance.Source)
	}
}

func TestScoreTakesMaximumOfPaths(t *testing.T) {
	tests := []struct {
		name       string
		classifier DocumentType
		title      *CitationRecord
		want       float64
		wantSource string
	}{
		{
			name:       "title path wins",
			classifier: DocTypeLectureSlides,
			title:      &CitationRecord{Citations: 50},
			want:       0.85,
			wantSource: "title_search",
		},
		{
			name:       "text path wins",
			classifier: DocTypeTextbook,
			title:      &CitationRecord{Citations: 1},
			want:       0.90,
			wantSource: "classifier",
		},
		{
			name:       "published but uncited title still scores",
			classifier: DocTypePopularScience,
			title:      &CitationRecord{Citations: 0},
			want:       0.75,
			wantSource: "title_search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(NewEngineParams{
				Titles:     &fakeTitleLookup{record: tt.title},
				Classifier: &fakeClassifier{docType: tt.classifier, confidence: 0.8},
			})

			got := engine.Score(context.Background(), Input{
				Sample: "no identifier in this text",
				Title:  "Some work",
			})
			if got.Score != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got.Score)
			}
			if got.Provenance.Source != tt.wantSource {
				t.Fatalf("expected source %q, got %q", tt.wantSource, got.Provenance.Source)
			}
		})
	}
}

func TestScholarClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fields") != "citationCount,isRetracted" {
			t.Errorf("unexpected fields query: %q", r.URL.Query().Get("fields"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"citationCount": 142, "isRetracted": false}`))
	}))
	defer srv.Close()

	client := NewScholarClient(NewScholarClientParams{BaseURL: srv.URL})
	record, err := client.CitationsByIdentifier(context.Background(), "10.1038/nn.2013")
	if err != nil {
		t.Fatalf("CitationsByIdentifier returned error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a citation record")
	}
	if record.Citations != 142 || record.Retracted {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestScholarClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewScholarClient(NewScholarClientParams{BaseURL: srv.URL})
	record, err := client.CitationsByIdentifier(context.Background(), "10.9999/unknown")
	if err != nil {
		t.Fatalf("expected no error for unknown paper, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record for unknown paper, got %+v", record)
	}
}

func TestOpenAlexClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "" {
			t.Error("expected search query parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"cited_by_count": 12, "is_retracted": true}]}`))
	}))
	defer srv.Close()

	client := NewOpenAlexClient(NewOpenAlexClientParams{BaseURL: srv.URL})
	record, err := client.SearchByTitle(context.Background(), "Synaptic pruning in adolescence")
	if err != nil {
		t.Fatalf("SearchByTitle returned error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a citation record")
	}
	if record.Citations != 12 || !record.Retracted {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestOpenAlexClientNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewOpenAlexClient(NewOpenAlexClientParams{BaseURL: srv.URL})
	record, err := client.SearchByTitle(context.Background(), "Unknown title")
	if err != nil {
		t.Fatalf("expected no error for empty results, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}
