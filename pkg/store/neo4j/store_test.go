package neo4j

import (
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

func testRecord(keys []string, values []any) *db.Record {
	return &db.Record{Keys: keys, Values: values}
}

func TestRelationFromRecord(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	record := testRecord(
		[]string{"id", "subject", "predicate", "object", "weight", "sources", "status", "created_at", "validated_at"},
		[]any{
			"4:abc:17",
			"Dopamine",
			"MODULATES",
			"Reward signaling",
			0.85,
			[]any{"doc1.pdf", "doc2.pdf"},
			"PROVISIONAL",
			created,
			nil,
		},
	)

	relation := relationFromRecord(record)

	if relation.ID != "4:abc:17" {
		t.Fatalf("unexpected id: %q", relation.ID)
	}
	if relation.Subject != "Dopamine" || relation.Object != "Reward signaling" {
		t.Fatalf("unexpected endpoints: %q -> %q", relation.Subject, relation.Object)
	}
	if relation.Predicate != "MODULATES" {
		t.Fatalf("unexpected predicate: %q", relation.Predicate)
	}
	if relation.Weight != 0.85 {
		t.Fatalf("unexpected weight: %v", relation.Weight)
	}
	if len(relation.Sources) != 2 || relation.Sources[0] != "doc1.pdf" {
		t.Fatalf("unexpected sources: %v", relation.Sources)
	}
	if !relation.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", relation.CreatedAt)
	}
	if relation.Validated != nil {
		t.Fatalf("expected nil validated_at, got %v", relation.Validated)
	}
}

func TestRelationFromRecordValidated(t *testing.T) {
	validated := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	record := testRecord(
		[]string{"id", "subject", "predicate", "object", "weight", "sources", "status", "created_at", "validated_at"},
		[]any{
			"4:abc:18",
			"A",
			"CAUSES",
			"B",
			int64(1),
			[]any{"doc.pdf"},
			"VALIDATED",
			nil,
			validated,
		},
	)

	relation := relationFromRecord(record)

	if relation.Status != "VALIDATED" {
		t.Fatalf("unexpected status: %q", relation.Status)
	}
	if relation.Validated == nil || !relation.Validated.Equal(validated) {
		t.Fatalf("unexpected validated_at: %v", relation.Validated)
	}
	// integer weight from the store still parses
	if relation.Weight != 1 {
		t.Fatalf("unexpected weight: %v", relation.Weight)
	}
}

func TestUpsertTripleStatementBindsTrust(t *testing.T) {
	// the upsert's trust score drives both the initial weight and the
	// running average, not a re-read of the document node
	if !strings.Contains(upsertTripleCypher, "ON CREATE SET r.weight = $trust") {
		t.Fatalf("create arm does not bind $trust:\n%s", upsertTripleCypher)
	}
	if !strings.Contains(upsertTripleCypher, "(r.weight + $trust) / 2") {
		t.Fatalf("match arm does not average with $trust:\n%s", upsertTripleCypher)
	}
}

func TestRecordHelpersTolerateMissingValues(t *testing.T) {
	record := testRecord([]string{"name"}, []any{nil})

	if got := recordString(record, "name"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := recordString(record, "missing"); got != "" {
		t.Fatalf("expected empty string for missing key, got %q", got)
	}
	if got := recordFloat(record, "name"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := recordStrings(record, "name"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := recordTime(record, "name"); !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}
}
