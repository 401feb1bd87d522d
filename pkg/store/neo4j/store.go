package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/neurograph-hq/neurograph/pkg/store"
)

// Store implements store.GraphStore against Neo4j. Every statement is
// parameterized; values are never interpolated into Cypher text.
type Store struct {
	client *Client
}

// NewStore creates a graph store backed by the given client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// UpsertDocument merges a document node by name, overwriting trust_score
// and refreshing ingested_at on every run.
func (s *Store) UpsertDocument(ctx context.Context, name string, trustScore float64) error {
	session := s.client.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (d:Document {name: $name})
SET d.trust_score = $trust, d.ingested_at = datetime()
`, map[string]any{"name": name, "trust": trustScore})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

const upsertTripleCypher = `
MATCH (doc:Document {name: $source})
MERGE (s:Concept {name: $subject})
MERGE (o:Concept {name: $object})
MERGE (s)-[r:RELATION {type: $type}]->(o)
ON CREATE SET r.weight = $trust,
              r.sources = [doc.name],
              r.status = 'PROVISIONAL',
              r.created_at = datetime()
ON MATCH SET r.weight = (r.weight + $trust) / 2,
             r.sources = r.sources + [doc.name]
`

// UpsertTriple merges both concept endpoints and the edge keyed by
// (subject, type, object). First observation seeds the weight with the
// upsert's trust score; re-observation averages it and appends the
// document to the edge's sources.
func (s *Store) UpsertTriple(ctx context.Context, up store.TripleUpsert) error {
	session := s.client.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, upsertTripleCypher, map[string]any{
			"source":  up.Document,
			"subject": up.Subject,
			"type":    up.Predicate,
			"object":  up.Object,
			"trust":   up.Trust,
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert triple: %w", err)
	}
	return nil
}

// ListProvisional returns up to limit PROVISIONAL relations, newest first.
func (s *Store) ListProvisional(ctx context.Context, limit int) ([]store.Relation, error) {
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Concept)-[r:RELATION]->(o:Concept)
WHERE coalesce(r.status, 'PROVISIONAL') = 'PROVISIONAL'
RETURN elementId(r) AS id,
       s.name AS subject,
       r.type AS predicate,
       o.name AS object,
       r.weight AS weight,
       r.sources AS sources,
       coalesce(r.status, 'PROVISIONAL') AS status,
       r.created_at AS created_at,
       r.validated_at AS validated_at
ORDER BY r.created_at DESC
LIMIT $limit
`, map[string]any{"limit": limit})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list provisional relations: %w", err)
	}

	records := result.([]*db.Record)
	relations := make([]store.Relation, 0, len(records))
	for _, record := range records {
		relations = append(relations, relationFromRecord(record))
	}
	return relations, nil
}

// CommitReview validates relations by their opaque graph identity,
// applying reviewer corrections to subject/predicate/object text. The
// validation timestamp is set once and preserved on repeated commits.
func (s *Store) CommitReview(ctx context.Context, corrections []store.ReviewCorrection) (int, error) {
	if len(corrections) == 0 {
		return 0, nil
	}

	rows := make([]map[string]any, 0, len(corrections))
	for _, c := range corrections {
		rows = append(rows, map[string]any{
			"id":        c.ID,
			"subject":   c.Subject,
			"predicate": c.Predicate,
			"object":    c.Object,
		})
	}

	session := s.client.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $rows AS row
MATCH (s:Concept)-[r:RELATION]->(o:Concept)
WHERE elementId(r) = row.id
SET s.name = CASE WHEN row.subject <> '' THEN row.subject ELSE s.name END,
    r.type = CASE WHEN row.predicate <> '' THEN toUpper(row.predicate) ELSE r.type END,
    o.name = CASE WHEN row.object <> '' THEN row.object ELSE o.name END,
    r.status = 'VALIDATED',
    r.validated_at = coalesce(r.validated_at, datetime())
RETURN count(r) AS updated
`, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		updated, _ := record.Get("updated")
		return updated, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to commit review: %w", err)
	}

	updated, _ := result.(int64)
	return int(updated), nil
}

// ListDocuments returns all ingested documents, most recent first.
func (s *Store) ListDocuments(ctx context.Context) ([]store.Document, error) {
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (d:Document)
RETURN d.name AS name,
       d.trust_score AS trust_score,
       d.ingested_at AS ingested_at
ORDER BY d.ingested_at DESC
`, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	records := result.([]*db.Record)
	documents := make([]store.Document, 0, len(records))
	for _, record := range records {
		documents = append(documents, store.Document{
			Name:       recordString(record, "name"),
			TrustScore: recordFloat(record, "trust_score"),
			IngestedAt: recordTime(record, "ingested_at"),
		})
	}
	return documents, nil
}

// GetConcept returns a concept with all relations touching it, or nil when
// the concept does not exist.
func (s *Store) GetConcept(ctx context.Context, name string) (*store.Concept, error) {
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:Concept {name: $name})
OPTIONAL MATCH (s:Concept)-[r:RELATION]->(o:Concept)
WHERE s = c OR o = c
RETURN c.name AS concept,
       elementId(r) AS id,
       s.name AS subject,
       r.type AS predicate,
       o.name AS object,
       r.weight AS weight,
       r.sources AS sources,
       coalesce(r.status, 'PROVISIONAL') AS status,
       r.created_at AS created_at,
       r.validated_at AS validated_at
`, map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}

	records := result.([]*db.Record)
	if len(records) == 0 {
		return nil, nil
	}

	concept := &store.Concept{
		Name:      recordString(records[0], "concept"),
		Relations: []store.Relation{},
	}
	for _, record := range records {
		if recordString(record, "id") == "" {
			// concept exists but has no relations yet
			continue
		}
		concept.Relations = append(concept.Relations, relationFromRecord(record))
	}
	return concept, nil
}

// Ping verifies the underlying connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func relationFromRecord(record *db.Record) store.Relation {
	relation := store.Relation{
		ID:        recordString(record, "id"),
		Subject:   recordString(record, "subject"),
		Predicate: recordString(record, "predicate"),
		Object:    recordString(record, "object"),
		Weight:    recordFloat(record, "weight"),
		Sources:   recordStrings(record, "sources"),
		Status:    recordString(record, "status"),
		CreatedAt: recordTime(record, "created_at"),
	}
	if validated := recordTime(record, "validated_at"); !validated.IsZero() {
		relation.Validated = &validated
	}
	return relation
}

func recordString(record *db.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	text, _ := value.(string)
	return text
}

func recordFloat(record *db.Record, key string) float64 {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func recordStrings(record *db.Record, key string) []string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

func recordTime(record *db.Record, key string) time.Time {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return time.Time{}
	}
	// zoned DATETIME values arrive from the driver as native time.Time
	t, _ := value.(time.Time)
	return t
}
