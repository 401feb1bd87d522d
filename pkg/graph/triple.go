package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Triple is a single subject-predicate-object assertion extracted from
// document content. The predicate is kept as produced by the model;
// NormalizePredicate derives the canonical edge type from it.
type Triple struct {
	Subject   string `json:"subject" jsonschema_description:"The entity the assertion is about"`
	Predicate string `json:"predicate" jsonschema_description:"The relationship between subject and object"`
	Object    string `json:"object" jsonschema_description:"The entity the subject relates to"`
}

// NormalizePredicate converts a free-text predicate into a canonical edge
// type: trimmed, upper-cased, internal whitespace collapsed to single
// underscores. "is a" becomes "IS_A".
func NormalizePredicate(predicate string) string {
	fields := strings.Fields(strings.TrimSpace(predicate))
	return strings.ToUpper(strings.Join(fields, "_"))
}

// tripleEnvelope is the schema handed to the extraction model. Its custom
// decoder tolerates the response shapes observed in practice: a
// {"triples": [...]} object, a bare array, and several alias keys per
// field. All shape guessing lives here so the rest of the pipeline only
// sees normalized triples.
type tripleEnvelope struct {
	Triples []Triple `json:"triples" jsonschema_description:"All subject-predicate-object assertions found in the text"`
}

var (
	subjectAliases   = []string{"subject", "s", "subj"}
	predicateAliases = []string{"predicate", "p", "pred"}
	objectAliases    = []string{"object", "o", "obj"}
)

func (e *tripleEnvelope) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var items []map[string]any
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
	} else {
		var wrapper struct {
			Triples json.RawMessage `json:"triples"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		if len(wrapper.Triples) == 0 {
			return nil
		}
		if err := json.Unmarshal(wrapper.Triples, &items); err != nil {
			return err
		}
	}

	for _, item := range items {
		if triple, ok := tripleFromMap(item); ok {
			e.Triples = append(e.Triples, triple)
		}
	}

	return nil
}

// tripleFromMap accepts a candidate object only if all three roles are
// present under one of their alias keys with a non-empty value.
func tripleFromMap(item map[string]any) (Triple, bool) {
	subject, ok := pickString(item, subjectAliases)
	if !ok {
		return Triple{}, false
	}
	predicate, ok := pickString(item, predicateAliases)
	if !ok {
		return Triple{}, false
	}
	object, ok := pickString(item, objectAliases)
	if !ok {
		return Triple{}, false
	}

	return Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}, true
}

func pickString(item map[string]any, aliases []string) (string, bool) {
	for _, key := range aliases {
		value, ok := item[key]
		if !ok || value == nil {
			continue
		}

		var text string
		switch v := value.(type) {
		case string:
			text = v
		case float64, bool:
			text = fmt.Sprint(v)
		default:
			continue
		}

		text = strings.TrimSpace(text)
		if text != "" {
			return text, true
		}
	}
	return "", false
}
