package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type triple struct {
		Subject   string `json:"subject"`
		Predicate string `json:"predicate,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  triple
	}{
		{
			name:  "valid json object",
			input: `{"subject":"Dopamine"}`,
			want:  triple{Subject: "Dopamine"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{subject: 'Dopamine'}`,
			want:  triple{Subject: "Dopamine"},
		},
		{
			name:  "trailing comma",
			input: `{"subject":"Dopamine",}`,
			want:  triple{Subject: "Dopamine"},
		},
		{
			name:  "missing endbracket",
			input: `{"subject":"Dopamine`,
			want:  triple{Subject: "Dopamine"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{subject: 'Dopamine'}"`,
			want:  triple{Subject: "Dopamine"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"subject\": \"Dopamine\"\n}\n",
			want:  triple{Subject: "Dopamine"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got triple
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Subject != tc.want.Subject || got.Predicate != tc.want.Predicate {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type triple struct {
		Subject string `json:"subject"`
	}

	input := `[{subject:'A'},{subject:'B',}]`
	var got []triple
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Subject != "A" || got[1].Subject != "B" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two triples A,B", got)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	type classification struct {
		DocType    string  `json:"doc_type"`
		Confidence float64 `json:"confidence"`
	}

	input := `"{ \"doc_type\": \"TEXTBOOK\", \"confidence\": 0.92 }"`
	var got classification
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if got.DocType != "TEXTBOOK" || got.Confidence != 0.92 {
		t.Fatalf("UnmarshalFlexible() got = %+v", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type triple struct {
		Subject string `json:"subject"`
	}

	var got triple
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}
