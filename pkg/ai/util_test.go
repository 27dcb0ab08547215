package ai

import (
	"errors"
	"testing"

	"github.com/signalhouse/brandgraph/pkg/common"
)

func TestStripMarkdownFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "no fence",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "unterminated fence",
			input: "```json\n{\"a\": 1}",
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFence(tt.input); got != tt.want {
				t.Fatalf("StripMarkdownFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeModelJSON(t *testing.T) {
	type verdict struct {
		Type       string  `json:"relationship_type"`
		Confidence float64 `json:"confidence"`
	}

	tests := []struct {
		name  string
		input string
		want  verdict
	}{
		{
			name:  "strict json",
			input: `{"relationship_type":"competitor","confidence":0.85}`,
			want:  verdict{Type: "competitor", Confidence: 0.85},
		},
		{
			name:  "fenced json",
			input: "```json\n{\"relationship_type\": \"partner\", \"confidence\": 0.7}\n```",
			want:  verdict{Type: "partner", Confidence: 0.7},
		},
		{
			name:  "double encoded",
			input: `"{\"relationship_type\": \"supplier\", \"confidence\": 0.6}"`,
			want:  verdict{Type: "supplier", Confidence: 0.6},
		},
		{
			name:  "unquoted keys repaired",
			input: `{relationship_type: 'neutral', confidence: 0.4}`,
			want:  verdict{Type: "neutral", Confidence: 0.4},
		},
		{
			name:  "trailing comma repaired",
			input: `{"relationship_type":"investor","confidence":0.9,}`,
			want:  verdict{Type: "investor", Confidence: 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got verdict
			if err := DecodeModelJSON(tt.input, &got); err != nil {
				t.Fatalf("DecodeModelJSON() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("DecodeModelJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeModelJSON_Unrecoverable(t *testing.T) {
	var out map[string]any
	err := DecodeModelJSON("I could not determine the relationship.", &out)
	if err == nil {
		t.Fatal("DecodeModelJSON() expected error for non-JSON prose")
	}
	if !errors.Is(err, common.ErrMalformedInference) {
		t.Fatalf("DecodeModelJSON() error = %v, want ErrMalformedInference", err)
	}
}
