package brand

import (
	"testing"

	"github.com/signalhouse/brandgraph/pkg/common"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "inc with period", input: "Apple Inc.", want: "Apple"},
		{name: "corp", input: "Microsoft Corp", want: "Microsoft"},
		{name: "llc", input: "Tesla LLC", want: "Tesla"},
		{name: "platforms with inc", input: "Meta Platforms, Inc.", want: "Meta"},
		{name: "canonical mapping", input: "Twitter", want: "X"},
		{name: "aws mapping", input: "Amazon Web Services", want: "AWS"},
		{name: "only one suffix stripped", input: "Acme Company Inc", want: "Acme Company"},
		{name: "no suffix", input: "Nintendo", want: "Nintendo"},
		{name: "surrounding whitespace", input: "  Sony Corporation  ", want: "Sony"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Apple Inc.", "Meta Platforms, Inc.", "Twitter", "Nintendo"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestDeduplicate(t *testing.T) {
	brands := []common.Brand{
		{Name: "Apple Inc.", Mentions: 1, Snippets: []string{"Apple Inc. reported earnings."}},
		{Name: "Apple", Mentions: 2, Snippets: []string{"Apple released a new phone."}},
		{Name: "Samsung", Mentions: 3},
	}

	result := Deduplicate(brands)

	if len(result) != 2 {
		t.Fatalf("expected 2 brands after dedup, got %d", len(result))
	}

	apple := result[0]
	if apple.Name != "Apple" {
		t.Fatalf("expected normalized name Apple, got %q", apple.Name)
	}
	if apple.Mentions != 3 {
		t.Fatalf("expected merged mentions 3, got %d", apple.Mentions)
	}
	if len(apple.Snippets) != 2 {
		t.Fatalf("expected 2 merged snippets, got %d", len(apple.Snippets))
	}
	if len(apple.Aliases) != 1 || apple.Aliases[0] != "Apple Inc." {
		t.Fatalf("expected original name as alias, got %v", apple.Aliases)
	}
}

func TestDeduplicatePreservesMentionSum(t *testing.T) {
	brands := []common.Brand{
		{Name: "Google", Mentions: 2},
		{Name: "Alphabet Inc", Mentions: 1},
		{Name: "Meta Platforms", Mentions: 4},
		{Name: "Meta", Mentions: 1},
		{Name: "Twitter", Mentions: 2},
		{Name: "X", Mentions: 1},
	}

	before := 0
	for _, b := range brands {
		before += b.Mentions
	}

	result := Deduplicate(brands)

	after := 0
	for _, b := range result {
		after += b.Mentions
	}
	if before != after {
		t.Fatalf("mention sum changed: before %d, after %d", before, after)
	}
	if len(result) > len(brands) {
		t.Fatalf("dedup grew the list: %d > %d", len(result), len(brands))
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 brands (Google, Meta, X), got %d: %v", len(result), result)
	}
}

func TestDeduplicateMergesAliases(t *testing.T) {
	brands := []common.Brand{
		{Name: "AWS", Mentions: 1, Aliases: []string{"Amazon Cloud"}},
		{Name: "Amazon Web Services", Mentions: 1, Aliases: []string{"Amazon Cloud", "AWS Cloud"}},
	}

	result := Deduplicate(brands)
	if len(result) != 1 {
		t.Fatalf("expected 1 brand, got %d", len(result))
	}

	aliases := result[0].Aliases
	want := map[string]bool{"Amazon Cloud": false, "AWS Cloud": false, "Amazon Web Services": false}
	for _, a := range aliases {
		if _, ok := want[a]; !ok {
			t.Fatalf("unexpected alias %q", a)
		}
		want[a] = true
	}
	for a, found := range want {
		if !found {
			t.Fatalf("missing alias %q in %v", a, aliases)
		}
	}
}
