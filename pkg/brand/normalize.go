// Package brand normalizes and deduplicates brand identities so the rest of
// the pipeline can treat "Apple Inc.", "Apple Inc" and "Apple" as one brand.
package brand

import (
	"slices"
	"sort"
	"strings"

	"github.com/signalhouse/brandgraph/pkg/common"
)

// legal entity suffixes stripped during normalization, one strip per name
var suffixes = []string{
	" Platforms, Inc.", " Platforms Inc", " Platforms",
	" Inc.", " Inc",
	" LLC", " LLC.", " L.L.C.", " L.L.C",
	" Corp.", " Corp", " Corporation",
	" Ltd.", " Ltd", " Limited",
	" Co.", " Co", " Company",
	" S.A.", " SA", " S.A", " PLC", " Plc",
}

// canonicalNames maps well-known brand variants to the name the rest of the
// industry uses for them. Matching happens after suffix stripping and is
// case-insensitive.
var canonicalNames = map[string]string{
	"meta platforms":       "Meta",
	"alphabet":             "Google", // Alphabet is Google's parent
	"x (formerly twitter)": "X",
	"twitter":              "X",
	"amazon web services":  "AWS",
}

func init() {
	// longest first so " Platforms, Inc." wins over " Inc."
	sort.Slice(suffixes, func(i, j int) bool {
		return len(suffixes[i]) > len(suffixes[j])
	})
}

// Normalize returns the canonical form of a brand name: trimmed, with at
// most one legal entity suffix removed, and well-known variants mapped to
// their canonical names.
//
//	Normalize("Meta Platforms, Inc.") == "Meta"
//	Normalize("Apple Inc.")           == "Apple"
//	Normalize("Microsoft Corp")       == "Microsoft"
func Normalize(name string) string {
	normalized := strings.TrimSpace(name)

	for _, suffix := range suffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSpace(normalized[:len(normalized)-len(suffix)])
			break
		}
	}

	if canonical, ok := canonicalNames[strings.ToLower(normalized)]; ok {
		return canonical
	}

	return normalized
}

// Deduplicate merges brands whose normalized names collide. The first
// occurrence keeps its position and takes the normalized name; later
// duplicates contribute their mentions, snippets, and aliases. The sum of
// mentions across the output always equals the sum across the input.
func Deduplicate(brands []common.Brand) []common.Brand {
	seen := map[string]int{}
	result := make([]common.Brand, 0, len(brands))

	for _, b := range brands {
		normalized := Normalize(b.Name)
		key := strings.ToLower(normalized)

		idx, ok := seen[key]
		if !ok {
			original := b.Name
			b.Name = normalized
			if original != normalized && !slices.Contains(b.Aliases, original) {
				b.Aliases = append(b.Aliases, original)
			}
			seen[key] = len(result)
			result = append(result, b)
			continue
		}

		existing := &result[idx]
		existing.Mentions += b.Mentions
		existing.Snippets = append(existing.Snippets, b.Snippets...)
		for _, alias := range b.Aliases {
			if !slices.Contains(existing.Aliases, alias) {
				existing.Aliases = append(existing.Aliases, alias)
			}
		}
		if b.Name != normalized && !slices.Contains(existing.Aliases, b.Name) {
			existing.Aliases = append(existing.Aliases, b.Name)
		}
	}

	return result
}
