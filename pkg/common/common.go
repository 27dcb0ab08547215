package common

import "time"

// Brand represents a single organization extracted from the input text.
// The Name field holds the canonical form produced by normalization;
// every raw spelling that mapped onto it survives in Aliases.
type Brand struct {
	Name     string   `json:"name"`
	Mentions int      `json:"mentions"`
	Snippets []string `json:"snippets"`
	Aliases  []string `json:"aliases"`
}

// Relationship is the atomic persisted fact of the system: how Source relates
// to Target, under a coarse Category and a fine-grained Context. The store
// enforces uniqueness on the lower-cased (source, target, category, context)
// 4-tuple, never on the pair alone, because the same two brands may hold
// different relationship types in different contexts at the same time.
type Relationship struct {
	Source     string           `json:"source"`
	Target     string           `json:"target"`
	Type       RelationshipType `json:"relationship_type"`
	Category   string           `json:"category"`
	Context    string           `json:"relationship_context"`
	Confidence float64          `json:"confidence"`
	Evidence   []string         `json:"evidence"`
	Origin     RecordOrigin     `json:"source_type"`
	Sentiment  string           `json:"sentiment,omitempty"`
	Reasoning  string           `json:"reasoning,omitempty"`
	Flagged    bool             `json:"flagged"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Citation is a source reference found in one analysis run. Citations are
// never written to the relation store.
type Citation struct {
	Source string       `json:"source"`
	Text   string       `json:"text"`
	Type   CitationType `json:"citation_type"`
	URL    string       `json:"url,omitempty"`
	Date   string       `json:"date,omitempty"`
}

// FlagKind identifies what sort of item was flagged.
type FlagKind string

const (
	FlagBrand        FlagKind = "brand"
	FlagRelationship FlagKind = "relationship"
	FlagCitation     FlagKind = "citation"
)

// FlaggedItem marks a brand, relationship, or citation for human review.
type FlaggedItem struct {
	Kind           FlagKind `json:"item_type"`
	Item           string   `json:"item"`
	Reason         string   `json:"reason"`
	Confidence     *float64 `json:"confidence,omitempty"`
	RequiresReview bool     `json:"requires_review"`
}

// SearchResult is one ranked hit from the web search fallback,
// provider-agnostic.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// AnalysisResult is the aggregate output of one analysis run. It is owned
// exclusively by the run that produced it; the only state that outlives the
// call is whatever the resolver persisted to the relation store.
type AnalysisResult struct {
	SubjectBrand  string         `json:"subject_brand"`
	Category      string         `json:"category"`
	Brands        []Brand        `json:"brands"`
	Relationships []Relationship `json:"relationships"`
	Citations     []Citation     `json:"citations"`
	FlaggedItems  []FlaggedItem  `json:"flagged_items"`
	Metadata      map[string]any `json:"metadata"`
}
