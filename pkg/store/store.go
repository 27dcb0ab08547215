// Package store defines the persistence contract for the brand relationship
// graph. Backends persist brands as nodes and relationships as labeled edges
// keyed by the (source, target, category, context) tuple.
package store

import (
	"context"
	"strings"

	"github.com/signalhouse/brandgraph/pkg/common"
)

// GraphDataLimit bounds unfiltered graph exports.
const GraphDataLimit = 1000

// GraphNode is a brand node in a graph export.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// GraphEdge is a relationship edge in a graph export.
type GraphEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// GraphData is the node/edge form of the stored graph used by the
// visualization endpoint and the CLI graph command.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Stats summarizes the stored graph.
type Stats struct {
	Brands        int            `json:"brands"`
	Relationships int            `json:"relationships"`
	Categories    []string       `json:"categories"`
	ByType        map[string]int `json:"by_type"`
}

// RelationStore persists and queries the brand relationship graph.
//
// Lookup narrows by whatever parameters are non-empty: an empty context
// matches any context within the category, an empty category matches any
// relationship between the pair. Results come back most recently updated
// first. A store never substitutes a context the caller did not ask for.
//
// All backends wrap connectivity failures in common.ErrStoreUnavailable so
// the resolver can distinguish "not stored" from "store down".
type RelationStore interface {
	// UpsertBrand creates or updates a brand node.
	UpsertBrand(ctx context.Context, name string, props map[string]any) error

	// UpsertRelationship creates or updates the edge keyed by the
	// relationship's (source, target, category, context) tuple.
	UpsertRelationship(ctx context.Context, rel common.Relationship) error

	// Lookup returns relationships from source to target, narrowed by
	// category and context when non-empty.
	Lookup(ctx context.Context, source, target, category, relContext string) ([]common.Relationship, error)

	// RelationshipsFor returns all relationships touching the named brand
	// in either direction, optionally narrowed by category.
	RelationshipsFor(ctx context.Context, name, category string) ([]common.Relationship, error)

	// GraphData exports nodes and edges for visualization, narrowed by
	// category when non-empty. Unfiltered exports are capped at
	// GraphDataLimit edges.
	GraphData(ctx context.Context, category string) (GraphData, error)

	// Stats summarizes the stored graph.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// Key normalizes an identifying string for matching: trimmed and lowercased.
// Backends apply it to brand names, categories, and contexts so "Apple" and
// "apple " address the same node.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
