// Package memory implements store.RelationStore in process memory. It backs
// tests and single-shot CLI runs where no graph database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/store"
)

type brandNode struct {
	name  string
	props map[string]any
}

type relKey struct {
	source   string
	target   string
	category string
	context  string
}

type relEntry struct {
	rel common.Relationship
	seq int64
}

// MemoryStore holds the graph in maps guarded by a single RWMutex. Writes
// are last-writer-wins on the (source, target, category, context) key.
type MemoryStore struct {
	mu     sync.RWMutex
	brands map[string]*brandNode
	rels   map[relKey]*relEntry
	seq    int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		brands: make(map[string]*brandNode),
		rels:   make(map[relKey]*relEntry),
	}
}

// UpsertBrand creates or updates a brand node, merging props into any
// existing ones.
func (s *MemoryStore) UpsertBrand(ctx context.Context, name string, props map[string]any) error {
	key := store.Key(name)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.brands[key]
	if !ok {
		node = &brandNode{name: name, props: make(map[string]any)}
		s.brands[key] = node
	}
	for k, v := range props {
		node.props[k] = v
	}
	return nil
}

// UpsertRelationship writes the edge keyed by the relationship's identifying
// tuple, implicitly creating both brand nodes.
func (s *MemoryStore) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	if err := s.UpsertBrand(ctx, rel.Source, nil); err != nil {
		return err
	}
	if err := s.UpsertBrand(ctx, rel.Target, nil); err != nil {
		return err
	}

	key := relKey{
		source:   store.Key(rel.Source),
		target:   store.Key(rel.Target),
		category: store.Key(rel.Category),
		context:  store.Key(rel.Context),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	rel.UpdatedAt = time.Now()
	s.rels[key] = &relEntry{rel: rel, seq: s.seq}
	return nil
}

// Lookup returns relationships from source to target, narrowed by category
// and context when non-empty, most recently written first.
func (s *MemoryStore) Lookup(
	ctx context.Context,
	source, target, category, relContext string,
) ([]common.Relationship, error) {
	sourceKey := store.Key(source)
	targetKey := store.Key(target)
	categoryKey := store.Key(category)
	contextKey := store.Key(relContext)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*relEntry
	for key, entry := range s.rels {
		if key.source != sourceKey || key.target != targetKey {
			continue
		}
		if categoryKey != "" && key.category != categoryKey {
			continue
		}
		if contextKey != "" && key.context != contextKey {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})

	results := make([]common.Relationship, 0, len(entries))
	for _, e := range entries {
		results = append(results, e.rel)
	}
	return results, nil
}

// RelationshipsFor returns relationships touching the named brand in either
// direction, optionally narrowed by category.
func (s *MemoryStore) RelationshipsFor(
	ctx context.Context,
	name, category string,
) ([]common.Relationship, error) {
	nameKey := store.Key(name)
	categoryKey := store.Key(category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*relEntry
	for key, entry := range s.rels {
		if key.source != nameKey && key.target != nameKey {
			continue
		}
		if categoryKey != "" && key.category != categoryKey {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})

	results := make([]common.Relationship, 0, len(entries))
	for _, e := range entries {
		results = append(results, e.rel)
	}
	return results, nil
}

// GraphData exports nodes and edges, narrowed by category when non-empty.
// Only brands that participate in a relationship appear as nodes.
func (s *MemoryStore) GraphData(ctx context.Context, category string) (store.GraphData, error) {
	categoryKey := store.Key(category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]relKey, 0, len(s.rels))
	for key := range s.rels {
		if categoryKey != "" && key.category != categoryKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.rels[keys[i]], s.rels[keys[j]]
		return a.seq < b.seq
	})
	if categoryKey == "" && len(keys) > store.GraphDataLimit {
		keys = keys[:store.GraphDataLimit]
	}

	data := store.GraphData{
		Nodes: []store.GraphNode{},
		Edges: []store.GraphEdge{},
	}
	seen := map[string]bool{}
	for _, key := range keys {
		rel := s.rels[key].rel
		for _, name := range []string{rel.Source, rel.Target} {
			nodeKey := store.Key(name)
			if !seen[nodeKey] {
				seen[nodeKey] = true
				label := name
				if node, ok := s.brands[nodeKey]; ok {
					label = node.name
				}
				data.Nodes = append(data.Nodes, store.GraphNode{ID: label, Label: label})
			}
		}
		data.Edges = append(data.Edges, store.GraphEdge{
			Source:   rel.Source,
			Target:   rel.Target,
			Type:     string(rel.Type),
			Category: rel.Category,
		})
	}
	return data, nil
}

// Stats summarizes the stored graph.
func (s *MemoryStore) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := map[string]bool{}
	byType := map[string]int{}
	for key, entry := range s.rels {
		if key.category != "" {
			categories[key.category] = true
		}
		byType[string(entry.rel.Type)]++
	}

	stats := store.Stats{
		Brands:        len(s.brands),
		Relationships: len(s.rels),
		Categories:    make([]string, 0, len(categories)),
		ByType:        byType,
	}
	for c := range categories {
		stats.Categories = append(stats.Categories, c)
	}
	sort.Strings(stats.Categories)
	return stats, nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
