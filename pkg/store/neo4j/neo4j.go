// Package neo4j implements store.RelationStore on a Neo4j graph database.
// Brands are (:Brand) nodes and relationships are [:RELATES_TO] edges keyed
// by their category and context properties.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// missingConfidenceDefault fills in for edges written by other tools that
// carry no confidence property. Edges this store writes always have one, so
// the default never overrides a genuinely stored value.
const missingConfidenceDefault = 0.9

// Neo4jStore holds a driver; sessions are opened per call.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStoreParams configures the Neo4j connection.
type NewNeo4jStoreParams struct {
	URI      string
	Username string
	Password string
}

// NewNeo4jStore connects to Neo4j and verifies the connection.
func NewNeo4jStore(ctx context.Context, params NewNeo4jStoreParams) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrStoreUnavailable, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrStoreUnavailable, err)
	}
	return &Neo4jStore{driver: driver}, nil
}

// UpsertBrand creates or updates a brand node matched on its normalized key.
func (s *Neo4jStore) UpsertBrand(ctx context.Context, name string, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
		MERGE (b:Brand {key: $key})
		SET b.name = $name
		SET b += $properties
		SET b.updated_at = datetime()
		RETURN b
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"key":        store.Key(name),
			"name":       name,
			"properties": props,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: upsert brand: %s", common.ErrStoreUnavailable, err)
	}
	return nil
}

// UpsertRelationship ensures both brand nodes exist, then merges the edge
// keyed by (category, context).
func (s *Neo4jStore) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	if err := s.UpsertBrand(ctx, rel.Source, nil); err != nil {
		return err
	}
	if err := s.UpsertBrand(ctx, rel.Target, nil); err != nil {
		return err
	}

	props := map[string]any{
		"confidence":  rel.Confidence,
		"evidence":    rel.Evidence,
		"source_type": string(rel.Origin),
		"flagged":     rel.Flagged,
	}
	if rel.Reasoning != "" {
		props["reasoning"] = rel.Reasoning
	}
	if rel.Sentiment != "" {
		props["sentiment"] = rel.Sentiment
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
		MATCH (source:Brand {key: $source})
		MATCH (target:Brand {key: $target})
		MERGE (source)-[r:RELATES_TO {category: $category, relationship_context: $context}]->(target)
		SET r.relationship_type = $rel_type
		SET r += $properties
		SET r.updated_at = datetime()
		RETURN r
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"source":     store.Key(rel.Source),
			"target":     store.Key(rel.Target),
			"category":   store.Key(rel.Category),
			"context":    store.Key(rel.Context),
			"rel_type":   string(rel.Type),
			"properties": props,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: upsert relationship: %s", common.ErrStoreUnavailable, err)
	}
	return nil
}

// Lookup returns relationships from source to target, narrowed by category
// and context when non-empty, most recently updated first.
func (s *Neo4jStore) Lookup(
	ctx context.Context,
	source, target, category, relContext string,
) ([]common.Relationship, error) {
	query := `
	MATCH (source:Brand {key: $source})-[r:RELATES_TO]->(target:Brand {key: $target})
	WHERE ($category = '' OR r.category = $category)
	  AND ($context = '' OR r.relationship_context = $context)
	RETURN source.name AS source, target.name AS target,
	       r.relationship_type AS relationship_type,
	       r.category AS category,
	       r.relationship_context AS relationship_context,
	       properties(r) AS properties
	ORDER BY r.updated_at DESC
	`
	params := map[string]any{
		"source":   store.Key(source),
		"target":   store.Key(target),
		"category": store.Key(category),
		"context":  store.Key(relContext),
	}
	return s.queryRelationships(ctx, query, params)
}

// RelationshipsFor returns relationships touching the named brand in either
// direction, optionally narrowed by category.
func (s *Neo4jStore) RelationshipsFor(
	ctx context.Context,
	name, category string,
) ([]common.Relationship, error) {
	query := `
	MATCH (a:Brand {key: $brand})-[r:RELATES_TO]-(b:Brand)
	WHERE ($category = '' OR r.category = $category)
	RETURN startNode(r).name AS source, endNode(r).name AS target,
	       r.relationship_type AS relationship_type,
	       r.category AS category,
	       r.relationship_context AS relationship_context,
	       properties(r) AS properties
	ORDER BY r.updated_at DESC
	`
	params := map[string]any{
		"brand":    store.Key(name),
		"category": store.Key(category),
	}
	return s.queryRelationships(ctx, query, params)
}

func (s *Neo4jStore) queryRelationships(
	ctx context.Context,
	query string,
	params map[string]any,
) ([]common.Relationship, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		rels := make([]common.Relationship, 0, len(records))
		for _, record := range records {
			rels = append(rels, relationshipFromRecord(record))
		}
		return rels, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query relationships: %s", common.ErrStoreUnavailable, err)
	}
	return result.([]common.Relationship), nil
}

func relationshipFromRecord(record *neo4j.Record) common.Relationship {
	rel := common.Relationship{
		Source:   stringValue(record, "source"),
		Target:   stringValue(record, "target"),
		Type:     common.RelationshipType(stringValue(record, "relationship_type")),
		Category: stringValue(record, "category"),
		Context:  stringValue(record, "relationship_context"),
	}

	propsVal, ok := record.Get("properties")
	if !ok {
		return rel
	}
	props, ok := propsVal.(map[string]any)
	if !ok {
		return rel
	}

	switch conf := props["confidence"].(type) {
	case float64:
		rel.Confidence = conf
	case int64:
		rel.Confidence = float64(conf)
	default:
		rel.Confidence = missingConfidenceDefault
	}
	if origin, ok := props["source_type"].(string); ok {
		rel.Origin = common.RecordOrigin(origin)
	}
	if flagged, ok := props["flagged"].(bool); ok {
		rel.Flagged = flagged
	}
	if reasoning, ok := props["reasoning"].(string); ok {
		rel.Reasoning = reasoning
	}
	if sentiment, ok := props["sentiment"].(string); ok {
		rel.Sentiment = sentiment
	}
	if evidence, ok := props["evidence"].([]any); ok {
		for _, e := range evidence {
			if s, ok := e.(string); ok {
				rel.Evidence = append(rel.Evidence, s)
			}
		}
	}
	if updated, ok := props["updated_at"].(time.Time); ok {
		rel.UpdatedAt = updated
	}
	return rel
}

func stringValue(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}

// GraphData exports nodes and edges for visualization, narrowed by category
// when non-empty. Unfiltered exports are capped at store.GraphDataLimit.
func (s *Neo4jStore) GraphData(ctx context.Context, category string) (store.GraphData, error) {
	query := `
	MATCH (source:Brand)-[r:RELATES_TO]->(target:Brand)
	WHERE ($category = '' OR r.category = $category)
	RETURN source.name AS source, target.name AS target,
	       r.relationship_type AS relationship_type,
	       r.category AS category
	LIMIT $limit
	`
	params := map[string]any{
		"category": store.Key(category),
		"limit":    store.GraphDataLimit,
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		data := store.GraphData{
			Nodes: []store.GraphNode{},
			Edges: []store.GraphEdge{},
		}
		seen := map[string]bool{}
		for _, record := range records {
			source := stringValue(record, "source")
			target := stringValue(record, "target")
			for _, name := range []string{source, target} {
				if !seen[store.Key(name)] {
					seen[store.Key(name)] = true
					data.Nodes = append(data.Nodes, store.GraphNode{ID: name, Label: name})
				}
			}
			data.Edges = append(data.Edges, store.GraphEdge{
				Source:   source,
				Target:   target,
				Type:     stringValue(record, "relationship_type"),
				Category: stringValue(record, "category"),
			})
		}
		return data, nil
	})
	if err != nil {
		return store.GraphData{}, fmt.Errorf("%w: graph data: %s", common.ErrStoreUnavailable, err)
	}
	return result.(store.GraphData), nil
}

// Stats summarizes the stored graph.
func (s *Neo4jStore) Stats(ctx context.Context) (store.Stats, error) {
	query := `
	OPTIONAL MATCH (b:Brand)
	WITH count(b) AS brands
	OPTIONAL MATCH ()-[r:RELATES_TO]->()
	RETURN brands,
	       count(r) AS relationships,
	       collect(DISTINCT r.category) AS categories,
	       collect(r.relationship_type) AS types
	`

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}

		stats := store.Stats{
			Categories: []string{},
			ByType:     map[string]int{},
		}
		if brands, ok := record.Get("brands"); ok {
			if n, ok := brands.(int64); ok {
				stats.Brands = int(n)
			}
		}
		if rels, ok := record.Get("relationships"); ok {
			if n, ok := rels.(int64); ok {
				stats.Relationships = int(n)
			}
		}
		if cats, ok := record.Get("categories"); ok {
			if list, ok := cats.([]any); ok {
				for _, c := range list {
					if s, ok := c.(string); ok && s != "" {
						stats.Categories = append(stats.Categories, s)
					}
				}
			}
		}
		if types, ok := record.Get("types"); ok {
			if list, ok := types.([]any); ok {
				for _, t := range list {
					if s, ok := t.(string); ok {
						stats.ByType[s]++
					}
				}
			}
		}
		return stats, nil
	})
	if err != nil {
		return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
	}
	return result.(store.Stats), nil
}

// Close shuts down the driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
