// Package pgx implements store.RelationStore on PostgreSQL. Brands and
// relationships live in two tables with the (source, target, category,
// context) tuple enforced by a unique index, so upserts are plain
// ON CONFLICT updates.
package pgx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/leaselock"
	"github.com/signalhouse/brandgraph/pkg/store"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// PgxStore implements the relation store on a pgx connection pool.
type PgxStore struct {
	conn pgxIConn
	pool *pgxpool.Pool
}

// NewPgxStoreParams configures the PostgreSQL connection.
type NewPgxStoreParams struct {
	DatabaseURL string
	// MigrationsPath points at the migration files, e.g. "file://migrations".
	// Empty skips migrations.
	MigrationsPath string
}

// NewPgxStore connects to PostgreSQL and applies pending migrations.
// Migrations run under an advisory lease so concurrent replicas starting
// against the same database apply them one at a time.
func NewPgxStore(ctx context.Context, params NewPgxStoreParams) (*PgxStore, error) {
	pool, err := pgxpool.New(ctx, params.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %s", common.ErrStoreUnavailable, err)
	}

	if params.MigrationsPath != "" {
		err := leaselock.New(pool).WithLease(ctx, "schema_migrations", leaselock.Options{Wait: true},
			func(ctx context.Context) error {
				return RunMigrations(params.MigrationsPath, params.DatabaseURL)
			})
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &PgxStore{conn: pool, pool: pool}, nil
}

// NewPgxStoreWithConnection creates a store on an existing connection,
// used by tests and by callers that manage pooling themselves.
func NewPgxStoreWithConnection(conn pgxIConn) *PgxStore {
	return &PgxStore{conn: conn}
}

// RunMigrations applies pending schema migrations.
func RunMigrations(sourcePath, databaseURL string) error {
	m, err := migrate.New(sourcePath, databaseURL)
	if err != nil {
		return fmt.Errorf("%w: open migrations: %s", common.ErrStoreUnavailable, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: apply migrations: %s", common.ErrStoreUnavailable, err)
	}
	return nil
}

// UpsertBrand creates or updates a brand row matched on its normalized key.
func (s *PgxStore) UpsertBrand(ctx context.Context, name string, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	// Model output can carry NUL bytes or invalid UTF-8, which Postgres
	// rejects outright.
	name = util.SanitizePostgresText(name)
	_, err := s.conn.Exec(ctx, `
		INSERT INTO brands (key, name, props, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name,
		    props = brands.props || EXCLUDED.props,
		    updated_at = now()
	`, store.Key(name), name, props)
	if err != nil {
		return fmt.Errorf("%w: upsert brand: %s", common.ErrStoreUnavailable, err)
	}
	return nil
}

// UpsertRelationship ensures both brand rows exist, then upserts the edge
// keyed by the unique (source, target, category, context) index.
func (s *PgxStore) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	if err := s.UpsertBrand(ctx, rel.Source, nil); err != nil {
		return err
	}
	if err := s.UpsertBrand(ctx, rel.Target, nil); err != nil {
		return err
	}

	evidence := make([]string, 0, len(rel.Evidence))
	for _, line := range rel.Evidence {
		evidence = append(evidence, util.SanitizePostgresText(line))
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO relationships (
			source_id, target_id, category, relationship_context,
			relationship_type, confidence, evidence, source_type,
			sentiment, reasoning, flagged, updated_at
		)
		SELECT src.id, tgt.id, $3, $4, $5, $6, $7, $8, $9, $10, $11, now()
		FROM brands src, brands tgt
		WHERE src.key = $1 AND tgt.key = $2
		ON CONFLICT (source_id, target_id, category, relationship_context) DO UPDATE
		SET relationship_type = EXCLUDED.relationship_type,
		    confidence = EXCLUDED.confidence,
		    evidence = EXCLUDED.evidence,
		    source_type = EXCLUDED.source_type,
		    sentiment = EXCLUDED.sentiment,
		    reasoning = EXCLUDED.reasoning,
		    flagged = EXCLUDED.flagged,
		    updated_at = now()
	`,
		store.Key(rel.Source), store.Key(rel.Target),
		store.Key(rel.Category), store.Key(rel.Context),
		string(rel.Type), rel.Confidence, evidence, string(rel.Origin),
		rel.Sentiment, util.SanitizePostgresText(rel.Reasoning), rel.Flagged,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert relationship: %s", common.ErrStoreUnavailable, err)
	}
	return nil
}

const relationshipColumns = `
	src.name, tgt.name, r.relationship_type, r.category,
	r.relationship_context, r.confidence, r.evidence, r.source_type,
	r.sentiment, r.reasoning, r.flagged, r.updated_at
`

// Lookup returns relationships from source to target, narrowed by category
// and context when non-empty, most recently updated first.
func (s *PgxStore) Lookup(
	ctx context.Context,
	source, target, category, relContext string,
) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships r
		JOIN brands src ON src.id = r.source_id
		JOIN brands tgt ON tgt.id = r.target_id
		WHERE src.key = $1 AND tgt.key = $2
		  AND ($3 = '' OR r.category = $3)
		  AND ($4 = '' OR r.relationship_context = $4)
		ORDER BY r.updated_at DESC
	`, store.Key(source), store.Key(target), store.Key(category), store.Key(relContext))
	if err != nil {
		return nil, fmt.Errorf("%w: lookup: %s", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

// RelationshipsFor returns relationships touching the named brand in either
// direction, optionally narrowed by category.
func (s *PgxStore) RelationshipsFor(
	ctx context.Context,
	name, category string,
) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships r
		JOIN brands src ON src.id = r.source_id
		JOIN brands tgt ON tgt.id = r.target_id
		WHERE (src.key = $1 OR tgt.key = $1)
		  AND ($2 = '' OR r.category = $2)
		ORDER BY r.updated_at DESC
	`, store.Key(name), store.Key(category))
	if err != nil {
		return nil, fmt.Errorf("%w: relationships for brand: %s", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

func scanRelationships(rows pgxv5.Rows) ([]common.Relationship, error) {
	rels := []common.Relationship{}
	for rows.Next() {
		var (
			rel       common.Relationship
			relType   string
			origin    string
			updatedAt time.Time
		)
		if err := rows.Scan(
			&rel.Source, &rel.Target, &relType, &rel.Category,
			&rel.Context, &rel.Confidence, &rel.Evidence, &origin,
			&rel.Sentiment, &rel.Reasoning, &rel.Flagged, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan relationship: %s", common.ErrStoreUnavailable, err)
		}
		rel.Type = common.RelationshipType(relType)
		rel.Origin = common.RecordOrigin(origin)
		rel.UpdatedAt = updatedAt
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate relationships: %s", common.ErrStoreUnavailable, err)
	}
	return rels, nil
}

// GraphData exports nodes and edges for visualization, narrowed by category
// when non-empty. Unfiltered exports are capped at store.GraphDataLimit.
func (s *PgxStore) GraphData(ctx context.Context, category string) (store.GraphData, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT src.name, tgt.name, r.relationship_type, r.category
		FROM relationships r
		JOIN brands src ON src.id = r.source_id
		JOIN brands tgt ON tgt.id = r.target_id
		WHERE ($1 = '' OR r.category = $1)
		ORDER BY r.id
		LIMIT $2
	`, store.Key(category), store.GraphDataLimit)
	if err != nil {
		return store.GraphData{}, fmt.Errorf("%w: graph data: %s", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	data := store.GraphData{
		Nodes: []store.GraphNode{},
		Edges: []store.GraphEdge{},
	}
	seen := map[string]bool{}
	for rows.Next() {
		var edge store.GraphEdge
		if err := rows.Scan(&edge.Source, &edge.Target, &edge.Type, &edge.Category); err != nil {
			return store.GraphData{}, fmt.Errorf("%w: scan edge: %s", common.ErrStoreUnavailable, err)
		}
		for _, name := range []string{edge.Source, edge.Target} {
			if !seen[store.Key(name)] {
				seen[store.Key(name)] = true
				data.Nodes = append(data.Nodes, store.GraphNode{ID: name, Label: name})
			}
		}
		data.Edges = append(data.Edges, edge)
	}
	if err := rows.Err(); err != nil {
		return store.GraphData{}, fmt.Errorf("%w: iterate edges: %s", common.ErrStoreUnavailable, err)
	}
	return data, nil
}

// Stats summarizes the stored graph.
func (s *PgxStore) Stats(ctx context.Context) (store.Stats, error) {
	stats := store.Stats{
		Categories: []string{},
		ByType:     map[string]int{},
	}

	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM brands`).Scan(&stats.Brands)
	if err != nil {
		return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT relationship_type, count(*) FROM relationships GROUP BY relationship_type
	`)
	if err != nil {
		return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			relType string
			count   int
		)
		if err := rows.Scan(&relType, &count); err != nil {
			return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
		}
		stats.ByType[relType] = count
		stats.Relationships += count
	}
	if err := rows.Err(); err != nil {
		return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
	}

	catRows, err := s.conn.Query(ctx, `
		SELECT DISTINCT category FROM relationships WHERE category <> '' ORDER BY category
	`)
	if err != nil {
		return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		if err := catRows.Scan(&category); err != nil {
			return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
		}
		stats.Categories = append(stats.Categories, category)
	}
	if err := catRows.Err(); err != nil {
		return store.Stats{}, fmt.Errorf("%w: stats: %s", common.ErrStoreUnavailable, err)
	}

	return stats, nil
}

// Close releases the connection pool.
func (s *PgxStore) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
