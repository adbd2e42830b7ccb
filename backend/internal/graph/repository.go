package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"carton/backend/internal/concept"
	"carton/backend/pkg/config"
	apperrors "carton/backend/pkg/errors"
	"carton/backend/pkg/logger"
)

// Repository handles all Neo4j operations on the :Wiki namespace.
//
// Concept nodes carry short property names: n (name), c (canonical form),
// d (description), t (last write time) and id.
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Named("graph"),
	}
}

// Connect opens a driver from cfg and verifies connectivity.
func Connect(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}
	return driver, nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: r.database,
	})
}

// EnsureIndexes creates the name and canonical-form indexes when missing.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, query := range []string{
		"CREATE INDEX wiki_concept_name IF NOT EXISTS FOR (c:Wiki) ON (c.n)",
		"CREATE INDEX wiki_concept_canonical IF NOT EXISTS FOR (c:Wiki) ON (c.c)",
	} {
		res, err := session.Run(ctx, query, nil)
		if err != nil {
			return apperrors.NewGraphQueryFailed(query, err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return apperrors.NewGraphQueryFailed(query, err)
		}
	}
	return nil
}

// ResetWiki deletes every :Wiki node and its relationships. Nodes under
// other labels are left alone. It returns the number of nodes deleted.
func (r *Repository) ResetWiki(ctx context.Context) (int, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := `
		MATCH (c:Wiki)
		DETACH DELETE c
	`
	res, err := session.Run(ctx, query, nil)
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("reset wiki", err)
	}
	summary, err := res.Consume(ctx)
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("reset wiki", err)
	}

	deleted := summary.Counters().NodesDeleted()
	r.logger.Info("Wiki nodes deleted", zap.Int("nodes", deleted))
	return deleted, nil
}

// SaveConcept merges the concept node and one edge per relationship target in
// a single write transaction. Edge targets that do not exist yet are created
// as bare nodes.
func (r *Repository) SaveConcept(ctx context.Context, c concept.Concept) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := mergeConcept(ctx, tx, c.Name, c.Description, now); err != nil {
			return nil, err
		}
		for _, rel := range c.Relationships {
			for _, target := range rel.Targets {
				if err := mergeRelationship(ctx, tx, c.Name, rel.Type, concept.Canonical(target), now); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save concept %s: %w", c.Name, err)
	}

	r.logger.Info("Concept stored",
		zap.String("concept", c.Name),
		zap.Int("relationships", c.Relationships.Count()),
	)
	return nil
}

func mergeConcept(ctx context.Context, tx neo4j.ManagedTransaction, name, description, now string) error {
	if description == "" {
		description = concept.PlaceholderDescription(name)
	}
	query := `
		MERGE (c:Wiki {n: $name})
		ON CREATE SET c.id = $id
		SET c.c = $canonical,
		    c.d = $description,
		    c.t = datetime($timestamp)
		RETURN c.n as name
	`
	res, err := tx.Run(ctx, query, map[string]any{
		"name":        name,
		"id":          uuid.New().String(),
		"canonical":   concept.Key(name),
		"description": description,
		"timestamp":   now,
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("merge concept", err)
	}
	_, err = res.Consume(ctx)
	return err
}

func mergeRelationship(ctx context.Context, tx neo4j.ManagedTransaction, from, relType, to, now string) error {
	edge := sanitizeRelType(relType)
	if edge == "" {
		return apperrors.NewValidationFailed("relationship", fmt.Sprintf("type %q has no usable characters", relType))
	}

	// Relationship types cannot be parameterized; edge is restricted to [A-Z0-9_].
	query := fmt.Sprintf(`
		MATCH (c1:Wiki {n: $from})
		MERGE (c2:Wiki {n: $to})
		ON CREATE SET c2.id = $id, c2.c = $canonical
		MERGE (c1)-[r:%s]->(c2)
		SET r.ts = datetime($timestamp)
	`, edge)
	res, err := tx.Run(ctx, query, map[string]any{
		"from":      from,
		"to":        to,
		"id":        uuid.New().String(),
		"canonical": concept.Key(to),
		"timestamp": now,
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("merge relationship "+edge, err)
	}
	_, err = res.Consume(ctx)
	return err
}

// ListConceptSummaries returns every concept with its description, ordered by name.
func (r *Repository) ListConceptSummaries(ctx context.Context) ([]concept.Summary, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `MATCH (c:Wiki) RETURN c.n as name, c.d as description ORDER BY c.n`
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(query, err)
	}

	summaries := []concept.Summary{}
	for result.Next(ctx) {
		record := result.Record()
		name := getStringFromRecord(record, "name")
		if name == "" {
			continue
		}
		summaries = append(summaries, concept.Summary{
			Name:        name,
			Description: getStringFromRecord(record, "description"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed(query, err)
	}
	return summaries, nil
}
