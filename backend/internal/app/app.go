// Package app assembles the store, graph, engine and tool executor from
// configuration. Both binaries share it.
package app

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"carton/backend/internal/engine"
	"carton/backend/internal/graph"
	"carton/backend/internal/store"
	"carton/backend/internal/tools"
	"carton/backend/internal/vcs"
	"carton/backend/pkg/config"
	"carton/backend/pkg/logger"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	Docs     store.DocumentStore
	Engine   *engine.Engine
	Executor *tools.Executor
	// Graph is nil when Neo4j was unreachable and RequireGraph was false.
	Graph *graph.Repository

	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// Options controls how strictly Build treats an unreachable graph.
type Options struct {
	// RequireGraph fails Build when Neo4j cannot be reached. Otherwise the
	// app runs on documents alone and the graph tools report an error.
	RequireGraph bool
	// Docs overrides the file store rooted at cfg.BasePath.
	Docs store.DocumentStore
}

// Build connects to the graph and wires everything else on top of it.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.Named("app")

	a := &App{Config: cfg, Docs: opts.Docs, logger: log}
	if a.Docs == nil {
		a.Docs = store.NewFileStore(cfg.BasePath)
	}

	driver, err := graph.Connect(ctx, cfg)
	switch {
	case err == nil:
		a.driver = driver
		a.Graph = graph.NewRepository(driver, cfg.Neo4jDatabase)
		if err := a.Graph.EnsureIndexes(ctx); err != nil {
			log.Warn("Failed to ensure graph indexes", zap.Error(err))
		}
	case opts.RequireGraph:
		return nil, err
	default:
		log.Warn("Neo4j unavailable, running on documents only",
			zap.String("uri", cfg.Neo4jURI),
			zap.Error(err),
		)
	}

	var graphStore engine.GraphStore
	if a.Graph != nil {
		graphStore = a.Graph
	}
	a.Engine = engine.New(a.Docs, graphStore, engine.OptionsFromConfig(cfg))

	a.Executor = tools.NewExecutor(a.Engine)
	if a.Graph != nil {
		a.Executor.SetGraphReader(a.Graph)
	}
	if cfg.GitEnabled {
		a.Executor.SetSyncer(vcs.NewSyncer(cfg))
		log.Info("Repository sync enabled",
			zap.String("repo", cfg.RepoURL),
			zap.String("branch", cfg.Branch),
		)
	}

	log.Info("Application wired",
		zap.String("base_path", cfg.BasePath),
		zap.Bool("graph", a.Graph != nil),
	)
	return a, nil
}

// Close releases the graph driver.
func (a *App) Close() {
	if a.Graph == nil {
		return
	}
	if err := a.Graph.Close(); err != nil {
		a.logger.Warn("Failed to close graph driver", zap.Error(err))
	}
}
