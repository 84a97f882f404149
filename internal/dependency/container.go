// Package dependency wires core shopsage services using go.uber.org/dig.
package dependency

import (
	"context"
	"errors"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/dig"

	"github.com/shopsage/shopsage/internal/agent"
	"github.com/shopsage/shopsage/internal/config"
	"github.com/shopsage/shopsage/internal/providers"
	"github.com/shopsage/shopsage/internal/schema"
	"github.com/shopsage/shopsage/internal/search"
	"github.com/shopsage/shopsage/internal/server"
	"github.com/shopsage/shopsage/internal/storage"
	"github.com/shopsage/shopsage/internal/tools"
)

// Container resolves core services on demand. Constructors only run
// when a getter needs them, so commands that never touch the model
// (e.g. index sync) do not require an API key, and commands that never
// touch the database do not open a pool. dig memoises each constructor,
// so repeated getters return the same singleton.
type Container struct {
	container *dig.Container
	db        *storage.DB // set when the database constructor runs
}

// Provider returns the model client.
func (c *Container) Provider() (schema.LLMProvider, error) {
	var out schema.LLMProvider
	err := c.container.Invoke(func(p schema.LLMProvider) { out = p })
	return out, err
}

// DB returns the database handle, connecting on first use.
func (c *Container) DB() (*storage.DB, error) {
	var out *storage.DB
	err := c.container.Invoke(func(db *storage.DB) { out = db })
	return out, err
}

// Orchestrator returns the query-answering loop.
func (c *Container) Orchestrator() (*agent.Orchestrator, error) {
	var out *agent.Orchestrator
	err := c.container.Invoke(func(o *agent.Orchestrator) { out = o })
	return out, err
}

// Syncer returns the Postgres to Meilisearch index syncer.
func (c *Container) Syncer() (*search.Syncer, error) {
	var out *search.Syncer
	err := c.container.Invoke(func(s *search.Syncer) { out = s })
	return out, err
}

// Server returns the HTTP API server.
func (c *Container) Server() (*server.Server, error) {
	var out *server.Server
	err := c.container.Invoke(func(s *server.Server) { out = s })
	return out, err
}

// Close releases resources that were actually resolved. Safe to call
// once, including when nothing was resolved.
func (c *Container) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

// New registers all service constructors from cfg. Nothing is resolved
// yet; ctx bounds the database connection attempt when a getter first
// needs it.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{container: dig.New()}

	if err := c.container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := c.container.Provide(newProvider); err != nil {
		return nil, err
	}
	if err := c.container.Provide(func(cfg *config.Config) (*storage.DB, error) {
		db, err := storage.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		c.db = db
		return db, nil
	}); err != nil {
		return nil, err
	}
	if err := c.container.Provide(newMeilisearchClient); err != nil {
		return nil, err
	}
	if err := c.container.Provide(newRegistry); err != nil {
		return nil, err
	}
	if err := c.container.Provide(newOrchestrator); err != nil {
		return nil, err
	}
	if err := c.container.Provide(newSyncer); err != nil {
		return nil, err
	}
	if err := c.container.Provide(newServer); err != nil {
		return nil, err
	}

	return c, nil
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	if cfg.Model.APIKey == "" {
		return nil, errors.New("no API key configured — set OPENAI_API_KEY or model.api_key")
	}
	return providers.NewOpenAIProvider(cfg.Model.APIKey, cfg.Model.APIBase, cfg.Model.Name), nil
}

func newMeilisearchClient(cfg *config.Config) meilisearch.ServiceManager {
	var opts []meilisearch.Option
	if cfg.Meilisearch.APIKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(cfg.Meilisearch.APIKey))
	}
	return meilisearch.New(cfg.Meilisearch.Host, opts...)
}

func newRegistry(cfg *config.Config, db *storage.DB, client meilisearch.ServiceManager) *tools.Registry {
	return tools.NewRegistry(
		tools.NewSearchTool(client),
		tools.NewSQLTool(db.Pool()),
		tools.NewChartTool(cfg.Charts.Dir),
	)
}

func newOrchestrator(cfg *config.Config, p schema.LLMProvider, reg *tools.Registry) *agent.Orchestrator {
	return agent.New(p, reg, agent.Settings{
		Model:       cfg.Model.Name,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		MaxSteps:    cfg.Agent.MaxSteps,
	})
}

func newSyncer(db *storage.DB, client meilisearch.ServiceManager) *search.Syncer {
	return search.NewSyncer(db.Pool(), client)
}

func newServer(cfg *config.Config, orchestrator *agent.Orchestrator) *server.Server {
	return server.New(cfg.Server, orchestrator)
}
