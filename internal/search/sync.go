// Package search keeps the Meilisearch indexes in sync with the
// PostgreSQL catalogue. The products and users indexes are configured
// with explicit filterable/sortable/searchable attributes and reloaded
// from the database on demand or on a cron schedule.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meilisearch/meilisearch-go"
)

const taskPollInterval = 250 * time.Millisecond

// Syncer pushes catalogue rows from PostgreSQL into Meilisearch.
type Syncer struct {
	pool   *pgxpool.Pool
	client meilisearch.ServiceManager
}

// NewSyncer creates a Syncer over the given database pool and search
// client.
func NewSyncer(pool *pgxpool.Pool, client meilisearch.ServiceManager) *Syncer {
	return &Syncer{pool: pool, client: client}
}

// SyncAll configures and reloads both indexes. Each index is synced
// independently; the first failure aborts so the scheduler can retry
// the whole pass.
func (s *Syncer) SyncAll(ctx context.Context) error {
	if err := s.syncProducts(ctx); err != nil {
		return fmt.Errorf("sync products index: %w", err)
	}
	if err := s.syncUsers(ctx); err != nil {
		return fmt.Errorf("sync users index: %w", err)
	}
	return nil
}

func (s *Syncer) syncProducts(ctx context.Context) error {
	settings := &meilisearch.Settings{
		FilterableAttributes: []string{"category", "price", "brand"},
		SortableAttributes:   []string{"price"},
		SearchableAttributes: []string{"name", "category", "brand"},
		DisplayedAttributes:  []string{"product_id", "name", "category", "brand", "price"},
	}
	if err := s.applySettings(ctx, "products", settings); err != nil {
		return err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT product_id, name, category, brand, price FROM products`)
	if err != nil {
		return fmt.Errorf("query products: %w", err)
	}
	docs, err := productDocs(rows)
	if err != nil {
		return err
	}

	return s.addDocuments(ctx, "products", "product_id", docs)
}

func (s *Syncer) syncUsers(ctx context.Context) error {
	settings := &meilisearch.Settings{
		FilterableAttributes: []string{"location", "registration_date", "email"},
		SortableAttributes:   []string{"registration_date"},
		SearchableAttributes: []string{"name", "location", "email"},
		DisplayedAttributes:  []string{"user_id", "name", "email", "location", "registration_date"},
	}
	if err := s.applySettings(ctx, "users", settings); err != nil {
		return err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, name, email, location, registration_date FROM users`)
	if err != nil {
		return fmt.Errorf("query users: %w", err)
	}
	docs, err := userDocs(rows)
	if err != nil {
		return err
	}

	return s.addDocuments(ctx, "users", "user_id", docs)
}

func (s *Syncer) applySettings(ctx context.Context, indexUID string, settings *meilisearch.Settings) error {
	task, err := s.client.Index(indexUID).UpdateSettingsWithContext(ctx, settings)
	if err != nil {
		return fmt.Errorf("update settings for %s: %w", indexUID, err)
	}
	if _, err := s.client.WaitForTaskWithContext(ctx, task.TaskUID, taskPollInterval); err != nil {
		return fmt.Errorf("wait for settings task on %s: %w", indexUID, err)
	}
	slog.Debug("index settings updated", "index", indexUID)
	return nil
}

func (s *Syncer) addDocuments(ctx context.Context, indexUID, primaryKey string, docs []map[string]any) error {
	if len(docs) == 0 {
		slog.Info("no rows to index", "index", indexUID)
		return nil
	}

	task, err := s.client.Index(indexUID).AddDocumentsWithContext(ctx, docs, primaryKey)
	if err != nil {
		return fmt.Errorf("add documents to %s: %w", indexUID, err)
	}
	if _, err := s.client.WaitForTaskWithContext(ctx, task.TaskUID, taskPollInterval); err != nil {
		return fmt.Errorf("wait for indexing task on %s: %w", indexUID, err)
	}

	slog.Info("index synced", "index", indexUID, "documents", len(docs))
	return nil
}

// productDocs converts product rows into Meilisearch documents. Prices
// are forced to float64 so numeric filters behave.
func productDocs(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	var docs []map[string]any
	for rows.Next() {
		var (
			id, name        string
			category, brand *string
			price           *float64
		)
		if err := rows.Scan(&id, &name, &category, &brand, &price); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		doc := map[string]any{
			"product_id": id,
			"name":       name,
			"category":   deref(category),
			"brand":      deref(brand),
		}
		if price != nil {
			doc["price"] = *price
		} else {
			doc["price"] = 0.0
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read product rows: %w", err)
	}
	return docs, nil
}

// userDocs converts user rows into Meilisearch documents. Registration
// dates are rendered as ISO-8601 date strings.
func userDocs(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	var docs []map[string]any
	for rows.Next() {
		var (
			id                    string
			name, email, location *string
			regDate               *time.Time
		)
		if err := rows.Scan(&id, &name, &email, &location, &regDate); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		doc := map[string]any{
			"user_id":  id,
			"name":     deref(name),
			"email":    deref(email),
			"location": deref(location),
		}
		if regDate != nil {
			doc["registration_date"] = regDate.Format("2006-01-02")
		} else {
			doc["registration_date"] = ""
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read user rows: %w", err)
	}
	return docs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
