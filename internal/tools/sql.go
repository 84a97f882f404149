package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
)

// RowQuerier is the narrow read surface the SQL capability needs.
// *pgxpool.Pool satisfies it.
type RowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// forbiddenTokens rejects data/schema mutation and the common injection
// idioms. Matching is a case-insensitive substring scan over the whole
// query, same as the validation contract: presence of any token rejects
// the query before it ever reaches the database.
var forbiddenTokens = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "TRUNCATE",
	"GRANT", "REVOKE", "RENAME", "ATTACH", "DETACH", "PRAGMA", "VACUUM",
	"--", "/*", "*/",
	"UNION ALL SELECT", "UNION SELECT",
	"OR 1=1", "OR '1'='1'",
}

// SQLTool executes read-only analytical queries against Postgres.
// Every query passes the safety screen first; a rejected query never
// touches the store.
type SQLTool struct {
	db RowQuerier
}

// NewSQLTool creates a SQLTool backed by db.
func NewSQLTool(db RowQuerier) *SQLTool {
	return &SQLTool{db: db}
}

func (t *SQLTool) Name() string { return NameExecuteSQLQuery }

func (t *SQLTool) Description() string {
	return "Executes a SQL query against the PostgreSQL database. Use this for analytical queries, " +
		"aggregations, joins, or when precise numerical or date-based filtering/grouping is needed " +
		"across multiple tables (products, users, transactions)."
}

func (t *SQLTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"sql_query": {
				"type": "string",
				"description": "The full SQL query to execute, including SELECT, FROM, WHERE, GROUP BY, ORDER BY, etc."
			}
		},
		"required": ["sql_query"]
	}`)
}

func (t *SQLTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query, _ := params["sql_query"].(string)

	if err := validateQuery(query); err != nil {
		slog.Warn("sql query rejected", "reason", err)
		return Encode(map[string]any{
			"success": false,
			"message": err.Error(),
			"data":    nil,
		}), nil
	}

	slog.Info("executing sql", "query", query)

	rows, err := t.db.Query(ctx, query)
	if err != nil {
		return Encode(map[string]any{
			"success": false,
			"message": fmt.Sprintf("Error executing SQL query: %v", err),
			"data":    nil,
		}), nil
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	data := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return Errorf("error reading SQL result row: %v", err), nil
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return Encode(map[string]any{
			"success": false,
			"message": fmt.Sprintf("Error executing SQL query: %v", err),
			"data":    nil,
		}), nil
	}

	return Encode(map[string]any{
		"success": true,
		"message": "SQL query executed successfully.",
		"data":    data,
	}), nil
}

// validateQuery enforces the read-only contract: the statement must
// start with SELECT and must not contain any forbidden token.
func validateQuery(query string) error {
	normalized := strings.ToUpper(strings.TrimSpace(query))

	if !strings.HasPrefix(normalized, "SELECT") {
		return fmt.Errorf("SQL validation error: only SELECT queries are allowed, detected: %q", truncateQuery(query))
	}

	for _, token := range forbiddenTokens {
		if strings.Contains(normalized, token) {
			return fmt.Errorf("SQL validation error: forbidden keyword %q detected in query, only analytical SELECT queries are permitted", token)
		}
	}
	return nil
}

func truncateQuery(q string) string {
	if len(q) > 50 {
		return q[:50] + "..."
	}
	return q
}
