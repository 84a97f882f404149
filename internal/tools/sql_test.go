package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// recordingQuerier records queries and replays canned rows.
type recordingQuerier struct {
	queries []string
	rows    *stubRows
	err     error
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, sql)
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

// stubRows is a minimal pgx.Rows over fixed column names and values.
type stubRows struct {
	cols   []string
	values [][]any
	idx    int
	err    error
}

func (r *stubRows) Close()                        {}
func (r *stubRows) Err() error                    { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *stubRows) RawValues() [][]byte           { return nil }
func (r *stubRows) Conn() *pgx.Conn               { return nil }
func (r *stubRows) Scan(...any) error             { return errors.New("not implemented") }

func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Values() ([]any, error) {
	return r.values[r.idx-1], nil
}

func TestValidateQuery(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"plain select", "SELECT * FROM products", ""},
		{"lowercase select", "select name, price from products order by price desc", ""},
		{"leading whitespace", "   SELECT 1", ""},
		{"aggregation", "SELECT category, AVG(price) FROM products GROUP BY category", ""},
		{"not a select", "SHOW TABLES", "only SELECT queries are allowed"},
		{"empty", "", "only SELECT queries are allowed"},
		{"drop table", "DROP TABLE users;", "only SELECT queries are allowed"},
		{"delete disguised", "SELECT 1; DELETE FROM users", `forbidden keyword "DELETE"`},
		{"insert", "SELECT * FROM products WHERE name = 'x'; INSERT INTO products VALUES (1)", `forbidden keyword "INSERT"`},
		{"comment", "SELECT * FROM users -- hide the rest", `forbidden keyword "--"`},
		{"block comment", "SELECT /* sneaky */ * FROM users", `forbidden keyword "/*"`},
		{"union select", "SELECT name FROM products UNION SELECT email FROM users", `forbidden keyword "UNION SELECT"`},
		{"tautology", "SELECT * FROM users WHERE name = '' OR 1=1", `forbidden keyword "OR 1=1"`},
		{"quoted tautology", "SELECT * FROM users WHERE name = '' OR '1'='1'", `forbidden keyword "OR '1'='1'"`},
		{"lowercase drop", "select * from users; drop table users", `forbidden keyword "DROP"`},
		// The screen is a plain substring scan, so identifiers embedding
		// a token are rejected too.
		{"embedded token", "SELECT created_at FROM orders", `forbidden keyword "CREATE"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateQuery(tc.query)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("validateQuery(%q) = %v, want nil", tc.query, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("validateQuery(%q) = nil, want error containing %q", tc.query, tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestSQLToolRejectionNeverQueriesStore(t *testing.T) {
	q := &recordingQuerier{}
	tool := NewSQLTool(q)

	payload, err := tool.Execute(context.Background(), map[string]any{
		"sql_query": "DROP TABLE users;",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if parsed["success"] != false {
		t.Errorf("success = %v, want false", parsed["success"])
	}
	if parsed["data"] != nil {
		t.Errorf("data = %v, want null", parsed["data"])
	}
	if len(q.queries) != 0 {
		t.Fatalf("store was queried %d times for a rejected statement", len(q.queries))
	}
}

func TestSQLToolSuccess(t *testing.T) {
	q := &recordingQuerier{rows: &stubRows{
		cols: []string{"category", "total"},
		values: [][]any{
			{"Electronics", 12500.50},
			{"Books", 830.25},
		},
	}}
	tool := NewSQLTool(q)

	payload, err := tool.Execute(context.Background(), map[string]any{
		"sql_query": "SELECT category, SUM(amount) AS total FROM transactions GROUP BY category",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var parsed struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    []map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if !parsed.Success {
		t.Fatalf("success = false: %s", parsed.Message)
	}
	if parsed.Message != "SQL query executed successfully." {
		t.Errorf("message = %q", parsed.Message)
	}
	if len(parsed.Data) != 2 {
		t.Fatalf("got %d rows, want 2", len(parsed.Data))
	}
	if parsed.Data[0]["category"] != "Electronics" || parsed.Data[0]["total"] != 12500.50 {
		t.Errorf("first row = %v", parsed.Data[0])
	}
}

func TestSQLToolEmptyResult(t *testing.T) {
	q := &recordingQuerier{rows: &stubRows{cols: []string{"n"}}}
	tool := NewSQLTool(q)

	payload, _ := tool.Execute(context.Background(), map[string]any{
		"sql_query": "SELECT 1 AS n WHERE false",
	})

	var parsed map[string]any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if parsed["success"] != true {
		t.Errorf("success = %v, want true", parsed["success"])
	}
	data, ok := parsed["data"].([]any)
	if !ok || len(data) != 0 {
		t.Errorf("data = %v, want an empty array (not null)", parsed["data"])
	}
}

func TestSQLToolQueryError(t *testing.T) {
	q := &recordingQuerier{err: errors.New(`relation "nope" does not exist`)}
	tool := NewSQLTool(q)

	payload, err := tool.Execute(context.Background(), map[string]any{
		"sql_query": "SELECT * FROM nope",
	})
	if err != nil {
		t.Fatalf("Execute returned error %v; failures must be in the payload", err)
	}
	if !strings.Contains(payload, `"success":false`) || !strings.Contains(payload, "does not exist") {
		t.Errorf("payload = %s", payload)
	}
}

func TestSQLToolRowErrorAfterIteration(t *testing.T) {
	q := &recordingQuerier{rows: &stubRows{
		cols:   []string{"n"},
		values: [][]any{{1}},
		err:    errors.New("connection reset mid-stream"),
	}}
	tool := NewSQLTool(q)

	payload, _ := tool.Execute(context.Background(), map[string]any{
		"sql_query": "SELECT n FROM numbers",
	})
	if !strings.Contains(payload, `"success":false`) || !strings.Contains(payload, "connection reset") {
		t.Errorf("payload = %s", payload)
	}
}
