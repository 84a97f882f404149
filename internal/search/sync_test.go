package search

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRows implements pgx.Rows over an in-memory slice. Only the
// methods the doc builders touch do anything useful.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.err }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Values() ([]any, error) {
	return f.rows[f.idx-1], nil
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.idx-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = row[i].(string)
		case **string:
			if row[i] == nil {
				*d = nil
			} else {
				s := row[i].(string)
				*d = &s
			}
		case **float64:
			if row[i] == nil {
				*d = nil
			} else {
				v := row[i].(float64)
				*d = &v
			}
		case **time.Time:
			if row[i] == nil {
				*d = nil
			} else {
				t := row[i].(time.Time)
				*d = &t
			}
		default:
			return errors.New("unsupported scan destination")
		}
	}
	return nil
}

func TestProductDocs(t *testing.T) {
	rows := &fakeRows{rows: [][]any{
		{"p1", "iPhone 14", "Electronics", "Apple", 999.99},
		{"p2", "Mystery Item", nil, nil, nil},
	}}

	docs, err := productDocs(rows)
	if err != nil {
		t.Fatalf("productDocs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	if docs[0]["product_id"] != "p1" || docs[0]["price"] != 999.99 {
		t.Errorf("unexpected first doc: %v", docs[0])
	}
	if docs[1]["category"] != "" || docs[1]["price"] != 0.0 {
		t.Errorf("null columns not defaulted: %v", docs[1])
	}
}

func TestUserDocs(t *testing.T) {
	reg := time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := &fakeRows{rows: [][]any{
		{"u1", "User1", "user1@example.com", "Bengaluru", reg},
		{"u2", nil, nil, nil, nil},
	}}

	docs, err := userDocs(rows)
	if err != nil {
		t.Fatalf("userDocs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	if docs[0]["registration_date"] != "2022-03-15" {
		t.Errorf("registration_date = %v, want 2022-03-15", docs[0]["registration_date"])
	}
	if docs[1]["registration_date"] != "" || docs[1]["location"] != "" {
		t.Errorf("null columns not defaulted: %v", docs[1])
	}
}

func TestDocsPropagateRowError(t *testing.T) {
	rows := &fakeRows{err: errors.New("connection reset")}
	if _, err := productDocs(rows); err == nil {
		t.Error("expected error from failed rows, got nil")
	}
}
