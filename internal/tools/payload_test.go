package tools

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestNormalizeTimeAndDecimals(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	num := pgtype.Numeric{Int: big.NewInt(129999), Exp: -2, Valid: true}

	in := map[string]any{
		"when":   ts,
		"amount": num,
		"rows": []map[string]any{
			{"nested": ts},
		},
	}

	out, ok := Normalize(in).(map[string]any)
	if !ok {
		t.Fatalf("Normalize returned %T", Normalize(in))
	}
	if out["when"] != "2024-06-01T12:30:00Z" {
		t.Errorf("when = %v", out["when"])
	}
	if out["amount"] != 1299.99 {
		t.Errorf("amount = %v, want 1299.99", out["amount"])
	}

	rows, _ := out["rows"].([]any)
	nested, _ := rows[0].(map[string]any)
	if nested["nested"] != "2024-06-01T12:30:00Z" {
		t.Errorf("nested = %v", nested["nested"])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := map[string]any{
		"when":   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		"amount": pgtype.Numeric{Int: big.NewInt(500), Exp: 0, Valid: true},
	}

	once := Normalize(in)
	twice := Normalize(once)

	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if string(a) != string(b) {
		t.Errorf("Normalize not idempotent: %s vs %s", a, b)
	}
}

func TestNormalizeDateAndTimestamptz(t *testing.T) {
	d := pgtype.Date{Time: time.Date(2023, 2, 14, 0, 0, 0, 0, time.UTC), Valid: true}
	tz := pgtype.Timestamptz{Time: time.Date(2023, 2, 14, 8, 0, 0, 0, time.UTC), Valid: true}

	if got := Normalize(d); got != "2023-02-14" {
		t.Errorf("date = %v", got)
	}
	if got := Normalize(tz); got != "2023-02-14T08:00:00Z" {
		t.Errorf("timestamptz = %v", got)
	}
	if got := Normalize(pgtype.Date{}); got != nil {
		t.Errorf("invalid date = %v, want nil", got)
	}
}

func TestEncodeProducesJSON(t *testing.T) {
	out := Encode(map[string]any{
		"success": true,
		"when":    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Encode output not JSON: %v", err)
	}
	if parsed["when"] != "2024-01-01T00:00:00Z" {
		t.Errorf("when = %v", parsed["when"])
	}
}

func TestErrorfShape(t *testing.T) {
	out := Errorf("tool %q not found", "nope")

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Errorf output not JSON: %v", err)
	}
	if parsed["success"] != false {
		t.Errorf("success = %v, want false", parsed["success"])
	}
	msg, _ := parsed["message"].(string)
	if !strings.Contains(msg, `"nope" not found`) {
		t.Errorf("message = %q", msg)
	}
}
