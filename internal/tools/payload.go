package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Capability payloads round-trip through a text-only channel to the
// model, so values that do not survive plain JSON are normalised first:
// date/time values become ISO-8601 strings and fixed-point decimals
// become floats. Normalisation is idempotent — re-encoding an already
// normalised payload yields the same logical values.

// Encode normalises payload and returns it as a JSON string. A marshal
// failure (which would indicate a programming error in a capability)
// degrades to a structured error payload rather than propagating.
func Encode(payload map[string]any) string {
	data, err := json.Marshal(Normalize(payload))
	if err != nil {
		return fmt.Sprintf(`{"success":false,"message":"failed to encode tool payload: %v"}`, err)
	}
	return string(data)
}

// Errorf builds the uniform failure payload every capability error
// takes: {"success":false,"message":...}.
func Errorf(format string, args ...any) string {
	return Encode(map[string]any{
		"success": false,
		"message": fmt.Sprintf(format, args...),
	})
}

// Normalize converts v (recursively for maps and slices) into
// JSON-safe values: time.Time to ISO-8601, pgtype numerics/dates to
// floats and ISO-8601 strings. Already-normalised values pass through
// unchanged.
func Normalize(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Date:
		if !val.Valid {
			return nil
		}
		return val.Time.Format("2006-01-02")
	case pgtype.Timestamptz:
		if !val.Valid {
			return nil
		}
		return val.Time.Format(time.RFC3339)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	default:
		return v
	}
}
