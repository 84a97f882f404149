package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ChartTool renders tabular rows into a bar or line PNG under a
// dedicated output directory and returns the artifact path, never the
// bytes.
type ChartTool struct {
	dir string
}

// NewChartTool creates a ChartTool writing into dir.
func NewChartTool(dir string) *ChartTool {
	return &ChartTool{dir: dir}
}

func (t *ChartTool) Name() string { return NameGenerateChart }

func (t *ChartTool) Description() string {
	return "Generates a visual chart (bar chart or line chart) from provided tabular data. Use this when " +
		"the user explicitly asks for a chart, graph, or visualization. Requires data, chart type, and " +
		"columns for X and Y axes. The 'data' argument MUST be the exact list of row objects obtained " +
		"from the 'data' field of a successful execute_sql_query output."
}

func (t *ChartTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"data": {
				"type": "array",
				"items": {"type": "object"},
				"description": "The tabular data as a list of objects (e.g. the 'data' field from an execute_sql_query output). Each object is a row."
			},
			"chart_type": {
				"type": "string",
				"enum": ["bar", "line"],
				"description": "The type of chart to generate ('bar' for categorical comparisons, 'line' for trends over time)."
			},
			"x_column": {
				"type": "string",
				"description": "The name of the column from the data to use for the X-axis (e.g. 'month', 'category')."
			},
			"y_column": {
				"type": "string",
				"description": "The name of the column from the data to use for the Y-axis (e.g. 'total_sales_amount', 'average_price')."
			},
			"title": {
				"type": "string",
				"description": "The title of the chart."
			},
			"x_label": {
				"type": "string",
				"description": "Optional label for the X-axis."
			},
			"y_label": {
				"type": "string",
				"description": "Optional label for the Y-axis."
			},
			"filename": {
				"type": "string",
				"description": "Optional filename for the saved chart image (e.g. 'sales_by_month.png'). If not provided, a unique name is generated."
			}
		},
		"required": ["data", "chart_type", "x_column", "y_column", "title"]
	}`)
}

func (t *ChartTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rows := rowsArg(params["data"])
	if len(rows) == 0 {
		return Errorf("no data provided to generate chart"), nil
	}

	chartType, _ := params["chart_type"].(string)
	if chartType != "bar" && chartType != "line" {
		return Errorf("unsupported chart type %q, choose 'bar' or 'line'", chartType), nil
	}

	xColumn, _ := params["x_column"].(string)
	yColumn, _ := params["y_column"].(string)
	if _, ok := rows[0][xColumn]; !ok {
		return Errorf("required column %q not found in data", xColumn), nil
	}
	if _, ok := rows[0][yColumn]; !ok {
		return Errorf("required column %q not found in data", yColumn), nil
	}

	title, _ := params["title"].(string)
	xLabel := labelOrDefault(params, "x_label", xColumn)
	yLabel := labelOrDefault(params, "y_label", yColumn)

	// Time-like x values are sorted ascending so line charts plot a
	// coherent trend regardless of result-set order.
	sortRowsByTime(rows, xColumn)

	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = fmt.Sprint(Normalize(row[xColumn]))
		v, ok := toFloat(row[yColumn])
		if !ok {
			return Errorf("column %q contains non-numeric value %v", yColumn, row[yColumn]), nil
		}
		values[i] = v
	}

	path, err := t.artifactPath(params)
	if err != nil {
		return Errorf("error generating chart: %v", err), nil
	}

	if err := render(chartType, title, xLabel, yLabel, labels, values, path); err != nil {
		return Errorf("error generating chart: %v", err), nil
	}

	slog.Info("chart saved", "path", path, "type", chartType, "rows", len(rows))
	return Encode(map[string]any{
		"success":   true,
		"message":   "Chart generated successfully.",
		"file_path": path,
	}), nil
}

func (t *ChartTool) artifactPath(params map[string]any) (string, error) {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create charts dir: %w", err)
	}
	filename, _ := params["filename"].(string)
	if filename == "" {
		filename = "chart_" + time.Now().Format("20060102_150405") + ".png"
	}
	if !strings.HasSuffix(filename, ".png") {
		filename += ".png"
	}
	return filepath.Join(t.dir, filepath.Base(filename)), nil
}

func render(chartType, title, xLabel, yLabel string, labels []string, values []float64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if chartType == "bar" {
		bars := make([]chart.Value, len(values))
		for i := range values {
			bars[i] = chart.Value{Label: labels[i], Value: values[i]}
		}
		graph := chart.BarChart{
			Title:    title,
			Width:    1024,
			Height:   640,
			BarWidth: 40,
			YAxis:    chart.YAxis{Name: yLabel},
			Bars:     bars,
		}
		return graph.Render(chart.PNG, f)
	}

	xs := make([]float64, len(values))
	ticks := make([]chart.Tick, len(values))
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labels[i]}
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 640,
		XAxis:  chart.XAxis{Name: xLabel, Ticks: ticks},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: values},
		},
	}
	return graph.Render(chart.PNG, f)
}

// rowsArg accepts both []any (JSON-decoded) and []map[string]any
// (injected by the loop's argument repair).
func rowsArg(v any) []map[string]any {
	switch rows := v.(type) {
	case []map[string]any:
		return rows
	case []any:
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			if m, ok := r.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func labelOrDefault(params map[string]any, key, column string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	words := strings.Fields(strings.ReplaceAll(column, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// sortRowsByTime sorts rows ascending by xColumn when every value in
// that column parses as a timestamp; otherwise the order is untouched.
func sortRowsByTime(rows []map[string]any, xColumn string) {
	for _, row := range rows {
		if _, ok := parseTime(row[xColumn]); !ok {
			return
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, _ := parseTime(rows[i][xColumn])
		tj, _ := parseTime(rows[j][xColumn])
		return ti.Before(tj)
	})
}

func parseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "2006-01"} {
			if ts, err := time.Parse(layout, val); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		if n, ok := Normalize(v).(float64); ok {
			return n, true
		}
		return 0, false
	}
}
