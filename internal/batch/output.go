package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/leadvet/prospectval/internal/model"
)

// OutFormat names a batch output encoding
type OutFormat string

const (
	OutJSON  OutFormat = "json"
	OutJSONL OutFormat = "jsonl"
	OutCSV   OutFormat = "csv"
)

// WriteItems writes items in the requested format
func WriteItems(w io.Writer, items []Item, format OutFormat) error {
	switch format {
	case OutJSON, "":
		return WriteJSON(w, items)
	case OutJSONL:
		return WriteJSONL(w, items)
	case OutCSV:
		return WriteCSV(w, items)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes the items as one indented JSON array
func WriteJSON(w io.Writer, items []Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

// WriteJSONL writes one JSON object per line
func WriteJSONL(w io.Writer, items []Item) error {
	encoder := json.NewEncoder(w)
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes a flat CSV projection of the items. The header puts the
// verdict columns first in a fixed order, then every other key the items
// carry, sorted. Scalar cells render plainly, issue lists join with "; ",
// and anything nested falls back to compact JSON.
func WriteCSV(w io.Writer, items []Item) error {
	header := csvHeader(items)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, item := range items {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = csvCell(item[key])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// preferredColumns come first in CSV output, in this order
func preferredColumns() []string {
	cols := []string{"url_checked", "overall_score", "overall_passed"}
	for _, name := range model.CheckNames() {
		cols = append(cols, string(name)+"_passed", string(name)+"_score")
	}
	return cols
}

func csvHeader(items []Item) []string {
	seen := make(map[string]bool)
	for _, item := range items {
		for key := range item {
			seen[key] = true
		}
	}

	header := make([]string, 0, len(seen))
	for _, key := range preferredColumns() {
		if seen[key] {
			header = append(header, key)
			delete(seen, key)
		}
	}

	rest := make([]string, 0, len(seen))
	for key := range seen {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(header, rest...)
}

func csvCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, "; ")
	case []any:
		if parts, ok := stringParts(v); ok {
			return strings.Join(parts, "; ")
		}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(raw)
}

func stringParts(values []any) ([]string, bool) {
	parts := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		parts[i] = s
	}
	return parts, true
}
