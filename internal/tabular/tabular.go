// Package tabular converts item lists to and from row-oriented data: the
// ;-separated CSV backup format and the rows of preset spreadsheets.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erazemk/paklijst/internal/model"
)

// Separator is the CSV field delimiter.
const Separator = ';'

// Column headers.
const (
	ColItem      = "Item"
	ColCategory  = "Category"
	ColPacked    = "Packed"
	ColDeleted   = "Deleted"
	ColNotes     = "Notes"
	ColTimestamp = "Timestamp"
	ColHistory   = "History"
)

// Columns are the core columns written by WriteCSV.
var Columns = []string{ColItem, ColCategory, ColPacked, ColDeleted, ColNotes}

// WriteCSV writes items, deleted ones included, with a header row.
func WriteCSV(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, it := range items {
		rec := []string{it.Name, it.Category, formatBool(it.Packed), formatBool(it.Deleted), it.Notes}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a ;-separated list with a header row.
func ReadCSV(r io.Reader) ([]model.Item, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return Decode(rows)
}

// ReadRows returns the raw records of a ;-separated file. Rows may have
// differing lengths.
func ReadRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

// Decode converts a header row plus data rows into items. The Item and
// Category columns are required; the others default when absent. Rows
// without an item name are skipped.
func Decode(rows [][]string) ([]model.Item, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		for _, col := range []string{ColItem, ColCategory, ColPacked, ColDeleted, ColNotes, ColTimestamp, ColHistory} {
			if strings.EqualFold(h, col) {
				if _, dup := idx[col]; !dup {
					idx[col] = i
				}
			}
		}
	}
	for _, col := range []string{ColItem, ColCategory} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	items := []model.Item{}
	for n, rec := range rows[1:] {
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		name := cell(ColItem)
		if name == "" {
			continue
		}

		packed, err := ParseBool(cell(ColPacked))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", n+2, ColPacked, err)
		}
		deleted, err := ParseBool(cell(ColDeleted))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", n+2, ColDeleted, err)
		}

		item := model.Item{
			Name:     name,
			Category: cell(ColCategory),
			Packed:   packed,
			Deleted:  deleted,
			Notes:    cell(ColNotes),
			History:  historyCell(rec, idx),
		}
		if packed {
			item.PackedAt = parseTime(cell(ColTimestamp))
		}
		items = append(items, item)
	}
	return items, nil
}

// ParseBool accepts the boolean spellings found in exported lists.
// An empty cell is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0", "yes", "y", "ja", "waar", "x":
		return true, nil
	case "", "false", "0", "0.0", "no", "n", "nee", "onwaar", "nan":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// historyCell keeps the log untrimmed apart from normalizing a missing
// trailing newline.
func historyCell(rec []string, idx map[string]int) string {
	i, ok := idx[ColHistory]
	if !ok || i >= len(rec) {
		return ""
	}
	h := strings.TrimSpace(rec[i])
	if h == "" {
		return ""
	}
	return h + "\n"
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	time.DateTime,
	time.DateOnly,
}

func parseTime(s string) *time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
