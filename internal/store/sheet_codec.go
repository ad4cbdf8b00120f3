package store

import (
	"bytes"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// workbookCodec converts between the in-memory workbook and its file bytes.
type workbookCodec interface {
	decode(data []byte) (*workbook, error)
	encode(wb *workbook) ([]byte, error)
}

func codecFor(path string) workbookCodec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return xlsxCodec{}
	}
}

type yamlCodec struct{}

func (yamlCodec) decode(data []byte) (*workbook, error) {
	wb := &workbook{}
	if err := yaml.Unmarshal(data, wb); err != nil {
		return nil, err
	}
	return wb, nil
}

func (yamlCodec) encode(wb *workbook) ([]byte, error) {
	return yaml.Marshal(wb)
}

// The xlsx layout keeps one visible sheet per owner plus a hidden index
// sheet mapping owner keys to sheet names and id counters.
const (
	indexSheet    = "_paklijst"
	maxSheetName  = 31
	timestampForm = time.RFC3339Nano
)

var (
	indexHeader = []any{"Owner", "Sheet", "NextID"}
	rowHeader   = []any{"ID", "Item", "Category", "Packed", "Deleted", "Notes", "Timestamp", "History"}
)

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

type xlsxCodec struct{}

func (xlsxCodec) encode(wb *workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", indexSheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, indexSheet, 1, indexHeader); err != nil {
		return nil, err
	}

	owners := slices.Sorted(maps.Keys(wb.Tabs))
	names := sheetNames(owners)
	for i, owner := range owners {
		t, name := wb.Tabs[owner], names[owner]

		idx, err := f.NewSheet(name)
		if err != nil {
			return nil, fmt.Errorf("adding sheet %q: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		if err := writeRow(f, indexSheet, i+2, []any{owner, name, t.NextID}); err != nil {
			return nil, err
		}
		if err := writeRow(f, name, 1, rowHeader); err != nil {
			return nil, err
		}
		for j, r := range t.Rows {
			if err := writeRow(f, name, j+2, r.cells()); err != nil {
				return nil, err
			}
		}
	}

	// Excel refuses a workbook without a visible sheet.
	if len(owners) > 0 {
		if err := f.SetSheetVisible(indexSheet, false); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (xlsxCodec) decode(data []byte) (*workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	index, err := f.GetRows(indexSheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", indexSheet, err)
	}

	wb := &workbook{Tabs: map[string]*tab{}}
	for i, cells := range index {
		if i == 0 || blank(cells) {
			continue
		}
		cells = pad(cells, len(indexHeader))
		owner, name := strings.TrimSpace(cells[0]), cells[1]
		if owner == "" {
			continue
		}
		next, err := parseInt(cells[2])
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: next id: %w", indexSheet, i+1, err)
		}

		t, err := readTab(f, name)
		if err != nil {
			return nil, err
		}
		t.NextID = max(t.NextID, next)
		for j := range t.Rows {
			// Rows typed in by hand get a fresh id.
			if t.Rows[j].ID == 0 {
				t.Rows[j].ID = t.nextID()
			}
		}
		wb.Tabs[owner] = t
	}
	return wb, nil
}

// readTab reads one owner sheet. NextID is set to the highest id seen.
func readTab(f *excelize.File, name string) (*tab, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}

	t := &tab{}
	for i, cells := range rows {
		if i == 0 || blank(cells) {
			continue
		}
		r, err := parseRow(pad(cells, len(rowHeader)))
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: %w", name, i+1, err)
		}
		t.NextID = max(t.NextID, r.ID)
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func (r row) cells() []any {
	ts := ""
	if r.Timestamp != nil {
		ts = r.Timestamp.Format(timestampForm)
	}
	return []any{r.ID, r.Item, r.Category, r.Packed, r.Deleted, r.Notes, ts, r.History}
}

func parseRow(cells []string) (row, error) {
	var r row
	var err error

	if r.ID, err = parseInt(cells[0]); err != nil {
		return r, fmt.Errorf("id: %w", err)
	}
	r.Item = cells[1]
	r.Category = cells[2]
	if r.Packed, err = parseBool(cells[3]); err != nil {
		return r, fmt.Errorf("packed: %w", err)
	}
	if r.Deleted, err = parseBool(cells[4]); err != nil {
		return r, fmt.Errorf("deleted: %w", err)
	}
	r.Notes = cells[5]
	if ts := strings.TrimSpace(cells[6]); ts != "" {
		at, err := time.Parse(timestampForm, ts)
		if err != nil {
			return r, fmt.Errorf("timestamp: %w", err)
		}
		r.Timestamp = &at
	}
	r.History = cells[7]
	return r, nil
}

func writeRow(f *excelize.File, sheet string, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing sheet %q row %d: %w", sheet, n, err)
	}
	return nil
}

// sheetNames assigns every owner a unique, valid sheet name.
func sheetNames(owners []string) map[string]string {
	names := make(map[string]string, len(owners))
	taken := map[string]bool{strings.ToLower(indexSheet): true}

	for _, owner := range owners {
		base := strings.Trim(sheetNameReplacer.Replace(owner), "' ")
		if base == "" {
			base = "lijst"
		}
		name := truncate(base, maxSheetName)
		for n := 2; taken[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		taken[strings.ToLower(name)] = true
		names[owner] = name
	}
	return names
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func pad(cells []string, n int) []string {
	for len(cells) < n {
		cells = append(cells, "")
	}
	return cells
}
