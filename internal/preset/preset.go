// Package preset reads template packing lists used to bulk-populate a
// user's list.
package preset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/tabular"
)

// ErrLoad is returned when a preset cannot be read. Callers treat it as a
// warning and carry on with an empty list.
var ErrLoad = errors.New("preset could not be loaded")

// Prefix marks preset files in the preset directory.
const Prefix = "_"

var extensions = []string{".csv", ".xlsx"}

// Loader discovers and reads preset files from a directory.
type Loader struct {
	Dir     string
	Default string
}

// NewLoader creates a loader. def is the file used to bootstrap empty lists.
func NewLoader(dir, def string) *Loader {
	return &Loader{Dir: dir, Default: def}
}

// List returns the available preset ids: the default preset first, if it
// exists, followed by every prefixed file in name order.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w: %w", ErrLoad, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !isPresetName(e.Name()) {
			continue
		}
		ids = append(ids, e.Name())
	}
	slices.Sort(ids)

	if l.Default != "" && !slices.Contains(ids, l.Default) {
		if _, err := os.Stat(filepath.Join(l.Dir, l.Default)); err == nil {
			ids = append([]string{l.Default}, ids...)
		}
	}
	return ids, nil
}

// Load reads a preset and resets every item to a fresh state.
func (l *Loader) Load(id string) ([]model.Item, error) {
	if id != l.Default && !isPresetName(id) {
		return nil, fmt.Errorf("preset %q: %w: unknown preset", id, ErrLoad)
	}
	if filepath.Base(id) != id {
		return nil, fmt.Errorf("preset %q: %w: invalid name", id, ErrLoad)
	}

	path := filepath.Join(l.Dir, id)
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(id)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w: %w", id, ErrLoad, err)
	}

	items, err := tabular.Decode(rows)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w: %w", id, ErrLoad, err)
	}
	for i := range items {
		items[i] = items[i].Fresh()
	}
	return items, nil
}

// Seed loads the default preset. It satisfies store.SeedFunc.
func (l *Loader) Seed(ctx context.Context) ([]model.Item, error) {
	if l.Default == "" {
		return nil, nil
	}
	return l.Load(l.Default)
}

func isPresetName(name string) bool {
	if !strings.HasPrefix(name, Prefix) {
		return false
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(name)))
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return tabular.ReadRows(f)
}

// readXLSX returns the rows of the first worksheet.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
