package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/erazemk/paklijst/internal/model"
)

// Constants for file locking.
const (
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// SheetBackend stores items in a workbook with one sheet per owner: one row
// per item with the columns ID, Item, Category, Packed, Deleted, Notes,
// Timestamp and History. Rows carry an explicit id so identity survives
// reordering.
//
// The workbook is an .xlsx file, or a YAML document when the path ends in
// .yaml or .yml. Every operation reads the whole workbook under a file lock
// and writes it back through a temporary file that is renamed into place.
type SheetBackend struct {
	path  string
	codec workbookCodec
	lock  *flock.Flock
	mu    sync.Mutex
}

type workbook struct {
	Tabs map[string]*tab `yaml:"tabs"`
}

type tab struct {
	NextID int64 `yaml:"next_id"`
	Rows   []row `yaml:"rows"`
}

type row struct {
	ID        int64      `yaml:"id"`
	Item      string     `yaml:"Item"`
	Category  string     `yaml:"Category"`
	Packed    bool       `yaml:"Packed"`
	Deleted   bool       `yaml:"Deleted"`
	Notes     string     `yaml:"Notes,omitempty"`
	Timestamp *time.Time `yaml:"Timestamp,omitempty"`
	History   string     `yaml:"History,omitempty"`
}

// NewSheetBackend opens (or lazily creates) the workbook at path.
func NewSheetBackend(path string) (*SheetBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating workbook directory: %w", err)
		}
	}
	return &SheetBackend{
		path:  path,
		codec: codecFor(path),
		lock:  flock.New(path + ".lock"),
	}, nil
}

// Items returns the rows of the owner's tab.
func (b *SheetBackend) Items(ctx context.Context, owner string) ([]model.Item, error) {
	var items []model.Item
	err := b.withWorkbook(ctx, false, func(wb *workbook) error {
		t := wb.Tabs[owner]
		if t == nil {
			return nil
		}
		items = make([]model.Item, 0, len(t.Rows))
		for _, r := range t.Rows {
			items = append(items, r.item())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Item returns one row of the owner's tab.
func (b *SheetBackend) Item(ctx context.Context, owner string, id int64) (*model.Item, error) {
	var item *model.Item
	err := b.withWorkbook(ctx, false, func(wb *workbook) error {
		r := wb.Tabs[owner].find(id)
		if r == nil {
			return fmt.Errorf("item %d: %w", id, model.ErrNotFound)
		}
		it := r.item()
		item = &it
		return nil
	})
	return item, err
}

// Insert appends a row to the owner's tab, creating the tab if needed.
func (b *SheetBackend) Insert(ctx context.Context, owner string, item model.Item) (*model.Item, error) {
	err := b.withWorkbook(ctx, true, func(wb *workbook) error {
		t := wb.tab(owner)
		item.ID = t.nextID()
		t.Rows = append(t.Rows, rowOf(item))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies one row in place.
func (b *SheetBackend) Update(ctx context.Context, owner string, id int64, fn func(*model.Item)) (*model.Item, error) {
	var item model.Item
	err := b.withWorkbook(ctx, true, func(wb *workbook) error {
		r := wb.Tabs[owner].find(id)
		if r == nil {
			return fmt.Errorf("item %d: %w", id, model.ErrNotFound)
		}
		item = r.item()
		fn(&item)
		*r = rowOf(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UnpackAll unpacks every live row of the tab in a single workbook write.
func (b *SheetBackend) UnpackAll(ctx context.Context, owner string, at time.Time) (int, error) {
	n := 0
	err := b.withWorkbook(ctx, true, func(wb *workbook) error {
		t := wb.Tabs[owner]
		if t == nil {
			return nil
		}
		for i := range t.Rows {
			if !t.Rows[i].Packed || t.Rows[i].Deleted {
				continue
			}
			item := t.Rows[i].item()
			item.SetPacked(false, at)
			t.Rows[i] = rowOf(item)
			n++
		}
		return nil
	})
	return n, err
}

// Replace swaps the whole tab. Ids continue from the tab's counter.
func (b *SheetBackend) Replace(ctx context.Context, owner string, items []model.Item) error {
	return b.withWorkbook(ctx, true, func(wb *workbook) error {
		t := wb.tab(owner)
		t.Rows = make([]row, 0, len(items))
		for _, item := range items {
			item.ID = t.nextID()
			t.Rows = append(t.Rows, rowOf(item))
		}
		return nil
	})
}

// Close releases the lock file handle.
func (b *SheetBackend) Close() error {
	return b.lock.Close()
}

// withWorkbook loads the workbook under the file lock, runs fn and, for
// writes, saves the result atomically. Nothing is written if fn fails.
func (b *SheetBackend) withWorkbook(ctx context.Context, write bool, fn func(*workbook) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if write {
		locked, err = b.lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		locked, err = b.lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		return ioError("acquiring workbook lock", err)
	}
	if !locked {
		return ioError("acquiring workbook lock", errors.New("lock busy"))
	}
	defer b.lock.Unlock()

	wb, err := b.load()
	if err != nil {
		return err
	}

	if err := fn(wb); err != nil {
		return err
	}

	if !write {
		return nil
	}
	return b.save(wb)
}

func (b *SheetBackend) load() (*workbook, error) {
	wb := &workbook{Tabs: map[string]*tab{}}

	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return wb, nil
	}
	if err != nil {
		return nil, ioError("reading workbook", err)
	}

	wb, err = b.codec.decode(data)
	if err != nil {
		return nil, ioError("decoding workbook", err)
	}
	if wb.Tabs == nil {
		wb.Tabs = map[string]*tab{}
	}
	return wb, nil
}

func (b *SheetBackend) save(wb *workbook) error {
	data, err := b.codec.encode(wb)
	if err != nil {
		return ioError("encoding workbook", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return ioError("creating temporary workbook", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ioError("writing workbook", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ioError("syncing workbook", err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("closing workbook", err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return ioError("replacing workbook", err)
	}
	return nil
}

func (wb *workbook) tab(owner string) *tab {
	t := wb.Tabs[owner]
	if t == nil {
		t = &tab{}
		wb.Tabs[owner] = t
	}
	return t
}

func (t *tab) nextID() int64 {
	t.NextID++
	return t.NextID
}

func (t *tab) find(id int64) *row {
	if t == nil {
		return nil
	}
	for i := range t.Rows {
		if t.Rows[i].ID == id {
			return &t.Rows[i]
		}
	}
	return nil
}

func (r row) item() model.Item {
	return model.Item{
		ID:       r.ID,
		Name:     r.Item,
		Category: r.Category,
		Packed:   r.Packed,
		Deleted:  r.Deleted,
		Notes:    r.Notes,
		PackedAt: r.Timestamp,
		History:  r.History,
	}
}

func rowOf(item model.Item) row {
	return row{
		ID:        item.ID,
		Item:      item.Name,
		Category:  item.Category,
		Packed:    item.Packed,
		Deleted:   item.Deleted,
		Notes:     item.Notes,
		Timestamp: item.PackedAt,
		History:   item.History,
	}
}
