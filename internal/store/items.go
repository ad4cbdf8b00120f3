package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/erazemk/paklijst/internal/model"
)

// SeedFunc produces the items an empty list is populated with on first
// access.
type SeedFunc func(ctx context.Context) ([]model.Item, error)

// Items implements the item list operations on top of a Backend.
type Items struct {
	backend Backend
	seed    SeedFunc
	now     func() time.Time
}

// Option configures Items.
type Option func(*Items)

// WithSeed sets the first-access bootstrap source.
func WithSeed(fn SeedFunc) Option {
	return func(s *Items) { s.seed = fn }
}

// WithClock overrides time.Now for timestamps and history lines.
func WithClock(fn func() time.Time) Option {
	return func(s *Items) { s.now = fn }
}

// NewItems creates the item service.
func NewItems(backend Backend, opts ...Option) *Items {
	s := &Items{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft holds the input of a new item.
type Draft struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
	Packed   bool   `json:"packed"`
}

// List returns the user's items visible under filter whose name contains
// search, case-insensitively. An empty list is seeded first.
func (s *Items) List(ctx context.Context, u model.User, filter model.Filter, search string) ([]model.Item, error) {
	all, err := s.load(ctx, u)
	if err != nil {
		return nil, err
	}

	needle := fold(strings.TrimSpace(search))
	items := make([]model.Item, 0, len(all))
	for _, it := range all {
		if !filter.Match(it) {
			continue
		}
		if needle != "" && !strings.Contains(fold(it.Name), needle) {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Export returns every item of the user, deleted ones included.
func (s *Items) Export(ctx context.Context, u model.User) ([]model.Item, error) {
	return s.load(ctx, u)
}

// Get returns one item.
func (s *Items) Get(ctx context.Context, u model.User, id int64) (*model.Item, error) {
	return s.backend.Item(ctx, u.Key, id)
}

// Add validates and stores a new item.
func (s *Items) Add(ctx context.Context, u model.User, d Draft) (*model.Item, error) {
	name, err := validName(d.Name)
	if err != nil {
		return nil, err
	}
	category, err := validCategory(d.Category)
	if err != nil {
		return nil, err
	}

	item := model.Item{Name: name, Category: category, Notes: d.Notes}
	if d.Packed {
		item.SetPacked(true, s.now())
	}

	created, err := s.backend.Insert(ctx, u.Key, item)
	if err != nil {
		return nil, err
	}
	slog.Info("item added", "user", u.Key, "item", created.Name, "id", created.ID)
	return created, nil
}

// Update sets exactly one field of an item. Strings are expected for
// name, category and notes; booleans (or their string forms) for packed
// and deleted. Setting packed also stamps the timestamp and history.
func (s *Items) Update(ctx context.Context, u model.User, id int64, field model.Field, value any) (*model.Item, error) {
	var apply func(*model.Item)

	switch field {
	case model.FieldName:
		name, err := validName(stringValue(value))
		if err != nil {
			return nil, err
		}
		apply = func(it *model.Item) { it.Name = name }
	case model.FieldCategory:
		category, err := validCategory(stringValue(value))
		if err != nil {
			return nil, err
		}
		apply = func(it *model.Item) { it.Category = category }
	case model.FieldNotes:
		notes := stringValue(value)
		apply = func(it *model.Item) { it.Notes = notes }
	case model.FieldPacked:
		packed, err := boolValue(field, value)
		if err != nil {
			return nil, err
		}
		now := s.now()
		apply = func(it *model.Item) {
			if it.Packed != packed {
				it.SetPacked(packed, now)
			}
		}
	case model.FieldDeleted:
		deleted, err := boolValue(field, value)
		if err != nil {
			return nil, err
		}
		apply = func(it *model.Item) { it.Deleted = deleted }
	default:
		return nil, &model.ValidationError{Field: "field", Message: fmt.Sprintf("unknown field %q", field)}
	}

	item, err := s.backend.Update(ctx, u.Key, id, apply)
	if err != nil {
		return nil, err
	}
	slog.Info("item updated", "user", u.Key, "item", item.Name, "field", string(field))
	return item, nil
}

// SetDeleted soft-deletes or restores an item.
func (s *Items) SetDeleted(ctx context.Context, u model.User, id int64, deleted bool) (*model.Item, error) {
	return s.Update(ctx, u, id, model.FieldDeleted, deleted)
}

// SetPacked marks an item packed or unpacked.
func (s *Items) SetPacked(ctx context.Context, u model.User, id int64, packed bool) (*model.Item, error) {
	return s.Update(ctx, u, id, model.FieldPacked, packed)
}

// UnpackAll unpacks every non-deleted item of the user in one write.
func (s *Items) UnpackAll(ctx context.Context, u model.User) (int, error) {
	n, err := s.backend.UnpackAll(ctx, u.Key, s.now())
	if err != nil {
		return 0, err
	}
	slog.Info("items unpacked", "user", u.Key, "count", n)
	return n, nil
}

// Overwrite replaces the user's entire list. Previous items, deleted ones
// included, are gone for good and ids are reassigned.
func (s *Items) Overwrite(ctx context.Context, u model.User, items []model.Item) error {
	clean := make([]model.Item, 0, len(items))
	for i, it := range items {
		name, err := validName(it.Name)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		it.ID = 0
		it.Name = name
		if !it.Packed {
			it.PackedAt = nil
		}
		clean = append(clean, it)
	}

	if err := s.backend.Replace(ctx, u.Key, clean); err != nil {
		return err
	}
	slog.Info("list overwritten", "user", u.Key, "count", len(clean))
	return nil
}

// load returns all items, seeding an empty collection. A failing seed is
// logged and leaves the list empty.
func (s *Items) load(ctx context.Context, u model.User) ([]model.Item, error) {
	items, err := s.backend.Items(ctx, u.Key)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || s.seed == nil {
		return items, nil
	}

	seed, err := s.seed(ctx)
	if err != nil {
		slog.Warn("could not seed empty list", "user", u.Key, "error", err)
		return items, nil
	}
	if len(seed) == 0 {
		return items, nil
	}
	if err := s.Overwrite(ctx, u, seed); err != nil {
		return nil, fmt.Errorf("seeding list: %w", err)
	}
	slog.Info("list seeded from preset", "user", u.Key, "count", len(seed))
	return s.backend.Items(ctx, u.Key)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &model.ValidationError{Field: "name", Message: "name required"}
	}
	return name, nil
}

// validCategory accepts a known label; an empty one means the default.
func validCategory(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return model.DefaultCategory.Label(), nil
	}
	c, ok := model.ParseCategory(label)
	if !ok {
		return "", &model.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", label)}
	}
	return c.Label(), nil
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func boolValue(field model.Field, v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err == nil {
			return b, nil
		}
	}
	return false, &model.ValidationError{Field: strings.ToLower(string(field)), Message: fmt.Sprintf("invalid boolean %v", v)}
}

func fold(s string) string {
	return cases.Fold().String(s)
}
