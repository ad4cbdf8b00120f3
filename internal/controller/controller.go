// Package controller implements the list view: it resolves the per-session
// view state against the stored lists, applies the user's intents and
// recomputes everything derived from the list after each change.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/preset"
	"github.com/erazemk/paklijst/internal/progress"
	"github.com/erazemk/paklijst/internal/store"
	"github.com/erazemk/paklijst/internal/suggest"
	"github.com/erazemk/paklijst/internal/tabular"
)

// Controller serves the list views of every user in the roster.
type Controller struct {
	items   *store.Items
	presets *preset.Loader
	roster  model.Roster
	rng     *rand.Rand
}

// New creates a controller. rng may be nil to use the global source.
func New(items *store.Items, presets *preset.Loader, roster model.Roster, rng *rand.Rand) *Controller {
	return &Controller{items: items, presets: presets, roster: roster, rng: rng}
}

// Roster returns the configured users.
func (c *Controller) Roster() model.Roster {
	return c.roster
}

// User resolves a user key or display name.
func (c *Controller) User(s string) (model.User, error) {
	u, ok := c.roster.Lookup(s)
	if !ok {
		return model.User{}, fmt.Errorf("user %q: %w", s, model.ErrNotFound)
	}
	return u, nil
}

// Group is one category section of the list view.
type Group struct {
	Category model.Category
	Label    string
	Emoji    string
	Items    []model.Item
	Progress progress.Count
}

// View is the rendered state of one user's list.
type View struct {
	User        model.User
	State       ViewState
	Groups      []Group
	Progress    progress.Report
	Suggestion  *model.Item
	Categories  []model.Category
	Filters     []model.Filter
	CanQuickAdd bool
}

// View reads the user's list and derives the grouped view. A pending
// suggestion that no longer refers to an unpacked item is dropped from the
// returned state.
func (c *Controller) View(ctx context.Context, st ViewState) (*View, error) {
	u, err := c.User(st.User)
	if err != nil {
		return nil, err
	}

	visible, err := c.items.List(ctx, u, st.Filter, st.Search)
	if err != nil {
		return nil, err
	}
	all, err := c.items.Export(ctx, u)
	if err != nil {
		return nil, err
	}

	report := progress.Aggregate(all)
	v := &View{
		User:        u,
		Groups:      group(visible, report),
		Progress:    report,
		Categories:  model.Categories(),
		Filters:     model.Filters(),
		CanQuickAdd: st.CanQuickAdd(),
	}

	if p := st.Suggestion; p != nil {
		if suggest.Valid(all, p.ID, p.Name) {
			for _, it := range all {
				if it.ID == p.ID {
					v.Suggestion = &it
					break
				}
			}
		} else {
			st = st.WithSuggestion(nil)
		}
	}
	v.State = st
	return v, nil
}

// group partitions the visible items over the categories in display
// order, each sorted by name. A group's progress counts the whole
// non-deleted list, not just what the filter shows. Categories are left
// out only when they have neither visible nor live items.
func group(visible []model.Item, report progress.Report) []Group {
	byCat := map[model.Category][]model.Item{}
	for _, it := range visible {
		byCat[it.Group()] = append(byCat[it.Group()], it)
	}
	counts := map[model.Category]progress.Count{}
	for _, cc := range report.Categories {
		counts[cc.Category] = cc.Count
	}

	var groups []Group
	for _, cat := range model.Categories() {
		members := byCat[cat]
		count, live := counts[cat]
		if len(members) == 0 && !live {
			continue
		}
		slices.SortStableFunc(members, func(a, b model.Item) int {
			return strings.Compare(a.Name, b.Name)
		})

		groups = append(groups, Group{
			Category: cat,
			Label:    cat.Label(),
			Emoji:    cat.Emoji(),
			Items:    members,
			Progress: count,
		})
	}
	return groups
}

// Item returns one item of u.
func (c *Controller) Item(ctx context.Context, u model.User, id int64) (*model.Item, error) {
	return c.items.Get(ctx, u, id)
}

// Add creates an item from the add form.
func (c *Controller) Add(ctx context.Context, u model.User, d store.Draft) (*model.Item, error) {
	return c.items.Add(ctx, u, d)
}

// QuickAdd adds an item to one category from within the list view. While
// the packed filter is active the item starts out packed.
func (c *Controller) QuickAdd(ctx context.Context, st ViewState, category model.Category, name string) (*model.Item, error) {
	u, err := c.User(st.User)
	if err != nil {
		return nil, err
	}
	if !st.CanQuickAdd() {
		return nil, &model.ValidationError{Message: "quick add is not available in this view"}
	}

	return c.items.Add(ctx, u, store.Draft{
		Name:     name,
		Category: category.Label(),
		Packed:   st.Filter == model.FilterPacked,
	})
}

// Update edits a single field of an item.
func (c *Controller) Update(ctx context.Context, u model.User, id int64, field model.Field, value any) (*model.Item, error) {
	return c.items.Update(ctx, u, id, field, value)
}

// Rename changes an item's name.
func (c *Controller) Rename(ctx context.Context, u model.User, id int64, name string) (*model.Item, error) {
	return c.items.Update(ctx, u, id, model.FieldName, name)
}

// SetCategory moves an item to another category.
func (c *Controller) SetCategory(ctx context.Context, u model.User, id int64, category string) (*model.Item, error) {
	return c.items.Update(ctx, u, id, model.FieldCategory, category)
}

// SetNotes replaces an item's notes.
func (c *Controller) SetNotes(ctx context.Context, u model.User, id int64, notes string) (*model.Item, error) {
	return c.items.Update(ctx, u, id, model.FieldNotes, notes)
}

// SetPacked marks an item packed or unpacked.
func (c *Controller) SetPacked(ctx context.Context, u model.User, id int64, packed bool) (*model.Item, error) {
	return c.items.SetPacked(ctx, u, id, packed)
}

// Delete soft-deletes an item.
func (c *Controller) Delete(ctx context.Context, u model.User, id int64) (*model.Item, error) {
	return c.items.SetDeleted(ctx, u, id, true)
}

// Restore brings a deleted item back with its other fields unchanged.
func (c *Controller) Restore(ctx context.Context, u model.User, id int64) (*model.Item, error) {
	return c.items.SetDeleted(ctx, u, id, false)
}

// UnpackAll unpacks the whole list. It refuses to run unless the user
// confirmed the action.
func (c *Controller) UnpackAll(ctx context.Context, u model.User, confirmed bool) (int, error) {
	if !confirmed {
		return 0, &model.ValidationError{Field: "confirm", Message: "confirmation required to unpack everything"}
	}
	return c.items.UnpackAll(ctx, u)
}

// Suggest picks a random unpacked item and remembers it in the state. The
// returned item is nil when nothing is left to pack.
func (c *Controller) Suggest(ctx context.Context, st ViewState) (ViewState, *model.Item, error) {
	u, err := c.User(st.User)
	if err != nil {
		return st, nil, err
	}
	all, err := c.items.Export(ctx, u)
	if err != nil {
		return st, nil, err
	}

	it, ok := suggest.Pick(all, c.rng)
	if !ok {
		return st.WithSuggestion(nil), nil, nil
	}
	return st.WithSuggestion(&Pending{ID: it.ID, Name: it.Name}), &it, nil
}

// ErrStaleSuggestion is returned when the pending suggestion no longer
// refers to an unpacked item.
var ErrStaleSuggestion = &model.ValidationError{Field: "suggestion", Message: "suggestion is no longer available"}

// AcceptSuggestion packs the pending suggestion and clears it. A stale
// suggestion is cleared without changing the list.
func (c *Controller) AcceptSuggestion(ctx context.Context, st ViewState) (ViewState, *model.Item, error) {
	u, err := c.User(st.User)
	if err != nil {
		return st, nil, err
	}
	p := st.Suggestion
	cleared := st.WithSuggestion(nil)
	if p == nil {
		return cleared, nil, ErrStaleSuggestion
	}

	all, err := c.items.Export(ctx, u)
	if err != nil {
		return st, nil, err
	}
	if !suggest.Valid(all, p.ID, p.Name) {
		return cleared, nil, ErrStaleSuggestion
	}

	it, err := c.items.SetPacked(ctx, u, p.ID, true)
	if err != nil {
		return st, nil, err
	}
	return cleared, it, nil
}

// Presets lists the available presets.
func (c *Controller) Presets() ([]string, error) {
	return c.presets.List()
}

// LoadPreset replaces the user's list with a preset. If the preset cannot
// be read the list is left untouched.
func (c *Controller) LoadPreset(ctx context.Context, u model.User, id string) (int, error) {
	items, err := c.presets.Load(id)
	if err != nil {
		return 0, err
	}
	if err := c.items.Overwrite(ctx, u, items); err != nil {
		return 0, err
	}
	slog.Info("preset loaded", "user", u.Key, "preset", id, "count", len(items))
	return len(items), nil
}

// Import restores a list from a CSV backup, replacing the current one.
func (c *Controller) Import(ctx context.Context, u model.User, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading import: %w", err)
	}
	items, err := tabular.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return 0, &model.ValidationError{Field: "file", Message: err.Error()}
	}
	if err := c.items.Overwrite(ctx, u, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Export writes the user's full list, deleted items included, as CSV.
func (c *Controller) Export(ctx context.Context, u model.User, w io.Writer) error {
	items, err := c.items.Export(ctx, u)
	if err != nil {
		return err
	}
	return tabular.WriteCSV(w, items)
}

// ExportName returns the download filename of a user's backup.
func ExportName(u model.User) string {
	return u.Key + "_paklijst.csv"
}

// PeerSuggestions lists items other users have that u does not.
func (c *Controller) PeerSuggestions(ctx context.Context, u model.User) ([]suggest.Suggestion, error) {
	current, err := c.items.Export(ctx, u)
	if err != nil {
		return nil, err
	}

	var others [][]model.Item
	for _, o := range c.roster.Others(u) {
		items, err := c.items.Export(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("reading list of %s: %w", o.Name, err)
		}
		others = append(others, items)
	}
	return suggest.Feed(current, others...), nil
}

// AcceptPeerSuggestion adds a suggested item to u's list. A category that
// is not one of the known labels is filed under the fallback category.
func (c *Controller) AcceptPeerSuggestion(ctx context.Context, u model.User, s suggest.Suggestion) (*model.Item, error) {
	return c.items.Add(ctx, u, store.Draft{
		Name:     s.Name,
		Category: model.CategoryOf(s.Category).Label(),
	})
}

// Progress returns the statistics of one user.
func (c *Controller) Progress(ctx context.Context, u model.User) (progress.Report, error) {
	all, err := c.items.Export(ctx, u)
	if err != nil {
		return progress.Report{}, err
	}
	return progress.Aggregate(all), nil
}

// AllProgress returns the statistics of every user in roster order.
func (c *Controller) AllProgress(ctx context.Context) ([]progress.UserReport, error) {
	return c.progressOf(ctx, c.roster)
}

// OthersProgress returns the statistics of every user except u.
func (c *Controller) OthersProgress(ctx context.Context, u model.User) ([]progress.UserReport, error) {
	return c.progressOf(ctx, c.roster.Others(u))
}

func (c *Controller) progressOf(ctx context.Context, users []model.User) ([]progress.UserReport, error) {
	reports := make([]progress.UserReport, 0, len(users))
	for _, u := range users {
		r, err := c.Progress(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("progress of %s: %w", u.Name, err)
		}
		reports = append(reports, progress.UserReport{User: u, Report: r})
	}
	return reports, nil
}

// IsStale reports whether err means a suggestion expired.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleSuggestion)
}
