package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/paklijst/internal/db"
	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/preset"
	"github.com/erazemk/paklijst/internal/progress"
	"github.com/erazemk/paklijst/internal/store"
	"github.com/erazemk/paklijst/internal/suggest"
)

var (
	roster = model.NewRoster("David & Julia", "Koen & Rumeysa")
	userA  = roster[0]
	userB  = roster[1]
)

func newTestController(t *testing.T) (*Controller, string) {
	t.Helper()
	dir := t.TempDir()
	backend := store.NewSQLBackend(db.NewTestDB(t), db.DriverSQLite)
	items := store.NewItems(backend, store.WithClock(func() time.Time {
		return time.Date(2025, 7, 24, 9, 30, 0, 0, time.UTC)
	}))
	return New(items, preset.NewLoader(dir, ""), roster, rand.New(rand.NewPCG(3, 4))), dir
}

func add(t *testing.T, c *Controller, u model.User, name, category string) *model.Item {
	t.Helper()
	it, err := c.Add(context.Background(), u, store.Draft{Name: name, Category: category})
	if err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
	return it
}

func groupNames(v *View) map[string][]string {
	out := map[string][]string{}
	for _, g := range v.Groups {
		for _, it := range g.Items {
			out[g.Label] = append(out[g.Label], it.Name)
		}
	}
	return out
}

func TestViewGroupsByCategory(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	add(t, c, userA, "Tent", "Kamperen & Slaap")
	add(t, c, userA, "Haringen", "Kamperen & Slaap")
	add(t, c, userA, "Zaklamp", "Elektronica")
	oud := add(t, c, userA, "Oud", "Elektronica")
	if _, err := c.Delete(ctx, userA, oud.ID); err != nil {
		t.Fatal(err)
	}

	v, err := c.View(ctx, ViewState{User: userA.Key})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string][]string{
		"Elektronica":      {"Zaklamp"},
		"Kamperen & Slaap": {"Haringen", "Tent"},
	}
	if diff := cmp.Diff(want, groupNames(v)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if v.Groups[0].Label != "Elektronica" {
		t.Errorf("expected display order, got %s first", v.Groups[0].Label)
	}
	if v.Progress.Overall != (progress.Count{Packed: 0, Total: 3, Percent: 0}) {
		t.Errorf("unexpected progress %+v", v.Progress.Overall)
	}

	v, err = c.View(ctx, ViewState{User: userA.Key, Filter: model.FilterDeleted})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string][]string{"Elektronica": {"Oud"}}, groupNames(v)); diff != "" {
		t.Errorf("deleted view mismatch (-want +got):\n%s", diff)
	}
	if v.CanQuickAdd {
		t.Error("quick add must be hidden in the deleted view")
	}
}

func groupProgress(v *View) map[string]progress.Count {
	out := map[string]progress.Count{}
	for _, g := range v.Groups {
		out[g.Label] = g.Progress
	}
	return out
}

func TestViewGroupProgressIgnoresFilter(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	tent := add(t, c, userA, "Tent", "Kamperen & Slaap")
	add(t, c, userA, "Haringen", "Kamperen & Slaap")
	add(t, c, userA, "Zaklamp", "Elektronica")
	if _, err := c.SetPacked(ctx, userA, tent.ID, true); err != nil {
		t.Fatal(err)
	}

	want := map[string]progress.Count{
		"Elektronica":      {Packed: 0, Total: 1, Percent: 0},
		"Kamperen & Slaap": {Packed: 1, Total: 2, Percent: 50},
	}

	for _, f := range model.Filters() {
		v, err := c.View(ctx, ViewState{User: userA.Key, Filter: f})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, groupProgress(v)); diff != "" {
			t.Errorf("%v: group progress mismatch (-want +got):\n%s", f, diff)
		}
	}

	// Categories without packed items stay reachable for quick add.
	v, err := c.View(ctx, ViewState{User: userA.Key, Filter: model.FilterPacked})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Groups) != 2 || !v.CanQuickAdd {
		t.Fatalf("expected both categories with quick add, got %d groups", len(v.Groups))
	}
	if diff := cmp.Diff(map[string][]string{"Kamperen & Slaap": {"Tent"}}, groupNames(v)); diff != "" {
		t.Errorf("packed view items mismatch (-want +got):\n%s", diff)
	}

	v, err = c.View(ctx, ViewState{User: userA.Key, Search: "tent"})
	if err != nil {
		t.Fatal(err)
	}
	if got := groupProgress(v)["Kamperen & Slaap"]; got != want["Kamperen & Slaap"] {
		t.Errorf("search must not narrow group progress, got %+v", got)
	}
}

func TestQuickAdd(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	st := ViewState{User: userA.Key, Filter: model.FilterPacked}
	it, err := c.QuickAdd(ctx, st, model.CategoryCamping, "  Slaapzak ")
	if err != nil {
		t.Fatal(err)
	}
	if !it.Packed || it.Name != "Slaapzak" || it.Category != "Kamperen & Slaap" {
		t.Errorf("unexpected quick-added item %+v", it)
	}

	it, err = c.QuickAdd(ctx, st.WithFilter(model.FilterAll), model.CategoryCamping, "Matje")
	if err != nil {
		t.Fatal(err)
	}
	if it.Packed {
		t.Error("quick add outside the packed view must start unpacked")
	}

	for _, blocked := range []ViewState{st.WithFilter(model.FilterDeleted), st.WithSearch("tent")} {
		if _, err := c.QuickAdd(ctx, blocked, model.CategoryCamping, "Kussen"); !model.IsValidation(err) {
			t.Errorf("QuickAdd in %+v: expected validation error, got %v", blocked, err)
		}
	}
}

func TestUnpackAllNeedsConfirmation(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	tent := add(t, c, userA, "Tent", "Kamperen & Slaap")
	if _, err := c.SetPacked(ctx, userA, tent.ID, true); err != nil {
		t.Fatal(err)
	}

	if _, err := c.UnpackAll(ctx, userA, false); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	p, _ := c.Progress(ctx, userA)
	if p.Overall.Packed != 1 {
		t.Fatal("unconfirmed unpack changed the list")
	}

	n, err := c.UnpackAll(ctx, userA, true)
	if err != nil || n != 1 {
		t.Fatalf("UnpackAll = %d, %v", n, err)
	}
	p, _ = c.Progress(ctx, userA)
	if p.Overall.Packed != 0 {
		t.Errorf("expected everything unpacked, got %+v", p.Overall)
	}
}

func TestSuggestionLifecycle(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	tent := add(t, c, userA, "Tent", "Kamperen & Slaap")
	st := ViewState{User: userA.Key}

	st, it, err := c.Suggest(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	if it == nil || it.ID != tent.ID || st.Suggestion == nil {
		t.Fatalf("expected Tent to be suggested, got %+v / %+v", it, st.Suggestion)
	}

	v, err := c.View(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	if v.Suggestion == nil || v.State.Suggestion == nil {
		t.Fatal("valid suggestion must survive a reload")
	}

	if _, err := c.Rename(ctx, userA, tent.ID, "Tunneltent"); err != nil {
		t.Fatal(err)
	}
	v, err = c.View(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	if v.Suggestion != nil || v.State.Suggestion != nil {
		t.Error("renamed item must invalidate the suggestion")
	}

	st, it, err = c.Suggest(ctx, v.State)
	if err != nil || it == nil {
		t.Fatalf("Suggest: %v, %v", it, err)
	}
	st, it, err = c.AcceptSuggestion(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	if !it.Packed || st.Suggestion != nil {
		t.Errorf("accept must pack and clear, got %+v / %+v", it, st.Suggestion)
	}

	st, _, err = c.AcceptSuggestion(ctx, st.WithSuggestion(&Pending{ID: tent.ID, Name: "Tunneltent"}))
	if !errors.Is(err, ErrStaleSuggestion) || st.Suggestion != nil {
		t.Errorf("expected stale suggestion to be cleared, got %v", err)
	}

	st, it, err = c.Suggest(ctx, st)
	if err != nil || it != nil || st.Suggestion != nil {
		t.Errorf("expected no candidates, got %+v, %v", it, err)
	}
}

func TestPeerSuggestions(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	add(t, c, userA, "Tent", "Kamperen & Slaap")
	add(t, c, userB, "Tent", "Kamperen & Slaap")
	add(t, c, userB, "Zaklamp", "Elektronica")

	feed, err := c.PeerSuggestions(ctx, userA)
	if err != nil {
		t.Fatal(err)
	}
	want := []suggest.Suggestion{{Name: "Zaklamp", Category: "Elektronica"}}
	if diff := cmp.Diff(want, feed); diff != "" {
		t.Fatalf("feed mismatch (-want +got):\n%s", diff)
	}

	it, err := c.AcceptPeerSuggestion(ctx, userA, feed[0])
	if err != nil {
		t.Fatal(err)
	}
	if it.Name != "Zaklamp" || it.Category != "Elektronica" {
		t.Errorf("unexpected accepted item %+v", it)
	}

	feed, err = c.PeerSuggestions(ctx, userA)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed after accepting, got %v", feed)
	}
}

func TestAcceptPeerSuggestionUnknownCategory(t *testing.T) {
	c, _ := newTestController(t)

	it, err := c.AcceptPeerSuggestion(context.Background(), userA, suggest.Suggestion{Name: "Hamer", Category: "Gereedschap"})
	if err != nil {
		t.Fatal(err)
	}
	if it.Category != model.DefaultCategory.Label() {
		t.Errorf("category = %q, want fallback", it.Category)
	}
}

func TestLoadPreset(t *testing.T) {
	c, dir := newTestController(t)
	ctx := context.Background()

	add(t, c, userA, "Tent", "Kamperen & Slaap")
	if err := os.WriteFile(filepath.Join(dir, "_weekend.csv"),
		[]byte("Item;Category;Packed\nZonnebrand;Hygiëne & Verzorging;True\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := c.LoadPreset(ctx, userA, "_ontbreekt.csv"); !errors.Is(err, preset.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	v, _ := c.View(ctx, ViewState{User: userA.Key})
	if diff := cmp.Diff(map[string][]string{"Kamperen & Slaap": {"Tent"}}, groupNames(v)); diff != "" {
		t.Errorf("failed preset load changed the list (-want +got):\n%s", diff)
	}

	n, err := c.LoadPreset(ctx, userA, "_weekend.csv")
	if err != nil || n != 1 {
		t.Fatalf("LoadPreset = %d, %v", n, err)
	}
	v, _ = c.View(ctx, ViewState{User: userA.Key})
	if diff := cmp.Diff(map[string][]string{"Hygiëne & Verzorging": {"Zonnebrand"}}, groupNames(v)); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}
	if v.Progress.Overall.Packed != 0 {
		t.Error("preset items must start unpacked")
	}
}

func TestImportExport(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	add(t, c, userA, "Tent", "Kamperen & Slaap")
	oud := add(t, c, userA, "Oud", "Overig")
	if _, err := c.Delete(ctx, userA, oud.ID); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := c.Export(ctx, userA, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Oud;Overig;False;True;") {
		t.Errorf("export must include deleted items:\n%s", buf.String())
	}

	n, err := c.Import(ctx, userB, &buf)
	if err != nil || n != 2 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	v, _ := c.View(ctx, ViewState{User: userB.Key})
	if diff := cmp.Diff(map[string][]string{"Kamperen & Slaap": {"Tent"}}, groupNames(v)); diff != "" {
		t.Errorf("import mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Import(ctx, userB, strings.NewReader("Naam\nTent\n")); !model.IsValidation(err) {
		t.Errorf("expected validation error for a malformed file, got %v", err)
	}
	if got := ExportName(userA); got != "david_and_julia_paklijst.csv" {
		t.Errorf("ExportName = %q", got)
	}
}

func TestImportReadFailureKeepsCause(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()
	add(t, c, userA, "Tent", "Kamperen & Slaap")

	cut := errors.New("upload cut off")
	r := io.MultiReader(strings.NewReader("Item;Category\nSok;Kleding\n"), iotest.ErrReader(cut))
	_, err := c.Import(ctx, userA, r)
	if !errors.Is(err, cut) || model.IsValidation(err) {
		t.Fatalf("expected the read error, got %v", err)
	}

	v, _ := c.View(ctx, ViewState{User: userA.Key})
	if diff := cmp.Diff(map[string][]string{"Kamperen & Slaap": {"Tent"}}, groupNames(v)); diff != "" {
		t.Errorf("list changed after failed import (-want +got):\n%s", diff)
	}
}

func TestOthersProgress(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	z := add(t, c, userB, "Zaklamp", "Elektronica")
	add(t, c, userB, "Tent", "Kamperen & Slaap")
	if _, err := c.SetPacked(ctx, userB, z.ID, true); err != nil {
		t.Fatal(err)
	}

	reports, err := c.OthersProgress(ctx, userA)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].User.Key != userB.Key {
		t.Fatalf("unexpected reports %+v", reports)
	}
	if reports[0].Overall != (progress.Count{Packed: 1, Total: 2, Percent: 50}) {
		t.Errorf("unexpected progress %+v", reports[0].Overall)
	}

	all, err := c.AllProgress(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("AllProgress = %d reports, %v", len(all), err)
	}
}

func TestUnknownUser(t *testing.T) {
	c, _ := newTestController(t)

	if _, err := c.View(context.Background(), ViewState{User: "nobody"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestViewStateWithUserDropsSuggestion(t *testing.T) {
	st := ViewState{User: userA.Key, Filter: model.FilterPacked, Suggestion: &Pending{ID: 1, Name: "Tent"}}

	if st.WithUser(userA.Key).Suggestion == nil {
		t.Error("same user must keep the suggestion")
	}
	next := st.WithUser(userB.Key)
	if next.Suggestion != nil || next.Filter != model.FilterPacked {
		t.Errorf("unexpected state after switching user: %+v", next)
	}
	if st.User != userA.Key {
		t.Error("WithUser must not modify the receiver")
	}
}
