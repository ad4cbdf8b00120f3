package model

import (
	"testing"
	"time"
)

func TestUserKey(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"David & Julia", "david_and_julia"},
		{"Koen & Rumeysa", "koen_and_rumeysa"},
		{"  Solo  ", "solo"},
	}

	for _, tt := range tests {
		got := UserKey(tt.name)
		if got != tt.expected {
			t.Errorf("UserKey(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestRosterLookup(t *testing.T) {
	r := NewRoster("David & Julia", "Koen & Rumeysa")

	for _, s := range []string{"David & Julia", "david_and_julia"} {
		u, ok := r.Lookup(s)
		if !ok || u.Name != "David & Julia" {
			t.Errorf("Lookup(%q) = %+v, %v", s, u, ok)
		}
	}
	if _, ok := r.Lookup("Nobody"); ok {
		t.Error("expected unknown user to be rejected")
	}

	others := r.Others(r[0])
	if len(others) != 1 || others[0].Key != "koen_and_rumeysa" {
		t.Errorf("unexpected others: %+v", others)
	}
}

func TestCategoryFallback(t *testing.T) {
	tests := []struct {
		label string
		want  Category
		known bool
	}{
		{"Kamperen & Slaap", CategoryCamping, true},
		{" Elektronica ", CategoryElectronics, true},
		{"Hygiëne & Verzorging", CategoryHygiene, true},
		{"Gereedschap", CategoryOther, false},
		{"", CategoryOther, false},
	}

	for _, tt := range tests {
		got, known := ParseCategory(tt.label)
		if got != tt.want || known != tt.known {
			t.Errorf("ParseCategory(%q) = %v, %v; want %v, %v", tt.label, got, known, tt.want, tt.known)
		}
	}

	it := Item{Category: "Legacy"}
	if it.Group() != DefaultCategory {
		t.Errorf("expected fallback group, got %v", it.Group())
	}
	if it.Category != "Legacy" {
		t.Error("grouping must not rewrite the stored category")
	}
	if len(Categories()) != 9 {
		t.Errorf("expected 9 categories, got %d", len(Categories()))
	}
}

func TestFilterMatch(t *testing.T) {
	items := []Item{
		{Name: "open"},
		{Name: "packed", Packed: true},
		{Name: "gone", Deleted: true},
		{Name: "gone packed", Deleted: true, Packed: true},
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"open", "packed"}},
		{FilterUnpacked, []string{"open"}},
		{FilterPacked, []string{"packed"}},
		{FilterDeleted, []string{"gone", "gone packed"}},
	}

	for _, tt := range tests {
		var got []string
		for _, it := range items {
			if tt.filter.Match(it) {
				got = append(got, it.Name)
			}
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%v: got %v, want %v", tt.filter, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%v: got %v, want %v", tt.filter, got, tt.want)
			}
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"Alle", FilterAll, false},
		{"Niet ingepakt", FilterUnpacked, false},
		{"packed", FilterPacked, false},
		{"Verwijderd", FilterDeleted, false},
		{"bogus", FilterAll, true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseFilter("bogus"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSetPackedHistory(t *testing.T) {
	at := time.Date(2025, 7, 24, 10, 0, 0, 0, time.UTC)
	it := Item{Name: "Tent"}

	it.SetPacked(true, at)
	if !it.Packed || it.PackedAt == nil || !it.PackedAt.Equal(at) {
		t.Fatalf("expected packed with timestamp, got %+v", it)
	}

	it.SetPacked(false, at.AddDate(0, 0, 3))
	if it.Packed || it.PackedAt != nil {
		t.Fatalf("expected unpacked without timestamp, got %+v", it)
	}

	want := "2025-07-24 - Ingepakt: Tent\n2025-07-27 - Uitgepakt: Tent\n"
	if it.History != want {
		t.Errorf("history = %q, want %q", it.History, want)
	}
}
