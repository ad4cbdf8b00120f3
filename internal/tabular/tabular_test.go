package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/paklijst/internal/model"
)

func TestWriteCSV(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Tent", Category: "Kamperen & Slaap", Packed: true},
		{ID: 2, Name: "Oud; kapot", Category: "Overig", Deleted: true, Notes: "weg"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		t.Fatal(err)
	}

	want := "Item;Category;Packed;Deleted;Notes\n" +
		"Tent;Kamperen & Slaap;True;False;\n" +
		"\"Oud; kapot\";Overig;False;True;weg\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestReadCSVDefaultsMissingColumns(t *testing.T) {
	in := "\uFEFFItem;Category\nTent;Kamperen & Slaap\n;Overig\nZaklamp;Elektronica\n"

	items, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}

	want := []model.Item{
		{Name: "Tent", Category: "Kamperen & Slaap"},
		{Name: "Zaklamp", Category: "Elektronica"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVRoundTrip(t *testing.T) {
	items := []model.Item{
		{Name: "Tent", Category: "Kamperen & Slaap", Packed: true, Notes: "2p"},
		{Name: "Oud", Category: "Gereedschap", Deleted: true},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(items, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVRicherColumns(t *testing.T) {
	in := "Item;Category;Packed;Deleted;Timestamp;Notes;History\n" +
		"Tent;Kamperen & Slaap;1;0;2025-07-24 10:15:00;;2025-07-24 - Ingepakt: Tent\n"

	items, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if !it.Packed || it.PackedAt == nil || it.PackedAt.Hour() != 10 {
		t.Errorf("unexpected packed state: %+v", it)
	}
	if it.History != "2025-07-24 - Ingepakt: Tent\n" {
		t.Errorf("history = %q", it.History)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"empty", nil},
		{"no category", [][]string{{"Item"}, {"Tent"}}},
		{"bad bool", [][]string{{"Item", "Category", "Packed"}, {"Tent", "Overig", "misschien"}}},
	}

	for _, tt := range tests {
		if _, err := Decode(tt.rows); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"True", true, false},
		{"1", true, false},
		{"ja", true, false},
		{"", false, false},
		{"False", false, false},
		{"0", false, false},
		{"nee", false, false},
		{"wellicht", false, true},
	}

	for _, tt := range tests {
		got, err := ParseBool(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBool(%q) = %v, %v; want %v, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
