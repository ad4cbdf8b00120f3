package model

import (
	"fmt"
	"strings"
	"time"
)

// Item is a single packable thing on a user's list.
type Item struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Packed   bool       `json:"packed"`
	Deleted  bool       `json:"deleted"`
	Notes    string     `json:"notes"`
	PackedAt *time.Time `json:"packed_at,omitempty"`
	History  string     `json:"history,omitempty"`
}

// Group returns the category the item is grouped under. The stored category
// string is never rewritten; unknown values land in CategoryOther.
func (i Item) Group() Category {
	return CategoryOf(i.Category)
}

// Field names an editable item column. The values match the persisted
// column headers.
type Field string

// Editable fields.
const (
	FieldName     Field = "Item"
	FieldCategory Field = "Category"
	FieldPacked   Field = "Packed"
	FieldDeleted  Field = "Deleted"
	FieldNotes    Field = "Notes"
)

// ParseField resolves a column header or its lowercase alias.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item", "name":
		return FieldName, nil
	case "category":
		return FieldCategory, nil
	case "packed":
		return FieldPacked, nil
	case "deleted":
		return FieldDeleted, nil
	case "notes", "note":
		return FieldNotes, nil
	}
	return "", &ValidationError{Field: "field", Message: fmt.Sprintf("unknown field %q", s)}
}

// History line verbs.
const (
	HistoryPacked   = "Ingepakt"
	HistoryUnpacked = "Uitgepakt"
)

// HistoryLine formats one history entry, e.g. "2025-07-24 - Ingepakt: Tent".
func HistoryLine(at time.Time, packed bool, name string) string {
	verb := HistoryUnpacked
	if packed {
		verb = HistoryPacked
	}
	return fmt.Sprintf("%s - %s: %s\n", at.Format(time.DateOnly), verb, name)
}

// SetPacked flips the packed flag, stamping the timestamp and appending to
// the history log.
func (i *Item) SetPacked(packed bool, at time.Time) {
	i.Packed = packed
	if packed {
		t := at
		i.PackedAt = &t
	} else {
		i.PackedAt = nil
	}
	i.History += HistoryLine(at, packed, i.Name)
}

// Fresh returns a copy of the item reset to the state of a newly loaded
// preset entry.
func (i Item) Fresh() Item {
	return Item{Name: i.Name, Category: i.Category}
}
