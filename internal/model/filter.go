package model

import (
	"fmt"
	"strings"
)

// Filter selects which items of a list are visible.
type Filter int

// List filters.
const (
	FilterAll Filter = iota
	FilterUnpacked
	FilterPacked
	FilterDeleted
)

// Filters returns the filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterUnpacked, FilterPacked, FilterDeleted}
}

// Match reports whether the item is visible under the filter. Deleted items
// only ever match FilterDeleted.
func (f Filter) Match(it Item) bool {
	switch f {
	case FilterDeleted:
		return it.Deleted
	case FilterPacked:
		return !it.Deleted && it.Packed
	case FilterUnpacked:
		return !it.Deleted && !it.Packed
	default:
		return !it.Deleted
	}
}

func (f Filter) String() string {
	switch f {
	case FilterUnpacked:
		return "unpacked"
	case FilterPacked:
		return "packed"
	case FilterDeleted:
		return "deleted"
	default:
		return "all"
	}
}

// Label returns the Dutch display label.
func (f Filter) Label() string {
	switch f {
	case FilterUnpacked:
		return "Niet ingepakt"
	case FilterPacked:
		return "Ingepakt"
	case FilterDeleted:
		return "Verwijderd"
	default:
		return "Alle"
	}
}

// ParseFilter accepts the identifier or the Dutch label of a filter. An empty
// string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "alle", "alles":
		return FilterAll, nil
	case "unpacked", "niet ingepakt":
		return FilterUnpacked, nil
	case "packed", "ingepakt":
		return FilterPacked, nil
	case "deleted", "verwijderd":
		return FilterDeleted, nil
	}
	return FilterAll, &ValidationError{Field: "filter", Message: fmt.Sprintf("unknown filter %q", s)}
}
