// Package suggest picks what to pack next.
package suggest

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/erazemk/paklijst/internal/model"
)

// Candidates returns the items a random pick can land on: unpacked and
// not deleted.
func Candidates(items []model.Item) []model.Item {
	var out []model.Item
	for _, it := range items {
		if !it.Packed && !it.Deleted {
			out = append(out, it)
		}
	}
	return out
}

// Pick chooses one candidate uniformly at random. It reports false when
// nothing is left to pack. A nil rng uses the global source.
func Pick(items []model.Item, rng *rand.Rand) (model.Item, bool) {
	c := Candidates(items)
	if len(c) == 0 {
		return model.Item{}, false
	}
	if rng == nil {
		return c[rand.IntN(len(c))], true
	}
	return c[rng.IntN(len(c))], true
}

// Valid reports whether a pending suggestion still refers to an unpacked,
// non-deleted item with the same name.
func Valid(items []model.Item, id int64, name string) bool {
	for _, it := range Candidates(items) {
		if it.ID == id && it.Name == name {
			return true
		}
	}
	return false
}

// Suggestion is an item another user has that the current user lacks.
type Suggestion struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Feed lists the distinct (name, category) pairs found in the non-deleted
// items of other users whose name does not occur among the current user's
// items, deleted ones included. The result is sorted by name, then
// category.
func Feed(current []model.Item, others ...[]model.Item) []Suggestion {
	have := make(map[string]bool, len(current))
	for _, it := range current {
		have[it.Name] = true
	}

	seen := map[Suggestion]bool{}
	out := []Suggestion{}
	for _, items := range others {
		for _, it := range items {
			s := Suggestion{Name: it.Name, Category: it.Category}
			if it.Deleted || have[it.Name] || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}

	slices.SortFunc(out, func(a, b Suggestion) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}
