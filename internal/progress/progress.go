// Package progress computes packing completion statistics.
package progress

import "github.com/erazemk/paklijst/internal/model"

// Count is a packed/total tally.
type Count struct {
	Packed  int `json:"packed"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// CategoryCount is the tally of one category.
type CategoryCount struct {
	Category model.Category `json:"-"`
	Label    string         `json:"category"`
	Emoji    string         `json:"emoji"`
	Count
}

// Report holds overall and per-category progress.
type Report struct {
	Overall    Count           `json:"overall"`
	Categories []CategoryCount `json:"categories"`
}

// UserReport is the progress of one user.
type UserReport struct {
	User model.User `json:"user"`
	Report
}

// Aggregate tallies the non-deleted items. Categories without items are
// omitted; the rest follow display order. Items with an unknown category
// count towards the fallback category.
func Aggregate(items []model.Item) Report {
	counts := make([]Count, len(model.Categories()))
	var overall Count

	for _, it := range items {
		if it.Deleted {
			continue
		}
		c := &counts[it.Group()]
		c.Total++
		overall.Total++
		if it.Packed {
			c.Packed++
			overall.Packed++
		}
	}

	r := Report{Overall: overall.withPercent(), Categories: []CategoryCount{}}
	for _, cat := range model.Categories() {
		if counts[cat].Total == 0 {
			continue
		}
		r.Categories = append(r.Categories, CategoryCount{
			Category: cat,
			Label:    cat.Label(),
			Emoji:    cat.Emoji(),
			Count:    counts[cat].withPercent(),
		})
	}
	return r
}

// Percent returns floor(100 * packed / total), or 0 for an empty total.
func Percent(packed, total int) int {
	if total <= 0 {
		return 0
	}
	return 100 * packed / total
}

func (c Count) withPercent() Count {
	c.Percent = Percent(c.Packed, c.Total)
	return c
}
