package controller

import (
	"strings"

	"github.com/erazemk/paklijst/internal/model"
)

// Pending is a random suggestion awaiting acceptance.
type Pending struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ViewState is the per-session state of the list view. It is a value:
// every method returns a modified copy.
type ViewState struct {
	User       string
	Filter     model.Filter
	Search     string
	Suggestion *Pending
}

// WithUser switches to another user. Filter and search are kept; the
// pending suggestion belongs to the previous list and is dropped.
func (s ViewState) WithUser(key string) ViewState {
	if s.User != key {
		s.Suggestion = nil
	}
	s.User = key
	return s
}

// WithFilter sets the active filter.
func (s ViewState) WithFilter(f model.Filter) ViewState {
	s.Filter = f
	return s
}

// WithSearch sets the active search text.
func (s ViewState) WithSearch(q string) ViewState {
	s.Search = q
	return s
}

// WithSuggestion sets or clears the pending suggestion.
func (s ViewState) WithSuggestion(p *Pending) ViewState {
	if p != nil {
		cp := *p
		p = &cp
	}
	s.Suggestion = p
	return s
}

// Searching reports whether a search narrows the view.
func (s ViewState) Searching() bool {
	return strings.TrimSpace(s.Search) != ""
}

// CanQuickAdd reports whether quick add is offered in the current view.
// It is hidden while searching and in the deleted view.
func (s ViewState) CanQuickAdd() bool {
	return s.Filter != model.FilterDeleted && !s.Searching()
}
