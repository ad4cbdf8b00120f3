package model

import (
	"strings"

	"github.com/gosimple/slug"
)

// User is one of the fixed identities configured at deployment time. Each
// user owns exactly one item list.
type User struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// NewUser builds a user from its display name.
func NewUser(name string) User {
	return User{Name: strings.TrimSpace(name), Key: UserKey(name)}
}

// UserKey derives the storage key of a display name,
// e.g. "David & Julia" -> "david_and_julia".
func UserKey(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

// Roster is the closed list of users.
type Roster []User

// NewRoster builds a roster from display names.
func NewRoster(names ...string) Roster {
	r := make(Roster, 0, len(names))
	for _, n := range names {
		r = append(r, NewUser(n))
	}
	return r
}

// Lookup finds a user by key or display name.
func (r Roster) Lookup(s string) (User, bool) {
	key := UserKey(s)
	for _, u := range r {
		if u.Key == s || u.Key == key || u.Name == s {
			return u, true
		}
	}
	return User{}, false
}

// Others returns every user except u, in roster order.
func (r Roster) Others(u User) []User {
	var out []User
	for _, o := range r {
		if o.Key != u.Key {
			out = append(out, o)
		}
	}
	return out
}
