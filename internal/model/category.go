package model

import "strings"

// Category is the closed set of labels items are grouped under.
type Category int

// Categories, in display order.
const (
	CategoryGroceries Category = iota
	CategoryFirstAid
	CategoryElectronics
	CategoryHygiene
	CategoryCamping
	CategoryKitchen
	CategoryClothing
	CategoryOther
	CategoryParty
)

// DefaultCategory is the fallback bucket for unrecognized labels.
const DefaultCategory = CategoryOther

var categoryLabels = [...]string{
	CategoryGroceries:   "Boodschappen",
	CategoryFirstAid:    "EHBO & Medicatie",
	CategoryElectronics: "Elektronica",
	CategoryHygiene:     "Hygiëne & Verzorging",
	CategoryCamping:     "Kamperen & Slaap",
	CategoryKitchen:     "Keuken & Eten",
	CategoryClothing:    "Kleding & Accessoires",
	CategoryOther:       "Overig",
	CategoryParty:       "Party Gear",
}

var categoryEmojis = [...]string{
	CategoryGroceries:   "🛒",
	CategoryFirstAid:    "💊",
	CategoryElectronics: "🔌",
	CategoryHygiene:     "🧼",
	CategoryCamping:     "⛺",
	CategoryKitchen:     "🍽️",
	CategoryClothing:    "👕",
	CategoryOther:       "📦",
	CategoryParty:       "🎉",
}

// Categories returns every category in display order.
func Categories() []Category {
	cs := make([]Category, len(categoryLabels))
	for i := range categoryLabels {
		cs[i] = Category(i)
	}
	return cs
}

// Label returns the persisted label of the category.
func (c Category) Label() string {
	if c < 0 || int(c) >= len(categoryLabels) {
		return categoryLabels[DefaultCategory]
	}
	return categoryLabels[c]
}

// Emoji returns the display icon of the category.
func (c Category) Emoji() string {
	if c < 0 || int(c) >= len(categoryEmojis) {
		return categoryEmojis[DefaultCategory]
	}
	return categoryEmojis[c]
}

func (c Category) String() string {
	return c.Label()
}

// ParseCategory resolves an exact label. Surrounding whitespace is ignored.
func ParseCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for i, l := range categoryLabels {
		if l == label {
			return Category(i), true
		}
	}
	return DefaultCategory, false
}

// CategoryOf resolves a label, falling back to DefaultCategory.
func CategoryOf(label string) Category {
	c, _ := ParseCategory(label)
	return c
}
