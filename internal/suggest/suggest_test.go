package suggest

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/paklijst/internal/model"
)

func TestPickOnlyUnpacked(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Tent", Packed: true},
		{ID: 2, Name: "Slaapzak"},
		{ID: 3, Name: "Oud", Deleted: true},
		{ID: 4, Name: "Zaklamp"},
		{ID: 5, Name: "Weg ingepakt", Packed: true, Deleted: true},
	}
	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		it, ok := Pick(items, rng)
		if !ok {
			t.Fatal("expected a candidate")
		}
		if it.Packed || it.Deleted {
			t.Fatalf("picked %+v", it)
		}
	}
}

func TestPickUniform(t *testing.T) {
	var items []model.Item
	for i := range 4 {
		items = append(items, model.Item{ID: int64(i + 1), Name: string(rune('A' + i))})
	}
	rng := rand.New(rand.NewPCG(42, 7))

	const draws = 40000
	counts := map[int64]int{}
	for range draws {
		it, _ := Pick(items, rng)
		counts[it.ID]++
	}

	for id, n := range counts {
		freq := float64(n) / draws
		if freq < 0.23 || freq > 0.27 {
			t.Errorf("item %d picked with frequency %.3f, want about 0.25", id, freq)
		}
	}
	if len(counts) != 4 {
		t.Errorf("expected every item to be picked, got %v", counts)
	}
}

func TestPickEmpty(t *testing.T) {
	items := []model.Item{{ID: 1, Name: "Tent", Packed: true}}
	if _, ok := Pick(items, nil); ok {
		t.Error("expected no candidates")
	}
	if _, ok := Pick(nil, nil); ok {
		t.Error("expected no candidates for an empty list")
	}
}

func TestValid(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Tent"},
		{ID: 2, Name: "Zaklamp", Packed: true},
		{ID: 3, Name: "Pet", Deleted: true},
	}

	tests := []struct {
		id   int64
		name string
		want bool
	}{
		{1, "Tent", true},
		{1, "Tentje", false},
		{2, "Zaklamp", false},
		{3, "Pet", false},
		{9, "Tent", false},
	}
	for _, tt := range tests {
		if got := Valid(items, tt.id, tt.name); got != tt.want {
			t.Errorf("Valid(%d, %q) = %v, want %v", tt.id, tt.name, got, tt.want)
		}
	}
}

func TestFeed(t *testing.T) {
	current := []model.Item{
		{Name: "Tent", Category: "Kamperen & Slaap"},
		{Name: "Pet", Category: "Kleding & Accessoires", Deleted: true},
	}
	koen := []model.Item{
		{Name: "Zaklamp", Category: "Elektronica"},
		{Name: "Tent", Category: "Kamperen & Slaap"},
		{Name: "Pet", Category: "Kleding & Accessoires"},
		{Name: "Oude kaart", Category: "Overig", Deleted: true},
	}
	lisa := []model.Item{
		{Name: "Zaklamp", Category: "Elektronica"},
		{Name: "Badpak", Category: "Kleding & Accessoires"},
	}

	got := Feed(current, koen, lisa)

	want := []Suggestion{
		{Name: "Badpak", Category: "Kleding & Accessoires"},
		{Name: "Zaklamp", Category: "Elektronica"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}

	current = append(current, model.Item{Name: "Zaklamp", Category: "Elektronica"})
	for _, s := range Feed(current, koen, lisa) {
		if s.Name == "Zaklamp" {
			t.Error("accepted suggestion still offered")
		}
	}
}
