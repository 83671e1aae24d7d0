package order

import (
	"testing"

	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

func mk(id string, attrs map[string]any) scored.Scored {
	return scored.New(listing.New(id, "", attrs), 1.0)
}

func ids(items []scored.Scored) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Listing().ID()
	}
	return out
}

func assertOrder(t *testing.T, got []scored.Scored, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d (%v)", len(got), len(want), ids(got))
	}
	for i, id := range want {
		if got[i].Listing().ID() != id {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
}

func TestByField_AscendingMissingLast(t *testing.T) {
	items := []scored.Scored{
		mk("no-price", map[string]any{}),
		mk("mid", map[string]any{"price": 250_000.0}),
		mk("cheap", map[string]any{"price": "100000"}),
		mk("garbage", map[string]any{"price": "negotiable"}),
		mk("expensive", map[string]any{"price": 900_000.0}),
	}

	got := ByField(items, "price", query.SortAscending)
	assertOrder(t, got, []string{"cheap", "mid", "expensive", "no-price", "garbage"})
}

func TestByField_DescendingMissingLast(t *testing.T) {
	items := []scored.Scored{
		mk("no-price", map[string]any{}),
		mk("mid", map[string]any{"price": 250_000.0}),
		mk("cheap", map[string]any{"price": 100_000.0}),
		mk("expensive", map[string]any{"price": 900_000.0}),
	}

	got := ByField(items, "price", query.SortDescending)
	assertOrder(t, got, []string{"expensive", "mid", "cheap", "no-price"})
}

func TestByField_StableOnTies(t *testing.T) {
	items := []scored.Scored{
		mk("first", map[string]any{"rooms": 3.0}),
		mk("second", map[string]any{"rooms": 3.0}),
		mk("third", map[string]any{"rooms": 3.0}),
	}

	got := ByField(items, "rooms", query.SortAscending)
	assertOrder(t, got, []string{"first", "second", "third"})
}

func TestByField_DoesNotMutateInput(t *testing.T) {
	items := []scored.Scored{
		mk("b", map[string]any{"price": 2.0}),
		mk("a", map[string]any{"price": 1.0}),
	}

	_ = ByField(items, "price", query.SortAscending)
	if items[0].Listing().ID() != "b" {
		t.Error("input slice reordered in place")
	}
}
