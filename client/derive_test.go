package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listings(prices ...float64) []PropertyView {
	out := make([]PropertyView, len(prices))
	for i, p := range prices {
		out[i] = PropertyView{ID: string(rune('a' + i)), Title: "Listing", Price: p}
	}
	return out
}

func TestDerive_MinPriceFilter(t *testing.T) {
	items := listings(100000, 500000)

	got := Derive(items, Filters{MinPrice: "300000"}, Sort{})
	require.Len(t, got, 1)
	assert.Equal(t, 500000.0, got[0].Price)
}

func TestDerive_PriceSort(t *testing.T) {
	items := listings(100, 300, 200)

	asc := Derive(items, Filters{}, Sort{Key: "price", Direction: Ascending})
	require.Len(t, asc, 3)
	assert.Equal(t, []float64{100, 200, 300}, []float64{asc[0].Price, asc[1].Price, asc[2].Price})

	desc := Derive(items, Filters{}, Sort{Key: "price", Direction: Descending})
	assert.Equal(t, []float64{300, 200, 100}, []float64{desc[0].Price, desc[1].Price, desc[2].Price})
}

func TestDerive_ConjunctiveFilters(t *testing.T) {
	items := []PropertyView{
		{ID: "1", Price: 350000, Bedrooms: 2, Address: "12 Oak St, Springfield, IL"},
		{ID: "2", Price: 350000, Bedrooms: 4, Address: "9 Elm Ave, Springfield, IL"},
		{ID: "3", Price: 900000, Bedrooms: 4, Address: "1 Shore Dr, Lakeside, MI"},
	}

	got := Derive(items, Filters{MinPrice: "300000", MaxPrice: "500000", MinBedrooms: "3", Location: "springfield"}, Sort{})
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestDerive_UnparsableCriterionMatchesNothing(t *testing.T) {
	items := listings(100000, 500000)

	got := Derive(items, Filters{MinPrice: "cheap"}, Sort{})
	assert.Empty(t, got)
}

func TestDerive_EmptyFiltersKeepEverything(t *testing.T) {
	items := listings(1, 2, 3)

	got := Derive(items, Filters{}, Sort{})
	assert.Len(t, got, 3)
}

func TestDerive_LocationSubstringCaseInsensitive(t *testing.T) {
	items := []PropertyView{
		{ID: "1", Address: "12 Oak St, SPRINGFIELD, IL"},
		{ID: "2", Address: "1 Shore Dr, Lakeside, MI"},
	}

	got := Derive(items, Filters{Location: "springfield"}, Sort{})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	items := listings(300, 100, 200)
	original := make([]PropertyView, len(items))
	copy(original, items)

	_ = Derive(items, Filters{MinPrice: "150"}, Sort{Key: "price", Direction: Ascending})
	assert.Equal(t, original, items)
}

func TestDerive_Deterministic(t *testing.T) {
	items := []PropertyView{
		{ID: "1", Title: "b", Price: 200},
		{ID: "2", Title: "a", Price: 200},
		{ID: "3", Title: "c", Price: 100},
	}

	first := Derive(items, Filters{}, Sort{Key: "price", Direction: Ascending})
	second := Derive(items, Filters{}, Sort{Key: "price", Direction: Ascending})
	assert.Equal(t, first, second)
	// Ties keep input order.
	assert.Equal(t, []string{"3", "1", "2"}, []string{first[0].ID, first[1].ID, first[2].ID})
}

func TestDerive_StringSortCaseFolded(t *testing.T) {
	items := []PropertyView{
		{ID: "1", Title: "beta"},
		{ID: "2", Title: "Alpha"},
		{ID: "3", Title: "gamma"},
	}

	got := Derive(items, Filters{}, Sort{Key: "title", Direction: Ascending})
	assert.Equal(t, []string{"2", "1", "3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestNextSort(t *testing.T) {
	s := Sort{}

	s = NextSort(s, "price")
	assert.Equal(t, Sort{Key: "price", Direction: Ascending}, s)

	s = NextSort(s, "price")
	assert.Equal(t, Sort{Key: "price", Direction: Descending}, s)

	s = NextSort(s, "price")
	assert.Equal(t, Sort{Key: "price", Direction: Ascending}, s)

	s = NextSort(s, "bedrooms")
	assert.Equal(t, Sort{Key: "bedrooms", Direction: Ascending}, s, "new key resets to ascending")
}
