package client

import (
	"sort"
	"strconv"
	"strings"
)

// Filters is the per-view filter criteria. Criteria are kept as the raw
// strings the user typed (that is also how they persist); empty means the
// criterion is inactive. A non-empty criterion that does not parse as a
// number matches nothing.
type Filters struct {
	MinPrice    string `json:"minPrice"`
	MaxPrice    string `json:"maxPrice"`
	MinBedrooms string `json:"minBedrooms"`
	Location    string `json:"location"`
}

// Sort directions.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// Sort is the per-view sort descriptor. An empty Key means unsorted.
type Sort struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// NextSort returns the descriptor after the user picks key: choosing the
// current key flips the direction, any other key starts ascending.
func NextSort(current Sort, key string) Sort {
	if current.Key == key {
		next := Sort{Key: key, Direction: Ascending}
		if current.Direction == Ascending {
			next.Direction = Descending
		}
		return next
	}
	return Sort{Key: key, Direction: Ascending}
}

// Derive applies filters then sort to items and returns a new slice. It is
// pure: the input slice and its elements are never modified, and the same
// inputs always produce the same output. Ties keep their input order.
func Derive(items []PropertyView, filters Filters, s Sort) []PropertyView {
	out := make([]PropertyView, 0, len(items))
	for _, item := range items {
		if matches(item, filters) {
			out = append(out, item)
		}
	}

	if s.Key == "" {
		return out
	}

	desc := s.Direction == Descending
	sort.SliceStable(out, func(i, j int) bool {
		less := lessByKey(out[i], out[j], s.Key)
		if desc {
			return lessByKey(out[j], out[i], s.Key)
		}
		return less
	})
	return out
}

// matches applies every active criterion conjunctively.
func matches(item PropertyView, f Filters) bool {
	if f.MinPrice != "" {
		min, err := strconv.ParseFloat(strings.TrimSpace(f.MinPrice), 64)
		if err != nil || item.Price < min {
			return false
		}
	}
	if f.MaxPrice != "" {
		max, err := strconv.ParseFloat(strings.TrimSpace(f.MaxPrice), 64)
		if err != nil || item.Price > max {
			return false
		}
	}
	if f.MinBedrooms != "" {
		min, err := strconv.ParseFloat(strings.TrimSpace(f.MinBedrooms), 64)
		if err != nil || item.Bedrooms < min {
			return false
		}
	}
	if f.Location != "" {
		if !strings.Contains(strings.ToLower(item.Address), strings.ToLower(f.Location)) {
			return false
		}
	}
	return true
}

func lessByKey(a, b PropertyView, key string) bool {
	switch key {
	case "title":
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case "address":
		return strings.ToLower(a.Address) < strings.ToLower(b.Address)
	case "price":
		return a.Price < b.Price
	case "bedrooms":
		return a.Bedrooms < b.Bedrooms
	case "bathrooms":
		return a.Bathrooms < b.Bathrooms
	case "status":
		return strings.ToLower(a.Status) < strings.ToLower(b.Status)
	default:
		return false
	}
}
