package order

import (
	"github.com/tidwall/gjson"

	"github.com/alexhholmes/avltriee"
)

// JSON orders gjson results. Values of different JSON types sort by type
// (null, false, number, string, true, object/array); values of the same type
// sort by number or by case-sensitive text.
func JSON(a, b gjson.Result) int {
	switch {
	case a.Less(b, true):
		return -1
	case b.Less(a, true):
		return 1
	default:
		return 0
	}
}

// JSONField orders JSON documents by the value found at a gjson path. A
// missing field sorts like null.
func JSONField(path string) func(a, b string) int {
	return func(a, b string) int {
		return JSON(gjson.Get(a, path), gjson.Get(b, path))
	}
}

// JSONQuery searches JSON documents ordered by JSONField(path) for the given
// key, so callers can look rows up without building a whole document.
func JSONQuery(path string, key gjson.Result) avltriee.Query[string] {
	return avltriee.By(key, func(stored string, key gjson.Result) int {
		return JSON(gjson.Get(stored, path), key)
	})
}

// JSONValue parses a single JSON value, for use as a JSONQuery key.
func JSONValue(raw string) gjson.Result {
	return gjson.Parse(raw)
}
