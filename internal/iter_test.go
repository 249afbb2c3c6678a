package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcat2(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"one": 1}
	b := map[string]int{"two": 2}

	var keys []string
	for key := range Concat2(maps.All(a), maps.All(b)) {
		keys = append(keys, key)
	}
	assert.Equal([]string{"one", "two"}, keys)

	// Early stop.
	keys = keys[:0]
	for key := range Concat2(maps.All(a), maps.All(b)) {
		keys = append(keys, key)
		break
	}
	assert.Equal([]string{"one"}, keys)

	assert.Empty(slices.Collect(maps.Keys(maps.Collect(Concat2[string, int]()))))
}

func TestSorted2(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"b": 2, "a": 1}
	b := map[string]int{"c": 3, "a": 10}

	var keys []string
	var vals []int
	for key, val := range Sorted2(Concat2(maps.All(a), maps.All(b))) {
		keys = append(keys, key)
		vals = append(vals, val)
	}

	assert.Equal([]string{"a", "b", "c"}, keys)
	assert.Equal([]int{10, 2, 3}, vals)
}
