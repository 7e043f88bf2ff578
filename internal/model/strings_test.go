package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UnionStrings([]string{"a", "b"}, []string{"b", "c"}))
	assert.Equal(t, []string{"a"}, UnionStrings(nil, []string{"a", "a"}))
	assert.Nil(t, UnionStrings(nil, nil))

	once := UnionStrings([]string{"x"}, []string{"y"})
	twice := UnionStrings(once, []string{"y"})
	assert.Equal(t, once, twice)

	assert.ElementsMatch(t,
		UnionStrings([]string{"1", "2"}, []string{"3"}),
		UnionStrings([]string{"3"}, []string{"1", "2"}),
	)

	existing := []string{"a"}
	_ = UnionStrings(existing, []string{"b"})
	assert.Equal(t, []string{"a"}, existing)
}

func TestDedupOrdered(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, DedupOrdered([]string{"b", "a", "b", "c", "a"}))
	// Raw comparison: case variants are distinct.
	assert.Equal(t, []string{"https://x.com/A", "https://x.com/a"}, DedupOrdered([]string{"https://x.com/A", "https://x.com/a"}))
	assert.Nil(t, DedupOrdered(nil))
}
