package ordmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertionOrderPreserved(t *testing.T) {
	m := New[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	m.Set("a", 4) // update must not move "a"

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, []int{1, 4, 3}, m.Values())
	assert.Equal(t, 3, m.Len())
}

func TestUpsertCreatesOnce(t *testing.T) {
	m := New[int, []string]()
	m.Upsert(7, nil, func(v []string) []string { return append(v, "x") })
	m.Upsert(7, nil, func(v []string) []string { return append(v, "y") })

	v, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, v)
	assert.Equal(t, 1, m.Len())
}
