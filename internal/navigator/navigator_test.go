package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelops/commission-review/internal/domain"
)

func rollups(names ...string) []domain.EnterpriseRollup {
	out := make([]domain.EnterpriseRollup, 0, len(names))
	for i, name := range names {
		out = append(out, domain.EnterpriseRollup{EnterpriseID: int64(i + 1), EnterpriseName: name})
	}
	return out
}

func TestNextWrapsFromLastToFirst(t *testing.T) {
	n := New(rollups("E1", "E3", "E2"))

	n.Next()
	n.Next()
	require.Equal(t, 2, n.Index()) // at E2

	cur, ok := n.Next()
	require.True(t, ok)
	assert.Equal(t, 0, n.Index())
	assert.Equal(t, "E1", cur.EnterpriseName)
}

func TestPrevWrapsFromFirstToLast(t *testing.T) {
	n := New(rollups("E1", "E3", "E2"))
	require.Equal(t, 0, n.Index())

	cur, ok := n.Prev()
	require.True(t, ok)
	assert.Equal(t, 2, n.Index())
	assert.Equal(t, "E2", cur.EnterpriseName)
}

func TestSingleEnterpriseWrapsToItself(t *testing.T) {
	n := New(rollups("Only"))

	cur, ok := n.Next()
	require.True(t, ok)
	assert.Equal(t, 0, n.Index())
	assert.Equal(t, "Only", cur.EnterpriseName)

	cur, _ = n.Prev()
	assert.Equal(t, "Only", cur.EnterpriseName)
}

func TestEmptyNavigator(t *testing.T) {
	n := New(nil)

	_, ok := n.Current()
	assert.False(t, ok)
	_, ok = n.Next()
	assert.False(t, ok)
	_, ok = n.Prev()
	assert.False(t, ok)
}

func TestCurrentSortsMonthsDescending(t *testing.T) {
	r := rollups("E1")
	r[0].Months = []domain.MonthlyBucket{
		{Month: "2025-05"},
		{Month: "2025-07"},
		{Month: "2025-06"},
	}
	n := New(r)

	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "2025-07", cur.Months[0].Month)
	assert.Equal(t, "2025-06", cur.Months[1].Month)
	assert.Equal(t, "2025-05", cur.Months[2].Month)

	// Source rollup untouched.
	assert.Equal(t, "2025-05", r[0].Months[0].Month)
}
