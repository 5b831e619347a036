// Package navigator walks the distinct enterprises of a batch one at a
// time, month detail included. The cursor is cyclic: stepping past
// either end wraps around instead of clamping.
package navigator

import (
	"sort"

	"github.com/channelops/commission-review/internal/domain"
)

// Navigator is a cursor over the aggregator's enterprise rollups in
// their first-seen order. Not safe for concurrent use.
type Navigator struct {
	rollups []domain.EnterpriseRollup
	idx     int
}

// New starts the cursor at index 0. An empty rollup list is valid; the
// cursor then has no current enterprise.
func New(rollups []domain.EnterpriseRollup) *Navigator {
	return &Navigator{rollups: rollups}
}

func (n *Navigator) Len() int   { return len(n.rollups) }
func (n *Navigator) Index() int { return n.idx }

// Next advances the cursor, wrapping from the last enterprise to the
// first, and returns the new current rollup.
func (n *Navigator) Next() (domain.EnterpriseRollup, bool) {
	if len(n.rollups) == 0 {
		return domain.EnterpriseRollup{}, false
	}
	n.idx = (n.idx + 1) % len(n.rollups)
	return n.Current()
}

// Prev steps back, wrapping from index 0 to the last enterprise.
func (n *Navigator) Prev() (domain.EnterpriseRollup, bool) {
	if len(n.rollups) == 0 {
		return domain.EnterpriseRollup{}, false
	}
	n.idx = (n.idx - 1 + len(n.rollups)) % len(n.rollups)
	return n.Current()
}

// Current returns the rollup under the cursor with its monthly buckets
// sorted most-recent-first. The rollup's own bucket slice is not
// touched.
func (n *Navigator) Current() (domain.EnterpriseRollup, bool) {
	if len(n.rollups) == 0 {
		return domain.EnterpriseRollup{}, false
	}
	r := n.rollups[n.idx]
	months := make([]domain.MonthlyBucket, len(r.Months))
	copy(months, r.Months)
	sort.SliceStable(months, func(i, j int) bool {
		return months[i].Month > months[j].Month
	})
	r.Months = months
	return r, true
}
