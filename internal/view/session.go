package view

import "github.com/channelops/commission-review/internal/domain"

// Session holds the current view state for one batch. Changing any
// parameter other than the page resets the page to 1 and recomputes the
// filtered, sorted list; a page-only change re-slices the cached list.
// Session is not safe for concurrent use; the owning service serializes
// access.
type Session struct {
	records []domain.CommissionRecord
	params  Params
	sorted  []domain.CommissionRecord // filtered + sorted cache
}

// NewSession creates a session over an evaluated batch with the given
// initial parameters (page forced to 1).
func NewSession(records []domain.CommissionRecord, p Params) *Session {
	s := &Session{records: records}
	p.Page = 1
	s.params = normalize(p)
	s.recompute()
	return s
}

// Params returns the active view parameters.
func (s *Session) Params() Params { return s.params }

// Update moves the session to the requested parameters. If anything
// besides the page changed, the page resets to 1 regardless of what the
// request asked for; otherwise the requested page is clamped and only
// the slice moves.
func (s *Session) Update(p Params) Result {
	p = normalize(p)
	if !sameQuery(s.params, p) {
		p.Page = 1
		s.params = p
		s.recompute()
	} else {
		s.params.Page = p.Page
	}
	return s.Result()
}

// SetPage changes only the page. No filtering or sorting is re-run.
func (s *Session) SetPage(page int) Result {
	s.params.Page = page
	return s.Result()
}

// Result returns the current page from the cached list, clamping the
// page into range.
func (s *Session) Result() Result {
	res := paginate(s.sorted, s.params)
	s.params.Page = res.Page
	return res
}

func (s *Session) recompute() {
	filtered := filterRecords(s.records, s.params)
	sortRecords(filtered, s.params)
	s.sorted = filtered
}

func normalize(p Params) Params {
	if p.SortField == "" {
		p.SortField = SortByID
	}
	if p.SortDir != Descending {
		p.SortDir = Ascending
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// sameQuery reports whether two parameter sets differ only in page.
func sameQuery(a, b Params) bool {
	a.Page, b.Page = 0, 0
	return a == b
}
