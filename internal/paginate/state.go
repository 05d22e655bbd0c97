package paginate

// State is the loop-prevention record threaded through one chain of
// continuations. The zero value is a valid first-page state. All
// mutating helpers copy, so a State can be held after emitting a
// continuation without seeing later writes.
type State struct {
	PageNumber     int             `json:"page_number,omitempty"`
	Offset         int64           `json:"offset,omitempty"`
	VisitedURLs    map[string]bool `json:"visited_urls,omitempty"`
	VisitedOffsets map[int64]bool  `json:"visited_offsets,omitempty"`
}

// NewState returns the state for the first unit of a chain
func NewState() State {
	return State{PageNumber: 1}
}

// CurrentPage returns the 1-based page ordinal
func (s State) CurrentPage() int {
	if s.PageNumber < 1 {
		return 1
	}
	return s.PageNumber
}

// SeenURL reports whether a URL was already visited in this chain
func (s State) SeenURL(url string) bool {
	return s.VisitedURLs[url]
}

// SeenOffset reports whether an offset or page ordinal was already
// visited in this chain
func (s State) SeenOffset(offset int64) bool {
	return s.VisitedOffsets[offset]
}

// WithURL returns a copy with the URL recorded as visited
func (s State) WithURL(url string) State {
	next := s
	next.VisitedURLs = copyURLSet(s.VisitedURLs)
	next.VisitedURLs[url] = true
	return next
}

// WithOffset returns a copy with the offset recorded as visited and
// set as the chain's current offset
func (s State) WithOffset(offset int64) State {
	next := s
	next.Offset = offset
	next.VisitedOffsets = copyOffsetSet(s.VisitedOffsets)
	next.VisitedOffsets[offset] = true
	return next
}

// NextPage returns a copy with the page ordinal advanced
func (s State) NextPage() State {
	next := s
	next.PageNumber = s.CurrentPage() + 1
	return next
}

// WithPage returns a copy positioned on the given page ordinal, with
// the ordinal recorded in the visited set
func (s State) WithPage(page int) State {
	next := s
	next.PageNumber = page
	next.VisitedOffsets = copyOffsetSet(s.VisitedOffsets)
	next.VisitedOffsets[int64(page)] = true
	return next
}

func copyURLSet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	return out
}

func copyOffsetSet(set map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	return out
}

// Continuation describes the next extraction unit of a chain
type Continuation struct {
	URL      string `json:"url"`
	Strategy string `json:"strategy"`
	State    State  `json:"state"`
}

// Resolution is the outcome of one continuation check. Next is nil
// when the chain is exhausted. Failures lists strategies that errored
// and were skipped; they never abort the unit.
type Resolution struct {
	Next     *Continuation
	Failures []string
}

// Exhausted reports whether the chain ends here
func (r Resolution) Exhausted() bool {
	return r.Next == nil
}
