package recommend

// History keeps recent chat queries. Once it grows past five entries it is cut
// back to the latest three.
type History struct {
	items []string
}

const (
	historyLimit = 5
	historyKeep  = 3
)

// Add records query.
func (h *History) Add(query string) {
	h.items = append(h.items, query)
	if len(h.items) > historyLimit {
		h.items = append([]string(nil), h.items[len(h.items)-historyKeep:]...)
	}
}

// Items returns the recorded queries, oldest first.
func (h *History) Items() []string {
	return append([]string(nil), h.items...)
}

// Len returns the number of recorded queries.
func (h *History) Len() int {
	return len(h.items)
}
