package history

import (
	"slices"
	"strings"
)

// Search renders entries whose preview summary contains query, ignoring
// case, most recent first. A limit <= 0 means no limit.
func (h *History) Search(query string, r Renderer, limit int) []string {
	needle := strings.ToLower(query)
	var out []string
	for _, id := range slices.Backward(h.order) {
		if limit > 0 && len(out) >= limit {
			break
		}
		p := h.entries[id].Preview
		if strings.Contains(strings.ToLower(p.Summary), needle) {
			out = append(out, r.Render(id, p))
		}
	}
	return out
}
