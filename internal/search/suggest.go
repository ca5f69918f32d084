package search

import (
	"sort"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
)

// KnownCuisines returns the distinct cuisines in records, first spelling wins, sorted.
func KnownCuisines(records []*models.FoodRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		key := strings.ToLower(r.Cuisine)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r.Cuisine)
	}
	sort.Strings(out)
	return out
}

// SuggestCuisines returns up to limit known cuisines close to input, nearest first.
// A cuisine is close when its edit distance is at most a third of the longer name, minimum 2.
// Prefix matches ("med" for "Mediterranean") are always included.
func SuggestCuisines(cuisines []string, input string, limit int) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || limit <= 0 {
		return nil
	}
	type candidate struct {
		name string
		dist int
	}
	var candidates []candidate
	for _, c := range cuisines {
		lc := strings.ToLower(c)
		if lc == input {
			continue
		}
		d := LevenshteinDistance(input, lc)
		if strings.HasPrefix(lc, input) {
			d = 0
		}
		if d <= maxEdits(input, lc) {
			candidates = append(candidates, candidate{name: c, dist: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func maxEdits(a, b string) int {
	n := len([]rune(a))
	if m := len([]rune(b)); m > n {
		n = m
	}
	if n/3 > 2 {
		return n / 3
	}
	return 2
}

// LevenshteinDistance is the number of single-rune insertions, deletions or
// substitutions needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
