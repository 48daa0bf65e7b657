package hypergraph

import (
	"fmt"
	"sort"
)

// DefaultCooccurrenceTopN bounds the ranked pair list returned by
// Cooccurrence when the caller passes topN <= 0.
const DefaultCooccurrenceTopN = 20

// CooccurrencePair is one ranked pair of entities that co-occur in at
// least one hyperedge.
type CooccurrencePair struct {
	A           string   `json:"a"`
	B           string   `json:"b"`
	Count       int      `json:"count"`
	SharedEdges []string `json:"sharedEdges"`
}

// PairKey returns the canonical unordered key for a pair of UIDs.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}

// SplitPair is the inverse of PairKey ordering: it returns the pair in
// canonical (min, max) order.
func SplitPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Cooccurrence emits, for every hyperedge, all unordered member pairs
// (optionally restricted to entities of one type), accumulates counts per
// canonical pair and returns the topN pairs sorted by count descending.
// Ties keep first-seen insertion order. topN zero means the default limit;
// a negative topN disables truncation.
func Cooccurrence(g *Graph, typeFilter EntityType, topN int) []CooccurrencePair {
	if topN == 0 {
		topN = DefaultCooccurrenceTopN
	}

	order := make(map[string]int)
	pairs := make(map[string]*CooccurrencePair)

	for _, e := range g.Edges {
		var members []string
		for _, uid := range e.Elements {
			if typeFilter != "" {
				n, ok := g.Node(uid)
				if !ok || n.Type != typeFilter {
					continue
				}
			}
			members = append(members, uid)
		}

		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				key := PairKey(members[i], members[j])
				p, ok := pairs[key]
				if !ok {
					a, b := SplitPair(members[i], members[j])
					p = &CooccurrencePair{A: a, B: b}
					pairs[key] = p
					order[key] = len(order)
				}
				p.Count++
				p.SharedEdges = append(p.SharedEdges, e.UID)
			}
		}
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := pairs[keys[i]], pairs[keys[j]]
		if pi.Count != pj.Count {
			return pi.Count > pj.Count
		}
		return order[keys[i]] < order[keys[j]]
	})

	if topN > 0 && len(keys) > topN {
		keys = keys[:topN]
	}
	out := make([]CooccurrencePair, 0, len(keys))
	for _, k := range keys {
		out = append(out, *pairs[k])
	}
	return out
}

// Neighbors returns the union of all other members across every hyperedge
// containing uid, in deterministic first-seen order. Unknown or isolated
// UIDs yield an empty (non-nil) slice.
func Neighbors(g *Graph, uid string) []string {
	out := []string{}
	set := g.Incidence[uid]
	if len(set) == 0 {
		return out
	}
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		if _, ok := set[e.UID]; !ok {
			continue
		}
		for _, member := range e.Elements {
			if member == uid || seen[member] {
				continue
			}
			seen[member] = true
			out = append(out, member)
		}
	}
	return out
}

// NeighborSet returns the neighbor union as a set for membership tests.
func NeighborSet(g *Graph, uid string) map[string]bool {
	set := make(map[string]bool)
	for _, n := range Neighbors(g, uid) {
		set[n] = true
	}
	return set
}
