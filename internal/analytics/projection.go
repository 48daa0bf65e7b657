package analytics

import "github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"

// projection is the ordinary weighted graph derived from the hypergraph by
// connecting any two CIs that co-occur in at least one hyperedge, weighted
// by co-occurrence count. CI order follows node insertion order so every
// consumer iterates deterministically.
type projection struct {
	uids    []string
	index   map[string]int
	weights []map[int]float64 // adjacency: weights[i][j] = shared edge count
}

// projectCIs builds the CI-projected weighted graph.
func projectCIs(g *hypergraph.Graph) *projection {
	p := &projection{index: make(map[string]int)}
	for _, n := range g.Nodes {
		if n.Type != hypergraph.TypeCI {
			continue
		}
		p.index[n.UID] = len(p.uids)
		p.uids = append(p.uids, n.UID)
	}
	p.weights = make([]map[int]float64, len(p.uids))
	for i := range p.weights {
		p.weights[i] = make(map[int]float64)
	}

	for _, e := range g.Edges {
		var members []int
		for _, uid := range e.Elements {
			if i, ok := p.index[uid]; ok {
				members = append(members, i)
			}
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				p.weights[a][b]++
				p.weights[b][a]++
			}
		}
	}
	return p
}

// size returns the number of projected CIs.
func (p *projection) size() int { return len(p.uids) }

// weight returns the co-occurrence weight between two indices.
func (p *projection) weight(i, j int) float64 { return p.weights[i][j] }

// neighbors returns the adjacent indices of i in ascending order.
func (p *projection) neighbors(i int) []int {
	out := make([]int, 0, len(p.weights[i]))
	for j := range p.weights[i] {
		out = append(out, j)
	}
	// Insertion order of map keys is unspecified; sort for determinism.
	for a := 1; a < len(out); a++ {
		for b := a; b > 0 && out[b] < out[b-1]; b-- {
			out[b], out[b-1] = out[b-1], out[b]
		}
	}
	return out
}

// strength returns the weighted degree of i.
func (p *projection) strength(i int) float64 {
	var s float64
	for _, w := range p.weights[i] {
		s += w
	}
	return s
}

// totalWeight returns the sum of all edge weights, each undirected edge
// counted once.
func (p *projection) totalWeight() float64 {
	var s float64
	for i := range p.weights {
		s += p.strength(i)
	}
	return s / 2
}
