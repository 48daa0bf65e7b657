package analytics

import (
	"sort"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Orphan reason strings.
const (
	reasonNeverReferenced = "never referenced by any change"
	reasonSingleReference = "referenced by exactly one change"
	reasonOverCoupled     = "membership overlap above threshold"
	reasonUnderCoupled    = "shares a business service but never changes together"
)

// Anomalies detects orphaned CIs, statistically unexpected pairs and over-
// and under-coupled pairs. Thresholds come from the engine options.
func (e *Engine) Anomalies(g *hypergraph.Graph) *AnomalyResult {
	return &AnomalyResult{
		Orphans:         e.orphans(g),
		UnexpectedPairs: e.unexpectedPairs(g),
		OverCoupled:     e.overCoupled(g),
		UnderCoupled:    e.underCoupled(g),
	}
}

// orphans flags CI entities with incidence degree zero or one.
func (e *Engine) orphans(g *hypergraph.Graph) []Orphan {
	out := []Orphan{}
	for _, n := range g.Nodes {
		if n.Type != hypergraph.TypeCI {
			continue
		}
		deg := g.Incidence.Degree(n.UID)
		if deg > 1 {
			continue
		}
		reason := reasonSingleReference
		if deg == 0 {
			reason = reasonNeverReferenced
		}
		out = append(out, Orphan{UID: n.UID, Name: n.Name, Degree: deg, Reason: reason})
	}
	return out
}

// unexpectedPairs compares actual pair co-occurrence against the count
// expected under class independence: freq(classA) x freq(classB) x edges.
func (e *Engine) unexpectedPairs(g *hypergraph.Graph) []UnexpectedPair {
	out := []UnexpectedPair{}
	totalEdges := len(g.Edges)
	if totalEdges == 0 {
		return out
	}

	// Marginal class frequency: fraction of hyperedges containing at
	// least one CI of the class.
	classEdges := make(map[string]int)
	for _, edge := range g.Edges {
		seen := make(map[string]bool)
		for _, uid := range edge.Elements {
			n, ok := g.Node(uid)
			if !ok || n.Type != hypergraph.TypeCI {
				continue
			}
			cls := n.Attributes["class"]
			if cls == "" {
				cls = models.ClassUnknown
			}
			if !seen[cls] {
				seen[cls] = true
				classEdges[cls]++
			}
		}
	}

	classOf := func(uid string) string {
		n, _ := g.Node(uid)
		if n.Attributes["class"] == "" {
			return models.ClassUnknown
		}
		return n.Attributes["class"]
	}

	for _, pair := range hypergraph.Cooccurrence(g, hypergraph.TypeCI, -1) {
		freqA := float64(classEdges[classOf(pair.A)]) / float64(totalEdges)
		freqB := float64(classEdges[classOf(pair.B)]) / float64(totalEdges)
		expected := freqA * freqB * float64(totalEdges)
		if expected == 0 {
			continue
		}
		if float64(pair.Count) > e.opts.UnexpectedPairRatio*expected {
			out = append(out, UnexpectedPair{
				A:        pair.A,
				B:        pair.B,
				Actual:   pair.Count,
				Expected: expected,
				Ratio:    float64(pair.Count) / expected,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Ratio > out[j].Ratio })
	return out
}

// overCoupled flags CI pairs whose hyperedge-membership Jaccard similarity
// exceeds the configured threshold.
func (e *Engine) overCoupled(g *hypergraph.Graph) []CoupledPair {
	out := []CoupledPair{}
	for _, pair := range hypergraph.Cooccurrence(g, hypergraph.TypeCI, -1) {
		j := membershipJaccard(g, pair.A, pair.B)
		if j > e.opts.OverCoupledJaccard {
			out = append(out, CoupledPair{
				A:       pair.A,
				B:       pair.B,
				Jaccard: j,
				Reason:  reasonOverCoupled,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Jaccard > out[j].Jaccard })
	return out
}

// underCoupled flags CI pairs that share a business-service membership but
// never co-occur in any change. This is a missed-coupling signal, not an
// error.
func (e *Engine) underCoupled(g *hypergraph.Graph) []CoupledPair {
	out := []CoupledPair{}

	coCount := make(map[string]int)
	for _, pair := range hypergraph.Cooccurrence(g, hypergraph.TypeCI, -1) {
		coCount[hypergraph.PairKey(pair.A, pair.B)] = pair.Count
	}

	flagged := make(map[string]bool)
	for _, svc := range g.NodesOfType(hypergraph.TypeService) {
		var cis []string
		for _, uid := range hypergraph.Neighbors(g, svc.UID) {
			if n, ok := g.Node(uid); ok && n.Type == hypergraph.TypeCI {
				cis = append(cis, uid)
			}
		}
		for i := 0; i < len(cis); i++ {
			for j := i + 1; j < len(cis); j++ {
				key := hypergraph.PairKey(cis[i], cis[j])
				if coCount[key] > 0 || flagged[key] {
					continue
				}
				flagged[key] = true
				a, b := hypergraph.SplitPair(cis[i], cis[j])
				out = append(out, CoupledPair{
					A:       a,
					B:       b,
					Service: svc.Name,
					Reason:  reasonUnderCoupled,
				})
			}
		}
	}
	return out
}
