package analytics

import (
	"math"
	"sort"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
)

// Composite centrality weights.
const (
	weightDegree      = 0.3
	weightBetweenness = 0.3
	weightEigenvector = 0.4
)

// Centrality computes degree, sampled betweenness, eigenvector and
// composite centrality for every node, each normalized to [0,1] by the
// observed maximum, plus the ranked critical node list.
func (e *Engine) Centrality(g *hypergraph.Graph) *CentralityResult {
	res := &CentralityResult{
		Degree:      make(map[string]float64),
		Betweenness: make(map[string]float64),
		Eigenvector: make(map[string]float64),
		Composite:   make(map[string]float64),
		Critical:    []CriticalNode{},
	}

	p := projectCIs(g)

	degree := degreeCentrality(g)
	betweenness := e.sampledBetweenness(p)
	eigen := e.eigenvectorCentrality(p)

	for _, n := range g.Nodes {
		res.Degree[n.UID] = degree[n.UID]
		res.Betweenness[n.UID] = betweenness[n.UID]
		res.Eigenvector[n.UID] = eigen[n.UID]
		res.Composite[n.UID] = weightDegree*degree[n.UID] +
			weightBetweenness*betweenness[n.UID] +
			weightEigenvector*eigen[n.UID]
	}
	normalizeMap(res.Composite)

	res.Critical = e.criticalNodes(g, res)
	return res
}

// degreeCentrality is incidence degree over the observed maximum.
func degreeCentrality(g *hypergraph.Graph) map[string]float64 {
	out := make(map[string]float64, len(g.Nodes))
	maxDeg := 0
	for _, n := range g.Nodes {
		d := g.Incidence.Degree(n.UID)
		if d > maxDeg {
			maxDeg = d
		}
	}
	for _, n := range g.Nodes {
		if maxDeg == 0 {
			out[n.UID] = 0
			continue
		}
		out[n.UID] = float64(g.Incidence.Degree(n.UID)) / float64(maxDeg)
	}
	return out
}

// sampledBetweenness approximates betweenness on the CI co-membership
// graph. Exact all-pairs betweenness on the clique-expanded graph is too
// expensive, so it samples deterministic index-mixed pairs, runs BFS for
// one shortest path per pair and credits the strictly-intermediate nodes.
func (e *Engine) sampledBetweenness(p *projection) map[string]float64 {
	out := make(map[string]float64, p.size())
	for _, uid := range p.uids {
		out[uid] = 0
	}
	n := p.size()
	if n < 2 {
		return out
	}

	target := maxSamplePairs(n, e.opts.BetweennessSampleCap)
	credit := make([]float64, n)

	for _, pair := range e.sampler.SamplePairs(n, target) {
		path := bfsShortestPath(p, pair[0], pair[1])
		if len(path) <= 2 {
			// Unreachable, adjacent or identical: no intermediates.
			continue
		}
		for _, v := range path[1 : len(path)-1] {
			credit[v]++
		}
	}

	maxCredit := 0.0
	for _, c := range credit {
		if c > maxCredit {
			maxCredit = c
		}
	}
	if maxCredit == 0 {
		return out
	}
	for i, uid := range p.uids {
		out[uid] = credit[i] / maxCredit
	}
	return out
}

// bfsShortestPath returns one shortest path from s to t as index slices,
// or nil when t is unreachable.
func bfsShortestPath(p *projection, s, t int) []int {
	if s == t {
		return []int{s}
	}
	parent := make([]int, p.size())
	for i := range parent {
		parent[i] = -1
	}
	parent[s] = s

	queue := []int{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range p.neighbors(v) {
			if parent[w] != -1 {
				continue
			}
			parent[w] = v
			if w == t {
				var path []int
				for x := t; x != s; x = parent[x] {
					path = append(path, x)
				}
				path = append(path, s)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, w)
		}
	}
	return nil
}

// eigenvectorCentrality runs fixed-round power iteration on the
// CI-projected weighted adjacency matrix. Non-CI nodes score zero.
func (e *Engine) eigenvectorCentrality(p *projection) map[string]float64 {
	out := make(map[string]float64, p.size())
	n := p.size()
	if n == 0 {
		return out
	}

	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(n)
	}

	next := make([]float64, n)
	for iter := 0; iter < e.opts.PowerIterations; iter++ {
		for i := 0; i < n; i++ {
			next[i] = 0
			for j, w := range p.weights[i] {
				next[i] += w * v[j]
			}
		}
		norm := 0.0
		for _, x := range next {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			break
		}
		for i := range next {
			v[i] = next[i] / norm
		}
	}

	maxAbs := 0.0
	for i := range v {
		if a := math.Abs(v[i]); a > maxAbs {
			maxAbs = a
		}
	}
	for i, uid := range p.uids {
		if maxAbs == 0 {
			out[uid] = 0
			continue
		}
		out[uid] = math.Abs(v[i]) / maxAbs
	}
	return out
}

// Dominant-reason labels for critical nodes.
const (
	reasonBridge    = "bridge"
	reasonHub       = "hub"
	reasonInfluence = "influence via neighbors"
	reasonGeneral   = "general importance"
)

// criticalNodes ranks by composite score and labels each entry with the
// dominant pre-composite component.
func (e *Engine) criticalNodes(g *hypergraph.Graph, res *CentralityResult) []CriticalNode {
	ranked := make([]CriticalNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		d, b, ev := res.Degree[n.UID], res.Betweenness[n.UID], res.Eigenvector[n.UID]
		reason := reasonGeneral
		switch {
		case d == 0 && b == 0 && ev == 0:
			reason = reasonGeneral
		case b >= d && b >= ev:
			reason = reasonBridge
		case d >= b && d >= ev:
			reason = reasonHub
		default:
			reason = reasonInfluence
		}
		ranked = append(ranked, CriticalNode{
			UID:    n.UID,
			Name:   n.Name,
			Score:  res.Composite[n.UID],
			Reason: reason,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > e.opts.CriticalTopN {
		ranked = ranked[:e.opts.CriticalTopN]
	}
	return ranked
}

// normalizeMap scales values so the maximum is 1, leaving an all-zero map
// untouched.
func normalizeMap(m map[string]float64) {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return
	}
	for k, v := range m {
		m[k] = v / max
	}
}
