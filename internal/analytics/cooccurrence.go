package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Composite co-occurrence weights.
const (
	weightRaw       = 0.25
	weightRisk      = 0.25
	weightRecency   = 0.2
	weightDiversity = 0.15
	weightJaccard   = 0.15
)

// pairAccumulator collects the raw signals for one CI pair before
// normalization.
type pairAccumulator struct {
	a, b    string
	raw     int
	risk    float64
	recency float64
	groups  map[string]bool
}

// WeightedCooccurrence scores every co-occurring CI pair on five
// independently normalized signals (raw count, risk weighting, recency
// decay, assignment-group diversity, hyperedge-membership Jaccard) and
// ranks by the weighted composite.
func (e *Engine) WeightedCooccurrence(g *hypergraph.Graph) []WeightedPair {
	// Latest observed timestamp anchors the recency decay.
	var latest time.Time
	edgeTime := make(map[string]time.Time)
	for _, edge := range g.Edges {
		if t, ok := models.ParseTime(edge.Attributes["createdAt"]); ok {
			edgeTime[edge.UID] = t
			if t.After(latest) {
				latest = t
			}
		}
	}

	order := make(map[string]int)
	acc := make(map[string]*pairAccumulator)

	halfLife := e.opts.CooccurHalfLifeDays
	if halfLife <= 0 {
		halfLife = DefaultOptions().CooccurHalfLifeDays
	}

	for _, edge := range g.Edges {
		var cis []string
		for _, uid := range edge.Elements {
			if n, ok := g.Node(uid); ok && n.Type == hypergraph.TypeCI {
				cis = append(cis, uid)
			}
		}

		riskW := models.RiskWeight(edge.Attributes["risk"])
		recencyW := 0.0
		if t, ok := edgeTime[edge.UID]; ok && !latest.IsZero() {
			ageDays := latest.Sub(t).Hours() / 24
			recencyW = math.Pow(0.5, ageDays/halfLife)
		}
		group := edge.Attributes["assignmentGroup"]

		for i := 0; i < len(cis); i++ {
			for j := i + 1; j < len(cis); j++ {
				key := hypergraph.PairKey(cis[i], cis[j])
				p, ok := acc[key]
				if !ok {
					a, b := hypergraph.SplitPair(cis[i], cis[j])
					p = &pairAccumulator{a: a, b: b, groups: make(map[string]bool)}
					acc[key] = p
					order[key] = len(order)
				}
				p.raw++
				p.risk += riskW
				p.recency += recencyW
				if group != "" {
					p.groups[group] = true
				}
			}
		}
	}

	if len(acc) == 0 {
		return []WeightedPair{}
	}

	keys := make([]string, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

	// Independent maxima for normalization.
	var maxRaw, maxRisk, maxRecency, maxDiversity, maxJaccard float64
	jaccards := make(map[string]float64, len(acc))
	for _, k := range keys {
		p := acc[k]
		j := membershipJaccard(g, p.a, p.b)
		jaccards[k] = j
		maxRaw = math.Max(maxRaw, float64(p.raw))
		maxRisk = math.Max(maxRisk, p.risk)
		maxRecency = math.Max(maxRecency, p.recency)
		maxDiversity = math.Max(maxDiversity, float64(len(p.groups)))
		maxJaccard = math.Max(maxJaccard, j)
	}

	out := make([]WeightedPair, 0, len(keys))
	for _, k := range keys {
		p := acc[k]
		wp := WeightedPair{
			A:         p.a,
			B:         p.b,
			RawCount:  p.raw,
			Raw:       safeDiv(float64(p.raw), maxRaw),
			Risk:      safeDiv(p.risk, maxRisk),
			Recency:   safeDiv(p.recency, maxRecency),
			Diversity: safeDiv(float64(len(p.groups)), maxDiversity),
			Jaccard:   safeDiv(jaccards[k], maxJaccard),
		}
		wp.Composite = weightRaw*wp.Raw + weightRisk*wp.Risk +
			weightRecency*wp.Recency + weightDiversity*wp.Diversity +
			weightJaccard*wp.Jaccard
		out = append(out, wp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Composite > out[j].Composite
	})
	if len(out) > e.opts.CooccurTopN {
		out = out[:e.opts.CooccurTopN]
	}
	return out
}

// membershipJaccard is the Jaccard similarity of two entities' full
// hyperedge membership sets.
func membershipJaccard(g *hypergraph.Graph, a, b string) float64 {
	setA, setB := g.Incidence[a], g.Incidence[b]
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	inter := 0
	for e := range setA {
		if _, ok := setB[e]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// safeDiv divides by max, treating a zero maximum as 1 so a degenerate
// signal stays all-zero instead of dividing by zero.
func safeDiv(v, max float64) float64 {
	if max == 0 {
		return 0
	}
	return v / max
}
