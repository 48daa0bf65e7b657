package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Impact signal weights.
const (
	weightImpactCooccur   = 0.35
	weightImpactCascade   = 0.25
	weightImpactService   = 0.2
	weightImpactProximity = 0.2
)

// Impact reason strings.
const (
	reasonCooccur   = "frequently changed together"
	reasonCascade   = "changes tend to cascade to it"
	reasonService   = "shares business services"
	reasonProximity = "close in the change neighborhood"
)

// PredictImpact scores every other CI by how likely it is to be affected
// when the target CI changes, combining co-occurrence frequency, cascade
// frequency, shared-service overlap and neighbor-set proximity. CIs with
// zero on all four signals are excluded.
func (e *Engine) PredictImpact(g *hypergraph.Graph, records []models.ChangeRecord, target string) *ImpactResult {
	res := &ImpactResult{Target: target, Entries: []ImpactEntry{}}
	if _, ok := g.Node(target); !ok {
		return res
	}

	// Raw signals per candidate.
	cooccur := make(map[string]float64)
	for _, pair := range hypergraph.Cooccurrence(g, hypergraph.TypeCI, -1) {
		if pair.A == target {
			cooccur[pair.B] = float64(pair.Count)
		} else if pair.B == target {
			cooccur[pair.A] = float64(pair.Count)
		}
	}

	cascade := e.cascadeFrom(records, target)

	targetServices := serviceSet(g, target)
	targetNeighbors := hypergraph.NeighborSet(g, target)

	type rawSignals struct {
		uid                                  string
		cooccur, cascade, service, proximity float64
	}
	var raws []rawSignals
	var maxCo, maxCa, maxSvc, maxProx float64

	for _, n := range g.NodesOfType(hypergraph.TypeCI) {
		if n.UID == target {
			continue
		}
		rs := rawSignals{
			uid:       n.UID,
			cooccur:   cooccur[n.UID],
			cascade:   cascade[n.UID],
			service:   overlapCount(targetServices, serviceSet(g, n.UID)),
			proximity: setJaccard(targetNeighbors, hypergraph.NeighborSet(g, n.UID)),
		}
		if rs.cooccur == 0 && rs.cascade == 0 && rs.service == 0 && rs.proximity == 0 {
			continue
		}
		maxCo = math.Max(maxCo, rs.cooccur)
		maxCa = math.Max(maxCa, rs.cascade)
		maxSvc = math.Max(maxSvc, rs.service)
		maxProx = math.Max(maxProx, rs.proximity)
		raws = append(raws, rs)
	}

	for _, rs := range raws {
		entry := ImpactEntry{
			UID:       rs.uid,
			Cooccur:   safeDiv(rs.cooccur, maxCo),
			Cascade:   safeDiv(rs.cascade, maxCa),
			Service:   safeDiv(rs.service, maxSvc),
			Proximity: safeDiv(rs.proximity, maxProx),
		}
		if n, ok := g.Node(rs.uid); ok {
			entry.Name = n.Name
		}
		entry.Score = weightImpactCooccur*entry.Cooccur +
			weightImpactCascade*entry.Cascade +
			weightImpactService*entry.Service +
			weightImpactProximity*entry.Proximity
		entry.Reason = dominantImpactReason(entry)
		res.Entries = append(res.Entries, entry)
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		if res.Entries[i].Score != res.Entries[j].Score {
			return res.Entries[i].Score > res.Entries[j].Score
		}
		return res.Entries[i].UID < res.Entries[j].UID
	})
	return res
}

// cascadeFrom counts, per candidate CI, how often a change on target was
// followed by a change on the candidate within the cascade window.
func (e *Engine) cascadeFrom(records []models.ChangeRecord, target string) map[string]float64 {
	out := make(map[string]float64)
	ct := ciChangeTimes(records)
	targetTimes := ct.times[target]
	if len(targetTimes) == 0 {
		return out
	}
	window := time.Duration(e.opts.CascadeWindowDays) * day

	for _, uid := range ct.uids {
		if uid == target {
			continue
		}
		for _, tt := range targetTimes {
			for _, tc := range ct.times[uid] {
				lag := tc.Sub(tt)
				if lag > 0 && lag <= window {
					out[uid]++
				}
			}
		}
	}
	return out
}

// dominantImpactReason picks the label of the strongest normalized signal.
func dominantImpactReason(e ImpactEntry) string {
	best, reason := e.Cooccur, reasonCooccur
	if e.Cascade > best {
		best, reason = e.Cascade, reasonCascade
	}
	if e.Service > best {
		best, reason = e.Service, reasonService
	}
	if e.Proximity > best {
		reason = reasonProximity
	}
	return reason
}

// serviceSet returns the business services adjacent to a CI.
func serviceSet(g *hypergraph.Graph, uid string) map[string]bool {
	out := make(map[string]bool)
	for _, nb := range hypergraph.Neighbors(g, uid) {
		if n, ok := g.Node(nb); ok && n.Type == hypergraph.TypeService {
			out[n.UID] = true
		}
	}
	return out
}

func overlapCount(a, b map[string]bool) float64 {
	count := 0
	for k := range a {
		if b[k] {
			count++
		}
	}
	return float64(count)
}

func setJaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// PredictLinks computes the Adamic-Adar index over all CI pairs that do
// not already co-occur: the sum of 1/log(degree) over common neighbors,
// skipping neighbors of degree <= 1. Only pairs with a positive score are
// returned.
func (e *Engine) PredictLinks(g *hypergraph.Graph) []PredictedLink {
	out := []PredictedLink{}
	p := projectCIs(g)
	n := p.size()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if p.weight(i, j) > 0 {
				continue
			}
			score := 0.0
			for _, k := range p.neighbors(i) {
				if p.weight(j, k) == 0 {
					continue
				}
				deg := len(p.weights[k])
				if deg <= 1 {
					continue
				}
				score += 1 / math.Log(float64(deg))
			}
			if score > 0 {
				a, b := hypergraph.SplitPair(p.uids[i], p.uids[j])
				out = append(out, PredictedLink{A: a, B: b, Score: score})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return hypergraph.PairKey(out[i].A, out[i].B) < hypergraph.PairKey(out[j].A, out[j].B)
	})
	if len(out) > e.opts.LinkPredictionTopN {
		out = out[:e.opts.LinkPredictionTopN]
	}
	return out
}
