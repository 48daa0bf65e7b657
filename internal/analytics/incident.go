package analytics

import (
	"sort"
	"time"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Incidents mines the incident feed for fault propagation, per-CI
// hotspots and per-service fingerprints.
func (e *Engine) Incidents(incidents []models.IncidentRecord) *IncidentResult {
	return &IncidentResult{
		Propagation:  e.faultPropagation(incidents),
		Hotspots:     e.hotspots(incidents),
		Fingerprints: e.fingerprints(incidents),
	}
}

// incidentTimes collects parseable incident timestamps per CI UID in
// first-seen order.
func incidentTimes(incidents []models.IncidentRecord) *ciTimes {
	ct := &ciTimes{times: make(map[string][]time.Time)}
	for _, inc := range incidents {
		if inc.AffectedCI.ID == "" {
			continue
		}
		t, ok := models.ParseTime(inc.CreatedAt)
		if !ok {
			continue
		}
		uid := hypergraph.CIUID(inc.AffectedCI.ID)
		if _, exists := ct.times[uid]; !exists {
			ct.uids = append(ct.uids, uid)
		}
		ct.times[uid] = append(ct.times[uid], t)
	}
	for _, ts := range ct.times {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	}
	return ct
}

// faultPropagation counts directed incident lags within the propagation
// window for every ordered CI pair. Unlike cascades the two directions are
// reported separately.
func (e *Engine) faultPropagation(incidents []models.IncidentRecord) []PropagationPair {
	out := []PropagationPair{}
	ct := incidentTimes(incidents)
	window := time.Duration(e.opts.PropagationWindowHours) * time.Hour

	for _, a := range ct.uids {
		for _, b := range ct.uids {
			if a == b {
				continue
			}
			count := 0
			var lagSum time.Duration
			for _, ta := range ct.times[a] {
				for _, tb := range ct.times[b] {
					lag := tb.Sub(ta)
					if lag > 0 && lag <= window {
						count++
						lagSum += lag
					}
				}
			}
			if count == 0 {
				continue
			}
			out = append(out, PropagationPair{
				Source:      a,
				Target:      b,
				Count:       count,
				AvgLagHours: lagSum.Hours() / float64(count),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	if len(out) > e.opts.PropagationTopN {
		out = out[:e.opts.PropagationTopN]
	}
	return out
}

// hotspots ranks CIs by incident count with average priority and the mean
// time between failures. MTBF is zero when fewer than two incidents with
// parseable timestamps exist.
func (e *Engine) hotspots(incidents []models.IncidentRecord) []Hotspot {
	out := []Hotspot{}

	type agg struct {
		uid         string
		name        string
		count       int
		prioritySum int
	}
	var order []string
	byCI := make(map[string]*agg)
	for _, inc := range incidents {
		if inc.AffectedCI.ID == "" {
			continue
		}
		uid := hypergraph.CIUID(inc.AffectedCI.ID)
		a, ok := byCI[uid]
		if !ok {
			a = &agg{uid: uid, name: inc.AffectedCI.Name}
			byCI[uid] = a
			order = append(order, uid)
		}
		a.count++
		a.prioritySum += models.PriorityValue(inc.Priority)
	}

	ct := incidentTimes(incidents)

	for _, uid := range order {
		a := byCI[uid]
		h := Hotspot{
			UID:         a.uid,
			Name:        a.name,
			Count:       a.count,
			AvgPriority: float64(a.prioritySum) / float64(a.count),
		}
		if ts := ct.times[uid]; len(ts) >= 2 {
			var gapSum time.Duration
			for i := 1; i < len(ts); i++ {
				gapSum += ts[i].Sub(ts[i-1])
			}
			h.MTBFHours = gapSum.Hours() / float64(len(ts)-1)
		}
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UID < out[j].UID
	})
	return out
}

// Fingerprint concentration threshold: at most this many affected CIs
// counts as concentrated.
const concentratedMaxCIs = 3

// fingerprints summarizes incident behavior per business service.
func (e *Engine) fingerprints(incidents []models.IncidentRecord) []ServiceFingerprint {
	out := []ServiceFingerprint{}

	type agg struct {
		name          string
		cis           []string
		ciSeen        map[string]bool
		resolutionSum time.Duration
		resolved      int
	}
	var order []string
	byService := make(map[string]*agg)

	for _, inc := range incidents {
		if inc.BusinessService.Name == "" {
			continue
		}
		svc := inc.BusinessService.Name
		a, ok := byService[svc]
		if !ok {
			a = &agg{name: svc, ciSeen: make(map[string]bool)}
			byService[svc] = a
			order = append(order, svc)
		}
		if inc.AffectedCI.ID != "" && !a.ciSeen[inc.AffectedCI.ID] {
			a.ciSeen[inc.AffectedCI.ID] = true
			a.cis = append(a.cis, hypergraph.CIUID(inc.AffectedCI.ID))
		}
		if d, ok := inc.Resolution(); ok {
			a.resolutionSum += d
			a.resolved++
		}
	}

	for _, svc := range order {
		a := byService[svc]
		fp := ServiceFingerprint{
			Service:     a.name,
			AffectedCIs: a.cis,
			Pattern:     PatternDistributed,
		}
		if len(a.cis) <= concentratedMaxCIs {
			fp.Pattern = PatternConcentrated
		}
		if a.resolved > 0 {
			fp.AvgResolutionHours = a.resolutionSum.Hours() / float64(a.resolved)
		}
		out = append(out, fp)
	}
	return out
}
