package analytics

import (
	"sort"
	"time"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// Temporal runs cascade detection and change-velocity classification over
// the raw change records.
func (e *Engine) Temporal(records []models.ChangeRecord) *TemporalResult {
	times := ciChangeTimes(records)
	return &TemporalResult{
		Cascades:   e.cascades(times),
		Velocities: e.velocities(times),
	}
}

// ciChangeTimes collects parseable change timestamps per CI UID, keeping
// first-seen CI order in the returned key list for determinism.
type ciTimes struct {
	uids  []string
	times map[string][]time.Time
}

func ciChangeTimes(records []models.ChangeRecord) *ciTimes {
	ct := &ciTimes{times: make(map[string][]time.Time)}
	seenChange := make(map[string]bool)
	for _, rec := range records {
		if rec.EntityID == "" || rec.ChangeNumber == "" {
			continue
		}
		t, ok := models.ParseTime(rec.CreatedAt)
		if !ok {
			continue
		}
		uid := hypergraph.CIUID(rec.EntityID)
		// One change touching a CI through several rows counts once.
		key := rec.ChangeNumber + "|" + uid
		if seenChange[key] {
			continue
		}
		seenChange[key] = true
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

// directedCount accumulates directed lag observations for one ordered pair.
type directedCount struct {
	count  int
	lagSum time.Duration
}

// cascades counts, for every ordered CI pair (A, B), change pairs where B
// changed within the window after A, then merges the two directions into
// one undirected report per canonical pair.
func (e *Engine) cascades(ct *ciTimes) []Cascade {
	window := time.Duration(e.opts.CascadeWindowDays) * day

	directed := make(map[[2]string]*directedCount)
	for _, a := range ct.uids {
		for _, b := range ct.uids {
			if a == b {
				continue
			}
			for _, ta := range ct.times[a] {
				for _, tb := range ct.times[b] {
					lag := tb.Sub(ta)
					if lag <= 0 || lag > window {
						continue
					}
					key := [2]string{a, b}
					dc, ok := directed[key]
					if !ok {
						dc = &directedCount{}
						directed[key] = dc
					}
					dc.count++
					dc.lagSum += lag
				}
			}
		}
	}

	seen := make(map[string]bool)
	var out []Cascade
	for _, a := range ct.uids {
		for _, b := range ct.uids {
			if a >= b {
				continue
			}
			key := hypergraph.PairKey(a, b)
			if seen[key] {
				continue
			}
			seen[key] = true

			fwd := directed[[2]string{a, b}]
			rev := directed[[2]string{b, a}]
			total := 0
			var lagSum time.Duration
			if fwd != nil {
				total += fwd.count
				lagSum += fwd.lagSum
			}
			if rev != nil {
				total += rev.count
				lagSum += rev.lagSum
			}
			if total == 0 {
				continue
			}

			direction := DirectionBoth
			if rev == nil {
				direction = DirectionAB
			} else if fwd == nil {
				direction = DirectionBA
			}

			out = append(out, Cascade{
				A:          a,
				B:          b,
				Count:      total,
				Direction:  direction,
				AvgLagDays: lagSum.Hours() / 24 / float64(total),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return hypergraph.PairKey(out[i].A, out[i].B) < hypergraph.PairKey(out[j].A, out[j].B)
	})
	if len(out) > e.opts.CascadeTopN {
		out = out[:e.opts.CascadeTopN]
	}
	if out == nil {
		out = []Cascade{}
	}
	return out
}

// velocities buckets each CI's changes into weekly bins spanning the
// observed global timestamp range. CIs below the minimum change floor are
// omitted; that floor is a deliberate noise filter.
func (e *Engine) velocities(ct *ciTimes) []Velocity {
	out := []Velocity{}

	var minT, maxT time.Time
	first := true
	for _, uid := range ct.uids {
		for _, t := range ct.times[uid] {
			if first || t.Before(minT) {
				minT = t
			}
			if first || t.After(maxT) {
				maxT = t
			}
			first = false
		}
	}
	if first {
		return out
	}

	weeks := int(maxT.Sub(minT)/week) + 1

	for _, uid := range ct.uids {
		ts := ct.times[uid]
		if len(ts) < e.opts.VelocityMinChanges {
			continue
		}

		bins := make([]int, weeks)
		for _, t := range ts {
			bins[int(t.Sub(minT)/week)]++
		}

		maxBin := 0
		for _, c := range bins {
			if c > maxBin {
				maxBin = c
			}
		}

		out = append(out, Velocity{
			UID:        uid,
			Total:      len(ts),
			AvgPerWeek: float64(len(ts)) / float64(weeks),
			MaxPerWeek: maxBin,
			Trend:      classifyTrend(bins),
		})
	}
	return out
}

// Trend thresholds: a relative change beyond 25% in either direction
// leaves the stable band.
const trendThreshold = 0.25

// classifyTrend compares the average weekly count of the first half of the
// range against the second half.
func classifyTrend(bins []int) string {
	if len(bins) < 2 {
		return TrendStable
	}
	half := len(bins) / 2
	firstAvg := avgInts(bins[:half])
	secondAvg := avgInts(bins[half:])

	if firstAvg == 0 {
		if secondAvg > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}

	rel := (secondAvg - firstAvg) / firstAvg
	switch {
	case rel > trendThreshold:
		return TrendIncreasing
	case rel < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func avgInts(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
