package analytics

import (
	"math"
	"testing"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

func impactFixture() ([]models.ChangeRecord, *hypergraph.Graph) {
	svc := func(number, created, entity, service string) models.ChangeRecord {
		r := chg(number, created, entity)
		r.BusinessService = service
		return r
	}
	records := []models.ChangeRecord{
		svc("CHG1", "2026-01-01T00:00:00Z", "A", "Payments"),
		svc("CHG1", "2026-01-01T00:00:00Z", "B", "Payments"),
		svc("CHG2", "2026-01-03T00:00:00Z", "B", "Payments"),
		svc("CHG3", "2026-01-02T00:00:00Z", "B", "Payments"),
		svc("CHG3", "2026-01-02T00:00:00Z", "C", "Payments"),
		// D is isolated from A on every signal.
		svc("CHG4", "2026-06-01T00:00:00Z", "D", "Reporting"),
	}
	return records, hypergraph.Build(records)
}

func TestPredictImpact(t *testing.T) {
	records, g := impactFixture()
	res := NewEngine(DefaultOptions()).PredictImpact(g, records, hypergraph.CIUID("A"))

	if res.Target != hypergraph.CIUID("A") {
		t.Errorf("target = %s", res.Target)
	}
	if len(res.Entries) == 0 {
		t.Fatal("no impact entries")
	}
	if res.Entries[0].UID != hypergraph.CIUID("B") {
		t.Errorf("top entry = %s, want ci:B", res.Entries[0].UID)
	}
	if res.Entries[0].Score <= 0 {
		t.Errorf("top score = %v, want > 0", res.Entries[0].Score)
	}

	for _, entry := range res.Entries {
		if entry.UID == hypergraph.CIUID("D") {
			t.Error("all-zero candidate D must be excluded")
		}
		for name, v := range map[string]float64{
			"cooccur":   entry.Cooccur,
			"cascade":   entry.Cascade,
			"service":   entry.Service,
			"proximity": entry.Proximity,
			"score":     entry.Score,
		} {
			if v < 0 || v > 1 {
				t.Errorf("%s[%s] = %v outside [0,1]", name, entry.UID, v)
			}
		}
		if entry.Reason == "" {
			t.Errorf("entry %s has no reason", entry.UID)
		}
	}
}

func TestPredictImpactUnknownTarget(t *testing.T) {
	records, g := impactFixture()
	res := NewEngine(DefaultOptions()).PredictImpact(g, records, "ci:nope")
	if res.Target != "ci:nope" || len(res.Entries) != 0 {
		t.Fatalf("unknown target should yield empty entries, got %+v", res)
	}
}

func TestPredictLinksPath(t *testing.T) {
	// Path A - B - C: the endpoints share the degree-2 neighbor B.
	g := hypergraph.Build([]models.ChangeRecord{
		chg("CHG1", "2026-01-01T00:00:00Z", "A"),
		chg("CHG1", "2026-01-01T00:00:00Z", "B"),
		chg("CHG2", "2026-01-02T00:00:00Z", "B"),
		chg("CHG2", "2026-01-02T00:00:00Z", "C"),
	})

	out := NewEngine(DefaultOptions()).PredictLinks(g)
	if len(out) != 1 {
		t.Fatalf("link count = %d, want 1", len(out))
	}
	l := out[0]
	if l.A != hypergraph.CIUID("A") || l.B != hypergraph.CIUID("C") {
		t.Errorf("link = (%s, %s), want (ci:A, ci:C)", l.A, l.B)
	}
	if want := 1 / math.Log(2); math.Abs(l.Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", l.Score, want)
	}
}

func TestPredictLinksExcludesExistingPairs(t *testing.T) {
	_, g := impactFixture()

	existing := make(map[string]bool)
	for _, p := range hypergraph.Cooccurrence(g, hypergraph.TypeCI, -1) {
		existing[hypergraph.PairKey(p.A, p.B)] = true
	}

	for _, l := range NewEngine(DefaultOptions()).PredictLinks(g) {
		if existing[hypergraph.PairKey(l.A, l.B)] {
			t.Errorf("predicted link (%s, %s) already co-occurs", l.A, l.B)
		}
	}
}

func TestPredictLinksEmptyGraph(t *testing.T) {
	out := NewEngine(DefaultOptions()).PredictLinks(hypergraph.Build(nil))
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %v", out)
	}
}
