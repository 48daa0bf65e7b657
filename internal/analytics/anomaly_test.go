package analytics

import (
	"fmt"
	"math"
	"testing"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

func classed(number, entity, class string) models.ChangeRecord {
	r := chg(number, "2026-01-01T00:00:00Z", entity)
	r.EntityClass = class
	return r
}

func TestOrphans(t *testing.T) {
	g := hypergraph.Build([]models.ChangeRecord{
		chg("CHG1", "2026-01-01T00:00:00Z", "A"),
		chg("CHG2", "2026-01-02T00:00:00Z", "A"),
		chg("CHG2", "2026-01-02T00:00:00Z", "B"),
	})

	out := NewEngine(DefaultOptions()).Anomalies(g).Orphans
	if len(out) != 1 {
		t.Fatalf("orphan count = %d, want 1", len(out))
	}
	o := out[0]
	if o.UID != hypergraph.CIUID("B") || o.Degree != 1 || o.Reason != reasonSingleReference {
		t.Errorf("unexpected orphan %+v", o)
	}
}

func TestOrphanNeverReferenced(t *testing.T) {
	// A zero-degree CI cannot come out of Build, so assemble directly.
	g := hypergraph.NewGraph(
		[]hypergraph.Entity{
			{UID: hypergraph.CIUID("ghost"), Type: hypergraph.TypeCI, Name: "ghost"},
		},
		nil,
	)
	out := NewEngine(DefaultOptions()).Anomalies(g).Orphans
	if len(out) != 1 || out[0].Degree != 0 || out[0].Reason != reasonNeverReferenced {
		t.Fatalf("got %+v, want one zero-degree orphan", out)
	}
}

func TestUnexpectedPairs(t *testing.T) {
	// A and B co-occur in three of ten changes while their classes each
	// appear in only three, so the pair runs far above independence.
	records := []models.ChangeRecord{
		classed("CHG1", "A", "app"), classed("CHG1", "B", "db"),
		classed("CHG2", "A", "app"), classed("CHG2", "B", "db"),
		classed("CHG3", "A", "app"), classed("CHG3", "B", "db"),
	}
	for i := 0; i < 7; i++ {
		records = append(records, classed(
			fmt.Sprintf("CHG%d", 4+i),
			fmt.Sprintf("filler%d", i),
			fmt.Sprintf("class%d", i),
		))
	}

	out := NewEngine(DefaultOptions()).Anomalies(hypergraph.Build(records)).UnexpectedPairs
	if len(out) != 1 {
		t.Fatalf("unexpected pair count = %d, want 1", len(out))
	}
	p := out[0]
	if p.A != hypergraph.CIUID("A") || p.B != hypergraph.CIUID("B") {
		t.Errorf("pair = (%s, %s), want (ci:A, ci:B)", p.A, p.B)
	}
	if p.Actual != 3 {
		t.Errorf("actual = %d, want 3", p.Actual)
	}
	if math.Abs(p.Expected-0.9) > 1e-9 {
		t.Errorf("expected = %v, want 0.9", p.Expected)
	}
	if math.Abs(p.Ratio-3/0.9) > 1e-9 {
		t.Errorf("ratio = %v, want %v", p.Ratio, 3/0.9)
	}
}

func TestOverCoupled(t *testing.T) {
	// A and B share two of the three changes touching either: Jaccard 2/3.
	g := hypergraph.Build([]models.ChangeRecord{
		chg("CHG1", "2026-01-01T00:00:00Z", "A"),
		chg("CHG1", "2026-01-01T00:00:00Z", "B"),
		chg("CHG2", "2026-01-02T00:00:00Z", "A"),
		chg("CHG2", "2026-01-02T00:00:00Z", "B"),
		chg("CHG3", "2026-01-03T00:00:00Z", "A"),
		chg("CHG3", "2026-01-03T00:00:00Z", "C"),
	})

	out := NewEngine(DefaultOptions()).Anomalies(g).OverCoupled
	found := false
	for _, p := range out {
		if p.A == hypergraph.CIUID("A") && p.B == hypergraph.CIUID("B") {
			found = true
			if p.Jaccard != 2.0/3.0 {
				t.Errorf("jaccard = %v, want 2/3", p.Jaccard)
			}
			if p.Reason != reasonOverCoupled {
				t.Errorf("reason = %q", p.Reason)
			}
		}
		if p.A == hypergraph.CIUID("A") && p.B == hypergraph.CIUID("C") {
			t.Errorf("pair (A, C) with jaccard 1/3 should not be flagged")
		}
	}
	if !found {
		t.Fatal("pair (A, B) not flagged as over-coupled")
	}
}

func TestUnderCoupled(t *testing.T) {
	svc := func(number, entity string) models.ChangeRecord {
		r := chg(number, "2026-01-01T00:00:00Z", entity)
		r.BusinessService = "Payments"
		return r
	}
	// A and B both belong to the Payments service but never share a
	// change.
	g := hypergraph.Build([]models.ChangeRecord{
		svc("CHG1", "A"),
		svc("CHG2", "B"),
	})

	out := NewEngine(DefaultOptions()).Anomalies(g).UnderCoupled
	if len(out) != 1 {
		t.Fatalf("under-coupled count = %d, want 1", len(out))
	}
	p := out[0]
	if p.A != hypergraph.CIUID("A") || p.B != hypergraph.CIUID("B") {
		t.Errorf("pair = (%s, %s), want (ci:A, ci:B)", p.A, p.B)
	}
	if p.Service != "Payments" {
		t.Errorf("service = %q, want Payments", p.Service)
	}
	if p.Reason != reasonUnderCoupled {
		t.Errorf("reason = %q", p.Reason)
	}
}

func TestAnomaliesEmptyGraph(t *testing.T) {
	res := NewEngine(DefaultOptions()).Anomalies(hypergraph.Build(nil))
	if res.Orphans == nil || res.UnexpectedPairs == nil ||
		res.OverCoupled == nil || res.UnderCoupled == nil {
		t.Fatalf("empty graph must yield empty non-nil slices, got %+v", res)
	}
}
