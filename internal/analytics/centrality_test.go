package analytics

import (
	"math"
	"testing"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

func starGraph() *hypergraph.Graph {
	// A is in every change, the leaves in exactly one each.
	return hypergraph.Build([]models.ChangeRecord{
		chg("CHG1", "2026-01-01T00:00:00Z", "A"),
		chg("CHG1", "2026-01-01T00:00:00Z", "B"),
		chg("CHG2", "2026-01-02T00:00:00Z", "A"),
		chg("CHG2", "2026-01-02T00:00:00Z", "C"),
		chg("CHG3", "2026-01-03T00:00:00Z", "A"),
		chg("CHG3", "2026-01-03T00:00:00Z", "D"),
	})
}

func TestCentralityStar(t *testing.T) {
	e := NewEngine(DefaultOptions())
	res := e.Centrality(starGraph())

	hub := hypergraph.CIUID("A")
	if res.Degree[hub] != 1 {
		t.Errorf("degree[A] = %v, want 1", res.Degree[hub])
	}
	if got := res.Degree[hypergraph.CIUID("B")]; math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("degree[B] = %v, want 1/3", got)
	}
	if res.Eigenvector[hub] != 1 {
		t.Errorf("eigenvector[A] = %v, want 1", res.Eigenvector[hub])
	}
	if res.Composite[hub] != 1 {
		t.Errorf("composite[A] = %v, want 1", res.Composite[hub])
	}

	if len(res.Critical) == 0 {
		t.Fatal("no critical nodes")
	}
	if res.Critical[0].UID != hub {
		t.Errorf("top critical node = %s, want %s", res.Critical[0].UID, hub)
	}
	if res.Critical[0].Score != 1 {
		t.Errorf("top critical score = %v, want 1", res.Critical[0].Score)
	}

	// Leaves have zero betweenness and degree below their eigenvector
	// share, so the dominant component is neighbor influence.
	for _, cn := range res.Critical {
		if cn.UID == hypergraph.CIUID("B") && cn.Reason != reasonInfluence {
			t.Errorf("leaf reason = %q, want %q", cn.Reason, reasonInfluence)
		}
	}
}

func TestCentralityBounds(t *testing.T) {
	res := NewEngine(DefaultOptions()).Centrality(starGraph())
	for name, m := range map[string]map[string]float64{
		"degree":      res.Degree,
		"betweenness": res.Betweenness,
		"eigenvector": res.Eigenvector,
		"composite":   res.Composite,
	} {
		for uid, v := range m {
			if v < 0 || v > 1 {
				t.Errorf("%s[%s] = %v outside [0,1]", name, uid, v)
			}
		}
	}
}

func TestSampledBetweennessCreditsIntermediate(t *testing.T) {
	// Path A - B - C. Force sampling of the endpoint pair so the middle
	// node collects all the credit.
	g := hypergraph.Build([]models.ChangeRecord{
		chg("CHG1", "2026-01-01T00:00:00Z", "A"),
		chg("CHG1", "2026-01-01T00:00:00Z", "B"),
		chg("CHG2", "2026-01-02T00:00:00Z", "B"),
		chg("CHG2", "2026-01-02T00:00:00Z", "C"),
	})

	e := NewEngineWithSampler(DefaultOptions(), fixedSampler{pairs: [][2]int{{0, 2}}})
	res := e.Centrality(g)

	if got := res.Betweenness[hypergraph.CIUID("B")]; got != 1 {
		t.Errorf("betweenness[B] = %v, want 1", got)
	}
	if got := res.Betweenness[hypergraph.CIUID("A")]; got != 0 {
		t.Errorf("betweenness[A] = %v, want 0", got)
	}
	if got := res.Betweenness[hypergraph.CIUID("C")]; got != 0 {
		t.Errorf("betweenness[C] = %v, want 0", got)
	}
}

func TestCentralityEmptyGraph(t *testing.T) {
	res := NewEngine(DefaultOptions()).Centrality(hypergraph.Build(nil))
	if res == nil {
		t.Fatal("nil result")
	}
	if len(res.Degree) != 0 || len(res.Critical) != 0 {
		t.Errorf("empty graph should yield empty maps, got %+v", res)
	}
}

func TestCriticalTopN(t *testing.T) {
	opts := DefaultOptions()
	opts.CriticalTopN = 2
	res := NewEngine(opts).Centrality(starGraph())
	if len(res.Critical) != 2 {
		t.Errorf("critical list length = %d, want 2", len(res.Critical))
	}
}
