package demo

import (
	"reflect"
	"testing"
	"time"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/analytics"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
)

var demoStart = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func TestGetDemoDatasetDeterministic(t *testing.T) {
	c1, i1 := GetDemoDataset(demoStart)
	c2, i2 := GetDemoDataset(demoStart)

	if !reflect.DeepEqual(c1, c2) {
		t.Fatal("change records differ across runs")
	}
	if !reflect.DeepEqual(i1, i2) {
		t.Fatal("incident records differ across runs")
	}
	if len(c1) == 0 || len(i1) == 0 {
		t.Fatalf("dataset too small: %d changes, %d incidents", len(c1), len(i1))
	}
}

func TestDemoDatasetUniqueChangeNumbers(t *testing.T) {
	changes, incidents := GetDemoDataset(demoStart)

	seen := make(map[string][]string) // change number -> entity ids
	for _, c := range changes {
		if c.ChangeNumber == "" || c.EntityID == "" || c.CreatedAt == "" {
			t.Fatalf("incomplete record %+v", c)
		}
		seen[c.ChangeNumber] = append(seen[c.ChangeNumber], c.EntityID)
	}
	if len(seen) < 20 {
		t.Errorf("only %d distinct changes", len(seen))
	}

	incSeen := make(map[string]bool)
	for _, inc := range incidents {
		if incSeen[inc.Number] {
			t.Errorf("duplicate incident number %s", inc.Number)
		}
		incSeen[inc.Number] = true
	}
}

// The scenarios must actually trigger the analytics signals they were
// designed for.
func TestDemoDatasetDrivesAnalytics(t *testing.T) {
	changes, incidents := GetDemoDataset(demoStart)
	g := hypergraph.Build(changes)
	e := analytics.NewEngine(analytics.DefaultOptions())

	temporal := e.Temporal(changes)
	router := hypergraph.CIUID(entityID("core-router"))
	firewall := hypergraph.CIUID(entityID("edge-firewall"))
	foundCascade := false
	for _, c := range temporal.Cascades {
		if (c.A == router && c.B == firewall) || (c.A == firewall && c.B == router) {
			foundCascade = true
		}
	}
	if !foundCascade {
		t.Error("router/firewall cascade not detected")
	}

	increasing := false
	web := hypergraph.CIUID(entityID("checkout-web"))
	for _, v := range temporal.Velocities {
		if v.UID == web && v.Trend == analytics.TrendIncreasing {
			increasing = true
		}
	}
	if !increasing {
		t.Error("checkout-web velocity trend is not increasing")
	}

	anomalies := e.Anomalies(g)
	orphanFound := false
	fax := hypergraph.CIUID(entityID("legacy-fax-gateway"))
	for _, o := range anomalies.Orphans {
		if o.UID == fax {
			orphanFound = true
		}
	}
	if !orphanFound {
		t.Error("legacy-fax-gateway not flagged as orphan")
	}

	underFound := false
	engine := hypergraph.CIUID(entityID("report-engine"))
	db := hypergraph.CIUID(entityID("report-db"))
	for _, p := range anomalies.UnderCoupled {
		if (p.A == engine && p.B == db) || (p.A == db && p.B == engine) {
			underFound = true
		}
	}
	if !underFound {
		t.Error("report pair not flagged as under-coupled")
	}

	incidentRes := e.Incidents(incidents)
	if len(incidentRes.Hotspots) == 0 {
		t.Fatal("no incident hotspots")
	}
	if got := incidentRes.Hotspots[0].UID; got != hypergraph.CIUID(entityID("payment-db")) {
		t.Errorf("top hotspot = %s, want payment-db", got)
	}
	propFound := false
	for _, p := range incidentRes.Propagation {
		if p.Source == hypergraph.CIUID(entityID("payment-db")) &&
			p.Target == hypergraph.CIUID(entityID("payment-api")) {
			propFound = true
		}
	}
	if !propFound {
		t.Error("payment-db -> payment-api propagation not detected")
	}
}
