package analytics

import (
	"math"
	"testing"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

func inc(number string, priority int, ci, service, created, resolved string) models.IncidentRecord {
	return models.IncidentRecord{
		Number:          number,
		Priority:        priority,
		AffectedCI:      models.Ref{ID: ci, Name: ci},
		BusinessService: models.Ref{ID: service, Name: service},
		CreatedAt:       created,
		ResolvedAt:      resolved,
	}
}

func TestFaultPropagation(t *testing.T) {
	// Y fails two hours after X, twice. The reverse lag is 46 hours,
	// outside the 24 hour window.
	incidents := []models.IncidentRecord{
		inc("INC1", 1, "X", "Payments", "2026-03-01T00:00:00Z", ""),
		inc("INC2", 2, "Y", "Payments", "2026-03-01T02:00:00Z", ""),
		inc("INC3", 1, "X", "Payments", "2026-03-03T00:00:00Z", ""),
		inc("INC4", 2, "Y", "Payments", "2026-03-03T02:00:00Z", ""),
	}

	out := NewEngine(DefaultOptions()).Incidents(incidents).Propagation
	if len(out) != 1 {
		t.Fatalf("propagation count = %d, want 1: %+v", len(out), out)
	}
	p := out[0]
	if p.Source != hypergraph.CIUID("X") || p.Target != hypergraph.CIUID("Y") {
		t.Errorf("direction = %s -> %s, want ci:X -> ci:Y", p.Source, p.Target)
	}
	if p.Count != 2 {
		t.Errorf("count = %d, want 2", p.Count)
	}
	if math.Abs(p.AvgLagHours-2) > 1e-9 {
		t.Errorf("avgLagHours = %v, want 2", p.AvgLagHours)
	}
}

func TestHotspots(t *testing.T) {
	incidents := []models.IncidentRecord{
		inc("INC1", 1, "X", "Payments", "2026-03-01T00:00:00Z", ""),
		inc("INC2", 3, "X", "Payments", "2026-03-03T00:00:00Z", ""),
		inc("INC3", 4, "Z", "Payments", "2026-03-02T00:00:00Z", ""),
	}

	out := NewEngine(DefaultOptions()).Incidents(incidents).Hotspots
	if len(out) != 2 {
		t.Fatalf("hotspot count = %d, want 2", len(out))
	}

	top := out[0]
	if top.UID != hypergraph.CIUID("X") || top.Count != 2 {
		t.Fatalf("top hotspot = %+v, want ci:X with count 2", top)
	}
	if top.AvgPriority != 2 {
		t.Errorf("avgPriority = %v, want 2", top.AvgPriority)
	}
	if math.Abs(top.MTBFHours-48) > 1e-9 {
		t.Errorf("mtbfHours = %v, want 48", top.MTBFHours)
	}
	if out[1].MTBFHours != 0 {
		t.Errorf("single-incident CI should have zero MTBF, got %v", out[1].MTBFHours)
	}
}

func TestHotspotPriorityClamping(t *testing.T) {
	incidents := []models.IncidentRecord{
		inc("INC1", 99, "X", "Payments", "2026-03-01T00:00:00Z", ""),
	}
	out := NewEngine(DefaultOptions()).Incidents(incidents).Hotspots
	if len(out) != 1 || out[0].AvgPriority != 3 {
		t.Fatalf("out-of-range priority should clamp to 3, got %+v", out)
	}
}

func TestServiceFingerprints(t *testing.T) {
	incidents := []models.IncidentRecord{
		inc("INC1", 2, "X", "Payments", "2026-03-01T00:00:00Z", "2026-03-01T04:00:00Z"),
		inc("INC2", 2, "Y", "Payments", "2026-03-02T00:00:00Z", "2026-03-02T02:00:00Z"),
		inc("INC3", 2, "C1", "Web", "2026-03-01T00:00:00Z", ""),
		inc("INC4", 2, "C2", "Web", "2026-03-01T01:00:00Z", ""),
		inc("INC5", 2, "C3", "Web", "2026-03-01T02:00:00Z", ""),
		inc("INC6", 2, "C4", "Web", "2026-03-01T03:00:00Z", ""),
	}

	out := NewEngine(DefaultOptions()).Incidents(incidents).Fingerprints
	if len(out) != 2 {
		t.Fatalf("fingerprint count = %d, want 2", len(out))
	}

	payments := out[0]
	if payments.Service != "Payments" {
		t.Fatalf("first fingerprint = %q, want Payments (insertion order)", payments.Service)
	}
	if payments.Pattern != PatternConcentrated {
		t.Errorf("pattern = %q, want %q", payments.Pattern, PatternConcentrated)
	}
	if len(payments.AffectedCIs) != 2 {
		t.Errorf("affected CI count = %d, want 2", len(payments.AffectedCIs))
	}
	if math.Abs(payments.AvgResolutionHours-3) > 1e-9 {
		t.Errorf("avgResolutionHours = %v, want 3", payments.AvgResolutionHours)
	}

	web := out[1]
	if web.Pattern != PatternDistributed {
		t.Errorf("pattern = %q, want %q", web.Pattern, PatternDistributed)
	}
	if web.AvgResolutionHours != 0 {
		t.Errorf("unresolved incidents should not contribute resolution time, got %v",
			web.AvgResolutionHours)
	}
}

func TestIncidentsEmpty(t *testing.T) {
	res := NewEngine(DefaultOptions()).Incidents(nil)
	if res.Propagation == nil || res.Hotspots == nil || res.Fingerprints == nil {
		t.Fatalf("empty input must yield empty non-nil slices, got %+v", res)
	}
}
