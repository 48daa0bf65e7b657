// Package demo generates a deterministic synthetic dataset that exercises
// every analytics module: a tightly coupled payment cluster, a change
// cascade, an accelerating CI, orphans, an under-coupled service pair and
// an incident hotspot. Given the same start time the output is identical
// across runs.
package demo

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// generator tracks the running change counter so change numbers stay
// unique and reproducible.
type generator struct {
	start     time.Time
	changeSeq int
	incSeq    int
	changes   []models.ChangeRecord
	incidents []models.IncidentRecord
}

// GetDemoDataset returns the full synthetic dataset anchored at startTime.
func GetDemoDataset(startTime time.Time) ([]models.ChangeRecord, []models.IncidentRecord) {
	g := &generator{start: startTime.UTC()}

	g.paymentClusterScenario()
	g.cascadeScenario()
	g.acceleratingCIScenario()
	g.orphanScenario()
	g.underCoupledScenario()
	g.unexpectedPairScenario()
	g.incidentHotspotScenario()

	return g.changes, g.incidents
}

// entityID derives a stable sys_id-like identifier from the entity name.
func entityID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func (g *generator) nextChange() string {
	g.changeSeq++
	return fmt.Sprintf("CHG%07d", g.changeSeq)
}

func (g *generator) nextIncident() string {
	g.incSeq++
	return fmt.Sprintf("INC%07d", g.incSeq)
}

// ci describes one configuration item of a scenario.
type ci struct {
	name  string
	class string
}

// addChange emits one change touching the given CIs.
func (g *generator) addChange(at time.Time, risk, changeType, group, service string, cis ...ci) {
	number := g.nextChange()
	for _, c := range cis {
		g.changes = append(g.changes, models.ChangeRecord{
			ChangeNumber:    number,
			CreatedAt:       at.Format(time.RFC3339),
			Risk:            risk,
			ChangeType:      changeType,
			AssignmentGroup: group,
			BusinessService: service,
			EntityID:        entityID(c.name),
			EntityName:      c.name,
			EntityType:      "cmdb_ci",
			EntityClass:     c.class,
		})
	}
}

func (g *generator) addIncident(at time.Time, priority int, ciName, service string, resolution time.Duration) {
	rec := models.IncidentRecord{
		Number:          g.nextIncident(),
		Priority:        priority,
		AffectedCI:      models.Ref{ID: entityID(ciName), Name: ciName},
		BusinessService: models.Ref{ID: entityID("svc-" + service), Name: service},
		CreatedAt:       at.Format(time.RFC3339),
	}
	if resolution > 0 {
		rec.ResolvedAt = at.Add(resolution).Format(time.RFC3339)
	}
	g.incidents = append(g.incidents, rec)
}

// paymentClusterScenario: three CIs that almost always change together
// under the Payments service. Drives community detection, weighted
// co-occurrence and the over-coupled anomaly.
func (g *generator) paymentClusterScenario() {
	api := ci{"payment-api", "application"}
	db := ci{"payment-db", "database"}
	cache := ci{"payment-cache", "application"}

	for week := 0; week < 8; week++ {
		at := g.start.AddDate(0, 0, week*7)
		g.addChange(at, models.RiskHigh, "normal", "payments-team", "Payments", api, db)
		if week%2 == 0 {
			g.addChange(at.Add(6*time.Hour), models.RiskMedium, "standard",
				"payments-team", "Payments", api, db, cache)
		}
	}
}

// cascadeScenario: the edge firewall is always patched exactly two days
// after the core router. Drives one-directional cascade detection.
func (g *generator) cascadeScenario() {
	router := ci{"core-router", "network"}
	firewall := ci{"edge-firewall", "network"}

	for week := 0; week < 8; week++ {
		at := g.start.AddDate(0, 0, week*7+1)
		g.addChange(at, models.RiskCritical, "normal", "network-team", "Connectivity", router)
		g.addChange(at.AddDate(0, 0, 2), models.RiskHigh, "normal", "network-team", "Connectivity", firewall)
	}
}

// acceleratingCIScenario: checkout-web's weekly change count grows from
// one to four across the full eight-week horizon the other scenarios
// span. Drives the increasing velocity trend.
func (g *generator) acceleratingCIScenario() {
	web := ci{"checkout-web", "application"}

	for week := 0; week < 8; week++ {
		perWeek := week/2 + 1
		for n := 0; n < perWeek; n++ {
			at := g.start.AddDate(0, 0, week*7+n)
			g.addChange(at, models.RiskLow, "standard", "web-team", "Checkout", web)
		}
	}
}

// orphanScenario: a legacy device referenced by exactly one change.
func (g *generator) orphanScenario() {
	g.addChange(g.start.AddDate(0, 0, 3), models.RiskLow, "standard",
		"facilities", "Office", ci{"legacy-fax-gateway", "peripheral"})
}

// underCoupledScenario: two CIs share the Reporting service but are never
// changed together.
func (g *generator) underCoupledScenario() {
	engine := ci{"report-engine", "application"}
	db := ci{"report-db", "database"}

	for month := 0; month < 3; month++ {
		at := g.start.AddDate(0, 0, month*10)
		g.addChange(at, models.RiskMedium, "normal", "bi-team", "Reporting", engine)
		g.addChange(at.AddDate(0, 0, 5), models.RiskMedium, "normal", "bi-team", "Reporting", db)
	}
}

// unexpectedPairScenario: a CRM application and an HR database co-occur in
// every one of their changes while their classes are otherwise rare, so
// the pair runs far above its class-independence expectation.
func (g *generator) unexpectedPairScenario() {
	crm := ci{"crm-app", "crm_application"}
	hr := ci{"hr-db", "hr_database"}

	for n := 0; n < 4; n++ {
		at := g.start.AddDate(0, 0, n*9+1)
		g.addChange(at, models.RiskMedium, "normal", "integrations", "Employee Services", crm, hr)
	}
}

// incidentHotspotScenario: payment-db fails repeatedly, and payment-api
// follows two hours later each time. Drives hotspots, fault propagation
// and the concentrated Payments fingerprint.
func (g *generator) incidentHotspotScenario() {
	for n := 0; n < 5; n++ {
		at := g.start.AddDate(0, 0, n*6).Add(9 * time.Hour)
		g.addIncident(at, 1, "payment-db", "Payments", 4*time.Hour)
		g.addIncident(at.Add(2*time.Hour), 2, "payment-api", "Payments", 3*time.Hour)
	}

	// One standalone database failure keeps payment-db strictly ahead of
	// payment-api in the hotspot ranking.
	g.addIncident(g.start.AddDate(0, 0, 40).Add(9*time.Hour), 2, "payment-db", "Payments", 2*time.Hour)

	// Scattered low-priority noise across the checkout stack keeps the
	// Web fingerprint distributed.
	for n := 0; n < 4; n++ {
		at := g.start.AddDate(0, 0, n*5+2).Add(14 * time.Hour)
		name := fmt.Sprintf("web-node-%d", n+1)
		g.addIncident(at, 4, name, "Web", 0)
	}
}
