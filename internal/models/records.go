// Package models defines the flat input records consumed by the hypergraph
// builder and the analytics engine, together with lenient field parsing.
//
// Records arrive from an external adapter (ServiceNow table API or the
// synthetic generator) and are treated as untrusted: missing or malformed
// optional fields degrade to sentinel defaults instead of failing the run.
package models

// ChangeRecord is one change-request/configuration-item pairing. A change
// touching five CIs produces five records sharing the same ChangeNumber.
type ChangeRecord struct {
	ChangeNumber    string `json:"changeNumber"`
	CreatedAt       string `json:"createdAt"`
	Risk            string `json:"risk"`
	ChangeType      string `json:"changeType"`
	AssignmentGroup string `json:"assignmentGroup"`
	BusinessService string `json:"businessService"`
	EntityID        string `json:"entityId"`
	EntityName      string `json:"entityName,omitempty"`
	EntityType      string `json:"entityType"`
	EntityClass     string `json:"entityClass"`
}

// Ref is a minimal id/name reference used by incident records.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IncidentRecord is one incident from the separate incident feed, consumed
// only by the incident correlation module.
type IncidentRecord struct {
	Number          string `json:"number"`
	Priority        int    `json:"priority"`
	AffectedCI      Ref    `json:"affectedCI"`
	BusinessService Ref    `json:"businessService"`
	CreatedAt       string `json:"createdAt"`
	ResolvedAt      string `json:"resolvedAt"`
	AssignmentGroup string `json:"assignmentGroup"`
}

// Risk levels recognised in change records. Anything else weighs as Low.
const (
	RiskCritical = "Critical"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"
)

// ClassUnknown is the fallback for records without an entity class.
const ClassUnknown = "unknown"

// RiskWeight maps a risk level to its co-occurrence multiplier.
// Unknown or empty risk weighs the same as Low.
func RiskWeight(risk string) float64 {
	switch risk {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	default:
		return 1
	}
}

// Class returns the record's entity class, falling back to ClassUnknown.
func (r ChangeRecord) Class() string {
	if r.EntityClass == "" {
		return ClassUnknown
	}
	return r.EntityClass
}

// PriorityValue clamps an incident priority into the 1 (critical) to
// 4 (low) range. Out-of-range values default to 3.
func PriorityValue(p int) int {
	if p < 1 || p > 4 {
		return 3
	}
	return p
}
