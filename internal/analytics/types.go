// Package analytics implements the graph-analytic algorithms that run over
// a hypergraph snapshot: centrality ranking, temporal cascade detection,
// weighted co-occurrence scoring, structural anomaly detection, community
// detection, change-impact and link prediction, and incident correlation.
//
// Every computation is pure and synchronous over a read-only
// *hypergraph.Graph; modules share no intermediate state and may run in
// parallel. All results are plain JSON-serializable structures recomputed
// on demand. Malformed input fields degrade to defaults instead of
// failing, and an empty graph yields empty-but-well-typed results from
// every module.
package analytics

import "github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"

// Options carries the tunable parameters of the engine. The anomaly
// thresholds have no documented derivation in the source system, so they
// are configuration rather than constants.
type Options struct {
	// CascadeWindowDays is the lag window for temporal cascade detection.
	CascadeWindowDays int
	// CascadeTopN bounds the cascade report.
	CascadeTopN int
	// CooccurTopN bounds the weighted co-occurrence report.
	CooccurTopN int
	// CooccurHalfLifeDays is the recency decay half-life.
	CooccurHalfLifeDays float64
	// UnexpectedPairRatio flags pairs with actual > ratio x expected.
	UnexpectedPairRatio float64
	// OverCoupledJaccard flags pairs above this membership similarity.
	OverCoupledJaccard float64
	// BetweennessSampleCap caps the number of sampled pairs.
	BetweennessSampleCap int
	// PowerIterations is the fixed eigenvector iteration count.
	PowerIterations int
	// LouvainMaxPasses caps community optimization passes.
	LouvainMaxPasses int
	// LinkPredictionTopN bounds the Adamic-Adar report.
	LinkPredictionTopN int
	// VelocityMinChanges is the noise floor for change velocity.
	VelocityMinChanges int
	// CriticalTopN bounds the critical node ranking.
	CriticalTopN int
	// PropagationWindowHours is the incident fault-propagation lag window.
	PropagationWindowHours int
	// PropagationTopN bounds the fault-propagation report.
	PropagationTopN int
}

// DefaultOptions returns the reference parameterization.
func DefaultOptions() Options {
	return Options{
		CascadeWindowDays:      7,
		CascadeTopN:            30,
		CooccurTopN:            30,
		CooccurHalfLifeDays:    30,
		UnexpectedPairRatio:    2.0,
		OverCoupledJaccard:     0.5,
		BetweennessSampleCap:   200,
		PowerIterations:        20,
		LouvainMaxPasses:       50,
		LinkPredictionTopN:     20,
		VelocityMinChanges:     2,
		CriticalTopN:           10,
		PropagationWindowHours: 24,
		PropagationTopN:        30,
	}
}

// CentralityResult holds the four centrality score maps (entity UID to
// [0,1]) and the ranked critical node list.
type CentralityResult struct {
	Degree      map[string]float64 `json:"degree"`
	Betweenness map[string]float64 `json:"betweenness"`
	Eigenvector map[string]float64 `json:"eigenvector"`
	Composite   map[string]float64 `json:"composite"`
	Critical    []CriticalNode     `json:"criticalNodes"`
}

// CriticalNode is one entry of the composite-centrality ranking with a
// human-readable dominant reason.
type CriticalNode struct {
	UID    string  `json:"uid"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Cascade direction labels relative to the reported (A, B) pair order.
const (
	DirectionAB   = "A→B"
	DirectionBA   = "B→A"
	DirectionBoth = "bidirectional"
)

// Cascade reports that changes on one CI tend to be followed by changes on
// another within the lag window.
type Cascade struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Count      int     `json:"count"`
	Direction  string  `json:"direction"`
	AvgLagDays float64 `json:"avgLagDays"`
}

// Trend labels for change velocity.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Velocity summarizes a CI's weekly change rate.
type Velocity struct {
	UID        string  `json:"uid"`
	Total      int     `json:"total"`
	AvgPerWeek float64 `json:"avgPerWeek"`
	MaxPerWeek int     `json:"maxPerWeek"`
	Trend      string  `json:"trend"`
}

// TemporalResult bundles cascades and per-CI velocities.
type TemporalResult struct {
	Cascades   []Cascade  `json:"cascades"`
	Velocities []Velocity `json:"velocities"`
}

// WeightedPair is one multi-factor scored CI pair. The five signal fields
// are normalized to [0,1] by their own observed maxima.
type WeightedPair struct {
	A         string  `json:"a"`
	B         string  `json:"b"`
	RawCount  int     `json:"rawCount"`
	Raw       float64 `json:"raw"`
	Risk      float64 `json:"risk"`
	Recency   float64 `json:"recency"`
	Diversity float64 `json:"diversity"`
	Jaccard   float64 `json:"jaccard"`
	Composite float64 `json:"composite"`
}

// Orphan is a CI referenced by at most one change.
type Orphan struct {
	UID    string `json:"uid"`
	Name   string `json:"name"`
	Degree int    `json:"degree"`
	Reason string `json:"reason"`
}

// UnexpectedPair co-occurs more often than its class marginals predict.
type UnexpectedPair struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Actual   int     `json:"actual"`
	Expected float64 `json:"expected"`
	Ratio    float64 `json:"ratio"`
}

// CoupledPair is an over- or under-coupling finding.
type CoupledPair struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	Jaccard float64 `json:"jaccard,omitempty"`
	Service string  `json:"service,omitempty"`
	Reason  string  `json:"reason"`
}

// AnomalyResult bundles the four anomaly classes.
type AnomalyResult struct {
	Orphans         []Orphan         `json:"orphans"`
	UnexpectedPairs []UnexpectedPair `json:"unexpectedPairs"`
	OverCoupled     []CoupledPair    `json:"overCoupled"`
	UnderCoupled    []CoupledPair    `json:"underCoupled"`
}

// CommunitySummary describes one detected community.
type CommunitySummary struct {
	ID              int      `json:"id"`
	Size            int      `json:"size"`
	DominantClass   string   `json:"dominantClass"`
	DominantService string   `json:"dominantService"`
	Members         []string `json:"members"`
}

// CommunityResult holds the membership map, the modularity score and the
// per-community summaries.
type CommunityResult struct {
	Assignments map[string]int     `json:"assignments"`
	Modularity  float64            `json:"modularity"`
	Communities []CommunitySummary `json:"communities"`
}

// ImpactEntry scores how likely a CI is to be affected when the target
// changes.
type ImpactEntry struct {
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Cooccur   float64 `json:"cooccur"`
	Cascade   float64 `json:"cascade"`
	Service   float64 `json:"service"`
	Proximity float64 `json:"proximity"`
	Reason    string  `json:"reason"`
}

// ImpactResult is the impact prediction for one target CI.
type ImpactResult struct {
	Target  string        `json:"target"`
	Entries []ImpactEntry `json:"entries"`
}

// PredictedLink is one Adamic-Adar scored pair that does not yet co-occur.
type PredictedLink struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// PropagationPair is a directed incident-lag correlation.
type PropagationPair struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Count       int     `json:"count"`
	AvgLagHours float64 `json:"avgLagHours"`
}

// Hotspot summarizes incident pressure on one CI.
type Hotspot struct {
	UID         string  `json:"uid"`
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	AvgPriority float64 `json:"avgPriority"`
	MTBFHours   float64 `json:"mtbfHours"`
}

// Fingerprint patterns.
const (
	PatternConcentrated = "concentrated"
	PatternDistributed  = "distributed"
)

// ServiceFingerprint summarizes incident behavior per business service.
type ServiceFingerprint struct {
	Service            string   `json:"service"`
	AffectedCIs        []string `json:"affectedCIs"`
	AvgResolutionHours float64  `json:"avgResolutionHours"`
	Pattern            string   `json:"pattern"`
}

// IncidentResult bundles the incident correlation outputs.
type IncidentResult struct {
	Propagation  []PropagationPair    `json:"propagation"`
	Hotspots     []Hotspot            `json:"hotspots"`
	Fingerprints []ServiceFingerprint `json:"fingerprints"`
}

// Report is the combined output of a full engine run.
type Report struct {
	Stats        hypergraph.Stats              `json:"stats"`
	Centrality   *CentralityResult             `json:"centrality"`
	Temporal     *TemporalResult               `json:"temporal"`
	Cooccurrence []WeightedPair                `json:"cooccurrence"`
	TopPairs     []hypergraph.CooccurrencePair `json:"topPairs"`
	Anomalies    *AnomalyResult                `json:"anomalies"`
	Communities  *CommunityResult              `json:"communities"`
	Links        []PredictedLink               `json:"linkPrediction"`
	Incidents    *IncidentResult               `json:"incidents"`
}
