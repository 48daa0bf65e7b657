package config

import (
	"fmt"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/analytics"
)

// AnalyticsFile represents the top-level structure of the analytics
// thresholds config file. Every field is optional; absent or zero values
// fall back to the built-in defaults.
//
// Example YAML structure:
//
//	schema_version: v1
//	analytics:
//	  cascade_window_days: 7
//	  cooccur_half_life_days: 30
//	  unexpected_pair_ratio: 2.0
//	  over_coupled_jaccard: 0.5
type AnalyticsFile struct {
	// SchemaVersion is the explicit config schema version (e.g., "v1")
	SchemaVersion string `yaml:"schema_version"`

	// Analytics holds the threshold overrides
	Analytics AnalyticsParams `yaml:"analytics"`
}

// AnalyticsParams mirrors the tunable analytics engine options. The anomaly
// thresholds in particular have no principled derivation, so operators may
// need to adjust them per dataset.
type AnalyticsParams struct {
	CascadeWindowDays      int     `yaml:"cascade_window_days"`
	CascadeTopN            int     `yaml:"cascade_top_n"`
	CooccurTopN            int     `yaml:"cooccur_top_n"`
	CooccurHalfLifeDays    float64 `yaml:"cooccur_half_life_days"`
	UnexpectedPairRatio    float64 `yaml:"unexpected_pair_ratio"`
	OverCoupledJaccard     float64 `yaml:"over_coupled_jaccard"`
	BetweennessSampleCap   int     `yaml:"betweenness_sample_cap"`
	PowerIterations        int     `yaml:"power_iterations"`
	LouvainMaxPasses       int     `yaml:"louvain_max_passes"`
	LinkPredictionTopN     int     `yaml:"link_prediction_top_n"`
	VelocityMinChanges     int     `yaml:"velocity_min_changes"`
	CriticalTopN           int     `yaml:"critical_top_n"`
	PropagationWindowHours int     `yaml:"propagation_window_hours"`
	PropagationTopN        int     `yaml:"propagation_top_n"`
}

// Validate checks that the AnalyticsFile is valid. Zero values are allowed
// (they mean "use the default"); negative values and out-of-range
// fractions are not.
func (f *AnalyticsFile) Validate() error {
	if f.SchemaVersion != "v1" {
		return NewConfigError(fmt.Sprintf(
			"unsupported schema_version: %q (expected \"v1\")",
			f.SchemaVersion,
		))
	}

	p := f.Analytics
	for name, v := range map[string]int{
		"cascade_window_days":      p.CascadeWindowDays,
		"cascade_top_n":            p.CascadeTopN,
		"cooccur_top_n":            p.CooccurTopN,
		"betweenness_sample_cap":   p.BetweennessSampleCap,
		"power_iterations":         p.PowerIterations,
		"louvain_max_passes":       p.LouvainMaxPasses,
		"link_prediction_top_n":    p.LinkPredictionTopN,
		"velocity_min_changes":     p.VelocityMinChanges,
		"critical_top_n":           p.CriticalTopN,
		"propagation_window_hours": p.PropagationWindowHours,
		"propagation_top_n":        p.PropagationTopN,
	} {
		if v < 0 {
			return NewConfigError(fmt.Sprintf("%s must not be negative", name))
		}
	}

	if p.CooccurHalfLifeDays < 0 {
		return NewConfigError("cooccur_half_life_days must not be negative")
	}
	if p.UnexpectedPairRatio < 0 {
		return NewConfigError("unexpected_pair_ratio must not be negative")
	}
	if p.OverCoupledJaccard < 0 || p.OverCoupledJaccard > 1 {
		return NewConfigError("over_coupled_jaccard must be between 0 and 1")
	}

	return nil
}

// Options merges the file's overrides over the built-in defaults. A zero
// field keeps the default.
func (f *AnalyticsFile) Options() analytics.Options {
	opts := analytics.DefaultOptions()
	p := f.Analytics

	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}

	setInt(&opts.CascadeWindowDays, p.CascadeWindowDays)
	setInt(&opts.CascadeTopN, p.CascadeTopN)
	setInt(&opts.CooccurTopN, p.CooccurTopN)
	setFloat(&opts.CooccurHalfLifeDays, p.CooccurHalfLifeDays)
	setFloat(&opts.UnexpectedPairRatio, p.UnexpectedPairRatio)
	setFloat(&opts.OverCoupledJaccard, p.OverCoupledJaccard)
	setInt(&opts.BetweennessSampleCap, p.BetweennessSampleCap)
	setInt(&opts.PowerIterations, p.PowerIterations)
	setInt(&opts.LouvainMaxPasses, p.LouvainMaxPasses)
	setInt(&opts.LinkPredictionTopN, p.LinkPredictionTopN)
	setInt(&opts.VelocityMinChanges, p.VelocityMinChanges)
	setInt(&opts.CriticalTopN, p.CriticalTopN)
	setInt(&opts.PropagationWindowHours, p.PropagationWindowHours)
	setInt(&opts.PropagationTopN, p.PropagationTopN)

	return opts
}

// DefaultAnalyticsFile returns an AnalyticsFile populated with the built-in
// defaults, suitable for writing a starter config.
func DefaultAnalyticsFile() *AnalyticsFile {
	d := analytics.DefaultOptions()
	return &AnalyticsFile{
		SchemaVersion: "v1",
		Analytics: AnalyticsParams{
			CascadeWindowDays:      d.CascadeWindowDays,
			CascadeTopN:            d.CascadeTopN,
			CooccurTopN:            d.CooccurTopN,
			CooccurHalfLifeDays:    d.CooccurHalfLifeDays,
			UnexpectedPairRatio:    d.UnexpectedPairRatio,
			OverCoupledJaccard:     d.OverCoupledJaccard,
			BetweennessSampleCap:   d.BetweennessSampleCap,
			PowerIterations:        d.PowerIterations,
			LouvainMaxPasses:       d.LouvainMaxPasses,
			LinkPredictionTopN:     d.LinkPredictionTopN,
			VelocityMinChanges:     d.VelocityMinChanges,
			CriticalTopN:           d.CriticalTopN,
			PropagationWindowHours: d.PropagationWindowHours,
			PropagationTopN:        d.PropagationTopN,
		},
	}
}
