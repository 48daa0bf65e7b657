package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Engine runs the analytics modules. It holds no graph state, only the
// tunable options and the betweenness pair sampler, so a single engine is
// safe to share across concurrent requests.
type Engine struct {
	opts    Options
	sampler PairSampler
	logger  *logging.Logger
}

// NewEngine creates an engine with the given options and the default
// deterministic pair sampler.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:    opts,
		sampler: NewIndexMixSampler(),
		logger:  logging.GetLogger("analytics"),
	}
}

// NewEngineWithSampler creates an engine with a custom pair sampler.
// Tests use this to substitute alternate deterministic sequences.
func NewEngineWithSampler(opts Options, sampler PairSampler) *Engine {
	e := NewEngine(opts)
	e.sampler = sampler
	return e
}

// Options returns the engine's active options.
func (e *Engine) Options() Options { return e.opts }

// RunAll executes every module over the same graph snapshot. The modules
// are independent and share only the read-only graph, so they run in
// parallel; the only failure mode is context cancellation.
func (e *Engine) RunAll(ctx context.Context, g *hypergraph.Graph, changes []models.ChangeRecord, incidents []models.IncidentRecord) (*Report, error) {
	report := &Report{Stats: g.Stats}

	grp, ctx := errgroup.WithContext(ctx)
	run := func(name string, fn func()) {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			e.logger.Debug("module %s complete", name)
			return nil
		})
	}

	run("centrality", func() { report.Centrality = e.Centrality(g) })
	run("temporal", func() { report.Temporal = e.Temporal(changes) })
	run("cooccurrence", func() { report.Cooccurrence = e.WeightedCooccurrence(g) })
	run("toppairs", func() {
		report.TopPairs = hypergraph.Cooccurrence(g, hypergraph.TypeCI, e.opts.CooccurTopN)
	})
	run("anomaly", func() { report.Anomalies = e.Anomalies(g) })
	run("community", func() { report.Communities = e.Communities(g) })
	run("links", func() { report.Links = e.PredictLinks(g) })
	run("incidents", func() { report.Incidents = e.Incidents(incidents) })

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
