package commands

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/analytics"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/config"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/demo"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/ingest"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

var (
	analyzeDataDir         string
	analyzeDemo            bool
	analyzeAnalyticsConfig string
	analyzeTimeout         time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis offline and print the report as JSON",
	Long: `Load a dataset, build the hypergraph, run every analysis module and write
the combined report to stdout. Useful for batch jobs and CI pipelines
where a long-running server is not wanted.`,
	Run: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDataDir, "data-dir", "data", "Directory containing changes.json and incidents.json")
	analyzeCmd.Flags().BoolVar(&analyzeDemo, "demo", false, "Analyze the built-in demo dataset instead of reading --data-dir")
	analyzeCmd.Flags().StringVar(&analyzeAnalyticsConfig, "analytics-config", "", "Path to the YAML file with analytics thresholds")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "Analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.GetLogger("analyze")

	var changes []models.ChangeRecord
	var incidents []models.IncidentRecord

	if analyzeDemo {
		changes, incidents = demo.GetDemoDataset(time.Now().AddDate(0, 0, -60))
	} else {
		ds, err := ingest.LoadDataset(analyzeDataDir)
		if err != nil {
			HandleError(err, "Dataset load error")
		}
		changes, incidents = ds.Changes, ds.Incidents
	}

	opts := analytics.DefaultOptions()
	if analyzeAnalyticsConfig != "" {
		file, err := config.LoadAnalyticsFile(analyzeAnalyticsConfig)
		if err != nil {
			HandleError(err, "Analytics config error")
		}
		opts = file.Options()
	}

	g := hypergraph.Build(changes)
	logger.Info("analyzing %d change records, %d incidents (%d nodes, %d hyperedges)",
		len(changes), len(incidents), g.Stats.NodeCount, g.Stats.EdgeCount)

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	start := time.Now()
	report, err := analytics.NewEngine(opts).RunAll(ctx, g, changes, incidents)
	if err != nil {
		HandleError(err, "Analysis error")
	}
	logger.Info("analysis completed in %dms", time.Since(start).Milliseconds())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		HandleError(err, "Report encoding error")
	}
}
