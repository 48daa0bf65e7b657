package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/demo"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/ingest"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

var (
	gendataOutputDir string
	gendataStartDays int
)

var gendataCmd = &cobra.Command{
	Use:   "gendata",
	Short: "Generate the demo dataset as JSON export files",
	Long: `Write the built-in demo dataset to a data directory in the export format
the server reads. The dataset exercises every analysis module: clustered
co-changes, a weekly cascade, accelerating change velocity, orphans and
an incident hotspot.`,
	Run: runGendata,
}

func init() {
	gendataCmd.Flags().StringVar(&gendataOutputDir, "output", "data", "Directory to write changes.json and incidents.json to")
	gendataCmd.Flags().IntVar(&gendataStartDays, "start-days-ago", 60, "Dataset start relative to now, in days")
}

func writeExport(path string, payload interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func runGendata(cmd *cobra.Command, args []string) {
	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.GetLogger("gendata")

	start := time.Now().AddDate(0, 0, -gendataStartDays)
	changes, incidents := demo.GetDemoDataset(start)

	if err := os.MkdirAll(gendataOutputDir, 0o755); err != nil {
		HandleError(err, "Failed to create output directory")
	}

	changesPath := filepath.Join(gendataOutputDir, ingest.ChangesFileName)
	err := writeExport(changesPath, map[string][]models.ChangeRecord{"changes": changes})
	HandleError(err, "Failed to write change export")

	incidentsPath := filepath.Join(gendataOutputDir, ingest.IncidentsFileName)
	err = writeExport(incidentsPath, map[string][]models.IncidentRecord{"incidents": incidents})
	HandleError(err, "Failed to write incident export")

	logger.Info("wrote %d change records to %s", len(changes), changesPath)
	logger.Info("wrote %d incident records to %s", len(incidents), incidentsPath)
}
