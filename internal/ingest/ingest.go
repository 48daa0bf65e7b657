// Package ingest loads change and incident record exports from JSON files.
//
// Files may hold either a wrapper object ({"changes": [...]} or
// {"incidents": [...]}) or a bare record array; both shapes appear in
// ServiceNow export tooling. Records are returned as-is, field validation
// is deferred to the consumers, which treat every field as untrusted.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Conventional file names inside a data directory.
const (
	ChangesFileName   = "changes.json"
	IncidentsFileName = "incidents.json"
)

// Dataset is one loaded pair of change and incident feeds.
type Dataset struct {
	Changes   []models.ChangeRecord
	Incidents []models.IncidentRecord
}

// changesEnvelope is the wrapper-object file shape.
type changesEnvelope struct {
	Changes []models.ChangeRecord `json:"changes"`
}

type incidentsEnvelope struct {
	Incidents []models.IncidentRecord `json:"incidents"`
}

// ParseChanges parses a change record export from a reader.
func ParseChanges(r io.Reader) ([]models.ChangeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read change export: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty change export")
	}

	var env changesEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Changes != nil {
		return env.Changes, nil
	}

	var records []models.ChangeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse change export: %w", err)
	}
	return records, nil
}

// ParseIncidents parses an incident record export from a reader.
func ParseIncidents(r io.Reader) ([]models.IncidentRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read incident export: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty incident export")
	}

	var env incidentsEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Incidents != nil {
		return env.Incidents, nil
	}

	var records []models.IncidentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse incident export: %w", err)
	}
	return records, nil
}

// LoadChangesFile reads and parses a single change export file.
func LoadChangesFile(path string) ([]models.ChangeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return ParseChanges(file)
}

// LoadIncidentsFile reads and parses a single incident export file.
func LoadIncidentsFile(path string) ([]models.IncidentRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return ParseIncidents(file)
}

// LoadDataset loads the conventional changes.json and incidents.json from a
// data directory. The change export is required, the incident export is
// optional: correlation simply runs over an empty feed when it is absent.
func LoadDataset(dataDir string) (*Dataset, error) {
	logger := logging.GetLogger("ingest")

	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path is not a directory: %s", dataDir)
	}

	ds := &Dataset{}

	ds.Changes, err = LoadChangesFile(filepath.Join(dataDir, ChangesFileName))
	if err != nil {
		return nil, err
	}

	incidentsPath := filepath.Join(dataDir, IncidentsFileName)
	if _, err := os.Stat(incidentsPath); err == nil {
		ds.Incidents, err = LoadIncidentsFile(incidentsPath)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("no incident export at %s, incident correlation will be empty", incidentsPath)
	}

	logger.Info("loaded dataset: %d change records, %d incident records",
		len(ds.Changes), len(ds.Incidents))
	return ds, nil
}
