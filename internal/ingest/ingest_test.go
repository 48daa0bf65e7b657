package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const changesArray = `[
  {"changeNumber": "CHG001", "createdAt": "2026-01-01T00:00:00Z", "entityId": "app-1", "risk": "High"},
  {"changeNumber": "CHG001", "createdAt": "2026-01-01T00:00:00Z", "entityId": "db-1", "risk": "High"}
]`

const changesWrapped = `{"changes": [
  {"changeNumber": "CHG002", "entityId": "app-2"}
]}`

const incidentsWrapped = `{"incidents": [
  {"number": "INC001", "priority": 2, "affectedCI": {"id": "app-1", "name": "app-1"},
   "createdAt": "2026-01-05T00:00:00Z", "resolvedAt": "2026-01-05T02:00:00Z"}
]}`

func TestParseChangesArray(t *testing.T) {
	records, err := ParseChanges(strings.NewReader(changesArray))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CHG001", records[0].ChangeNumber)
	assert.Equal(t, "app-1", records[0].EntityID)
	assert.Equal(t, "High", records[0].Risk)
}

func TestParseChangesWrapped(t *testing.T) {
	records, err := ParseChanges(strings.NewReader(changesWrapped))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CHG002", records[0].ChangeNumber)
}

func TestParseChangesInvalid(t *testing.T) {
	_, err := ParseChanges(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = ParseChanges(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseIncidents(t *testing.T) {
	records, err := ParseIncidents(strings.NewReader(incidentsWrapped))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "INC001", records[0].Number)
	assert.Equal(t, 2, records[0].Priority)
	assert.Equal(t, "app-1", records[0].AffectedCI.ID)
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChangesFileName), []byte(changesArray), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IncidentsFileName), []byte(incidentsWrapped), 0644))

	ds, err := LoadDataset(dir)
	require.NoError(t, err)
	assert.Len(t, ds.Changes, 2)
	assert.Len(t, ds.Incidents, 1)
}

func TestLoadDatasetIncidentsOptional(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChangesFileName), []byte(changesArray), 0644))

	ds, err := LoadDataset(dir)
	require.NoError(t, err)
	assert.Len(t, ds.Changes, 2)
	assert.Empty(t, ds.Incidents)
}

func TestLoadDatasetMissingChanges(t *testing.T) {
	_, err := LoadDataset(t.TempDir())
	assert.Error(t, err)
}

func TestLoadDatasetNotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(f, []byte("[]"), 0644))
	_, err := LoadDataset(f)
	assert.Error(t, err)
}
