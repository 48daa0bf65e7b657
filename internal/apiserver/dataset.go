package apiserver

import (
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// dataset is the immutable unit the server serves from. A reload builds a
// fresh dataset and swaps the pointer, so in-flight requests keep a
// consistent view.
type dataset struct {
	changes    []models.ChangeRecord
	incidents  []models.IncidentRecord
	graph      *hypergraph.Graph
	generation uint64
}

// newDataset builds the hypergraph for a record set.
func newDataset(changes []models.ChangeRecord, incidents []models.IncidentRecord, generation uint64) *dataset {
	return &dataset{
		changes:    changes,
		incidents:  incidents,
		graph:      hypergraph.Build(changes),
		generation: generation,
	}
}
