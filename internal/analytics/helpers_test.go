package analytics

import (
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// chg builds one change record row. Tests that need risk, class, group or
// service fields set them on the returned value.
func chg(number, createdAt, entityID string) models.ChangeRecord {
	return models.ChangeRecord{
		ChangeNumber: number,
		CreatedAt:    createdAt,
		EntityID:     entityID,
		EntityName:   entityID,
	}
}

// fixedSampler returns a canned pair list regardless of n and target.
type fixedSampler struct {
	pairs [][2]int
}

func (s fixedSampler) SamplePairs(n, target int) [][2]int { return s.pairs }
