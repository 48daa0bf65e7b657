package hypergraph

import (
	"testing"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(change, entity, group, service string) models.ChangeRecord {
	return models.ChangeRecord{
		ChangeNumber:    change,
		EntityID:        entity,
		EntityType:      "ci",
		EntityClass:     "cmdb_ci_server",
		AssignmentGroup: group,
		BusinessService: service,
		CreatedAt:       "2025-03-01T10:00:00Z",
		Risk:            "Medium",
	}
}

func TestBuildGroupsRecordsIntoHyperedges(t *testing.T) {
	records := []models.ChangeRecord{
		rec("CHG001", "web-01", "Platform", "Storefront"),
		rec("CHG001", "db-01", "Platform", "Storefront"),
		rec("CHG002", "web-01", "Platform", "Storefront"),
	}

	g := Build(records)

	require.Len(t, g.Edges, 2)
	assert.Equal(t, "change:CHG001", g.Edges[0].UID)
	assert.Equal(t, []string{"ci:web-01", "group:Platform", "service:Storefront", "ci:db-01"},
		g.Edges[0].Elements)

	// web-01, Platform, Storefront, db-01 - deduplicated across edges
	assert.Len(t, g.Nodes, 4)

	web, ok := g.Node("ci:web-01")
	require.True(t, ok)
	assert.Equal(t, TypeCI, web.Type)
	assert.Equal(t, "cmdb_ci_server", web.Attributes["class"])

	assert.Equal(t, 2, g.Incidence.Degree("ci:web-01"))
	assert.Equal(t, 1, g.Incidence.Degree("ci:db-01"))
}

func TestBuildDeduplicatesEdgeElements(t *testing.T) {
	records := []models.ChangeRecord{
		rec("CHG001", "web-01", "Platform", "Storefront"),
		rec("CHG001", "web-01", "Platform", "Storefront"),
	}
	g := Build(records)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, []string{"ci:web-01", "group:Platform", "service:Storefront"},
		g.Edges[0].Elements)
}

func TestBuildSkipsRecordsWithoutChangeNumber(t *testing.T) {
	g := Build([]models.ChangeRecord{{EntityID: "web-01"}})
	assert.Empty(t, g.Edges)
	assert.Empty(t, g.Nodes)
}

func TestIncidenceConsistency(t *testing.T) {
	records := []models.ChangeRecord{
		rec("CHG001", "web-01", "Platform", "Storefront"),
		rec("CHG001", "db-01", "Platform", "Storefront"),
		rec("CHG002", "web-01", "Net", "Payments"),
		rec("CHG003", "cache-01", "", ""),
	}
	g := Build(records)

	// Every edge element appears in the incidence map and vice versa.
	for _, e := range g.Edges {
		for _, uid := range e.Elements {
			assert.True(t, g.Incidence.Contains(uid, e.UID),
				"incidence missing %s in %s", uid, e.UID)
		}
	}
	for uid, set := range g.Incidence {
		for edgeUID := range set {
			e, ok := g.Edge(edgeUID)
			require.True(t, ok)
			found := false
			for _, member := range e.Elements {
				if member == uid {
					found = true
				}
			}
			assert.True(t, found, "edge %s does not list %s", edgeUID, uid)
		}
	}
}

func TestStatsDerived(t *testing.T) {
	records := []models.ChangeRecord{
		rec("CHG001", "web-01", "Platform", "Storefront"),
		rec("CHG001", "db-01", "Platform", "Storefront"),
	}
	g := Build(records)

	assert.Equal(t, 4, g.Stats.NodeCount)
	assert.Equal(t, 1, g.Stats.EdgeCount)
	assert.Equal(t, 1, g.Stats.MaxDegree)
	assert.Equal(t, 4, g.Stats.MaxEdgeSize)
	// 4 incidences / (4 nodes * 1 edge)
	assert.InDelta(t, 1.0, g.Stats.Density, 1e-9)

	empty := Build(nil)
	assert.Equal(t, 0, empty.Stats.NodeCount)
	assert.Equal(t, 0.0, empty.Stats.Density)
}

func TestTransposeSwapsRoles(t *testing.T) {
	records := []models.ChangeRecord{
		rec("CHG001", "web-01", "Platform", "Storefront"),
		rec("CHG002", "web-01", "Platform", "Storefront"),
	}
	g := Build(records)
	tr := Transpose(g)

	assert.True(t, tr.Transposed)
	// Two changes become nodes.
	require.Len(t, tr.Nodes, 2)
	assert.Equal(t, TypeChange, tr.Nodes[0].Type)
	// Each former entity becomes an edge grouping its changes.
	webEdge, ok := tr.Edge("ci:web-01")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"change:CHG001", "change:CHG002"}, webEdge.Elements)
}

func TestTransposeInvolution(t *testing.T) {
	records := []models.ChangeRecord{
		rec("CHG001", "web-01", "Platform", "Storefront"),
		rec("CHG001", "db-01", "Platform", "Storefront"),
		rec("CHG002", "web-01", "Net", "Payments"),
	}
	g := Build(records)
	back := Transpose(Transpose(g))

	assert.False(t, back.Transposed)
	require.Equal(t, len(g.Nodes), len(back.Nodes))
	require.Equal(t, len(g.Edges), len(back.Edges))

	// Same incidence relation, identifiers preserved.
	for _, e := range g.Edges {
		be, ok := back.Edge(e.UID)
		require.True(t, ok, "edge %s lost in double transpose", e.UID)
		assert.ElementsMatch(t, e.Elements, be.Elements)
	}
	for uid := range g.Incidence {
		assert.Equal(t, g.Incidence.Degree(uid), back.Incidence.Degree(uid),
			"degree mismatch for %s", uid)
	}

	// Independent objects, not aliases.
	assert.NotSame(t, &g.Incidence, &back.Incidence)
}

func TestTransposeSkipsEmptyEdges(t *testing.T) {
	g := &Graph{
		Nodes:     []Entity{{UID: "ci:a", Type: TypeCI}},
		Edges:     []Hyperedge{{UID: "change:EMPTY"}},
		Incidence: make(Incidence),
	}
	g.reindex()
	g.recomputeStats()

	tr := Transpose(g)
	assert.Empty(t, tr.Nodes, "empty hyperedge must not become a node")
	assert.Empty(t, tr.Edges, "untouched entity must not become an edge")
}
