package hypergraph

import (
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// Build groups flat change records by change number into hyperedges,
// deduplicates the referenced entities into nodes and populates the
// incidence map. Record order is preserved: nodes and edges appear in
// first-seen order so repeated builds over the same input produce
// identical graphs.
func Build(records []models.ChangeRecord) *Graph {
	logger := logging.GetLogger("hypergraph")

	g := &Graph{Incidence: make(Incidence)}

	nodeSeen := make(map[string]bool)
	addNode := func(n Entity) {
		if n.UID == "" || nodeSeen[n.UID] {
			return
		}
		nodeSeen[n.UID] = true
		g.Nodes = append(g.Nodes, n)
	}

	edgeIdx := make(map[string]int)
	elementSeen := make(map[string]map[string]bool)

	for _, rec := range records {
		if rec.ChangeNumber == "" {
			continue
		}

		edgeUID := ChangeUID(rec.ChangeNumber)
		i, ok := edgeIdx[edgeUID]
		if !ok {
			i = len(g.Edges)
			edgeIdx[edgeUID] = i
			elementSeen[edgeUID] = make(map[string]bool)
			g.Edges = append(g.Edges, Hyperedge{
				UID: edgeUID,
				Attributes: map[string]string{
					"changeNumber":    rec.ChangeNumber,
					"createdAt":       rec.CreatedAt,
					"risk":            rec.Risk,
					"changeType":      rec.ChangeType,
					"assignmentGroup": rec.AssignmentGroup,
					"businessService": rec.BusinessService,
				},
			})
		}

		var members []Entity
		if rec.EntityID != "" {
			name := rec.EntityName
			if name == "" {
				name = rec.EntityID
			}
			members = append(members, Entity{
				UID:  CIUID(rec.EntityID),
				Type: TypeCI,
				Name: name,
				Attributes: map[string]string{
					"class": rec.Class(),
				},
			})
		}
		if rec.AssignmentGroup != "" {
			members = append(members, Entity{
				UID:  GroupUID(rec.AssignmentGroup),
				Type: TypeGroup,
				Name: rec.AssignmentGroup,
			})
		}
		if rec.BusinessService != "" {
			members = append(members, Entity{
				UID:  ServiceUID(rec.BusinessService),
				Type: TypeService,
				Name: rec.BusinessService,
			})
		}

		for _, m := range members {
			addNode(m)
			if !elementSeen[edgeUID][m.UID] {
				elementSeen[edgeUID][m.UID] = true
				g.Edges[i].Elements = append(g.Edges[i].Elements, m.UID)
				g.Incidence.Add(m.UID, edgeUID)
			}
		}
	}

	g.reindex()
	g.recomputeStats()

	logger.Debug("built graph: %d nodes, %d edges, density %.4f",
		g.Stats.NodeCount, g.Stats.EdgeCount, g.Stats.Density)
	return g
}

// Transpose swaps the roles of nodes and hyperedges: each former hyperedge
// becomes a node of type change and each former entity becomes a hyperedge
// grouping all changes that touched it. Hyperedges with zero elements
// contribute no transposed node, and entities contained in no hyperedge
// contribute no transposed edge. Transposing twice reproduces a graph
// isomorphic to the original.
func Transpose(g *Graph) *Graph {
	t := &Graph{
		Incidence:  make(Incidence),
		Transposed: !g.Transposed,
	}

	for _, e := range g.Edges {
		if len(e.Elements) == 0 {
			continue
		}
		node := Entity{
			UID:        e.UID,
			Type:       TypeChange,
			Name:       e.UID,
			Attributes: e.Attributes,
		}
		if g.Transposed {
			// Transposing back: restore the original node identity.
			if orig, ok := g.prototype(e.UID); ok {
				node = orig
			}
		}
		t.Nodes = append(t.Nodes, node)
	}

	for _, n := range g.Nodes {
		set := g.Incidence[n.UID]
		if len(set) == 0 {
			continue
		}
		edge := Hyperedge{UID: n.UID, Attributes: n.Attributes}
		// Preserve the source graph's edge order for determinism.
		for _, e := range g.Edges {
			if _, ok := set[e.UID]; ok {
				edge.Elements = append(edge.Elements, e.UID)
				t.Incidence.Add(e.UID, n.UID)
			}
		}
		t.Edges = append(t.Edges, edge)
	}

	t.reindex()
	t.recomputeStats()
	return t
}

// prototype reconstructs an entity from hyperedge attributes when
// transposing a transposed graph back.
func (g *Graph) prototype(uid string) (Entity, bool) {
	e, ok := g.Edge(uid)
	if !ok {
		return Entity{}, false
	}
	n := Entity{UID: uid, Name: uid, Attributes: e.Attributes}
	switch {
	case len(uid) > 3 && uid[:3] == "ci:":
		n.Type = TypeCI
	case len(uid) > 6 && uid[:6] == "group:":
		n.Type = TypeGroup
	case len(uid) > 8 && uid[:8] == "service:":
		n.Type = TypeService
	default:
		n.Type = TypeChange
	}
	return n, true
}
