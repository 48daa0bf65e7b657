// Package hypergraph implements the incidence-matrix hypergraph built from
// flat change records.
//
// Each change request becomes one hyperedge whose elements are the entities
// it touched (configuration items, the assignment group, the business
// service). The incidence map records which hyperedges contain which
// entities and is kept bidirectionally consistent with the edge element
// lists. A Graph is built once from a record set and treated as read-only
// by every consumer; analytics never mutate it.
package hypergraph

import "fmt"

// EntityType classifies nodes in the hypergraph.
type EntityType string

const (
	TypeCI      EntityType = "ci"
	TypeGroup   EntityType = "group"
	TypeService EntityType = "service"
	// TypeChange is only produced by Transpose, where former hyperedges
	// become nodes.
	TypeChange EntityType = "change"
)

// Entity is a node in the hypergraph. UIDs are globally unique and
// type-prefixed ("ci:<id>", "group:<name>", ...). Entities are immutable
// once created.
type Entity struct {
	UID        string            `json:"uid"`
	Type       EntityType        `json:"type"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Hyperedge is a set-valued edge: one change request and the ordered set of
// entity UIDs it touched. Elements contains no duplicates.
type Hyperedge struct {
	UID        string            `json:"uid"`
	Elements   []string          `json:"elements"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EdgeSet is a set of hyperedge UIDs.
type EdgeSet map[string]struct{}

// Incidence maps entity UID to the set of hyperedges containing it.
type Incidence map[string]EdgeSet

// Add records that edge contains uid.
func (in Incidence) Add(uid, edge string) {
	set, ok := in[uid]
	if !ok {
		set = make(EdgeSet)
		in[uid] = set
	}
	set[edge] = struct{}{}
}

// Degree returns the number of hyperedges containing uid.
func (in Incidence) Degree(uid string) int {
	return len(in[uid])
}

// Contains reports whether edge contains uid.
func (in Incidence) Contains(uid, edge string) bool {
	_, ok := in[uid][edge]
	return ok
}

// Stats holds derived structural statistics. Always recomputed from the
// node/edge/incidence fields, never hand-edited.
type Stats struct {
	NodeCount   int     `json:"nodeCount"`
	EdgeCount   int     `json:"edgeCount"`
	Density     float64 `json:"density"`
	MaxDegree   int     `json:"maxDegree"`
	MinDegree   int     `json:"minDegree"`
	AvgDegree   float64 `json:"avgDegree"`
	MaxEdgeSize int     `json:"maxEdgeSize"`
	MinEdgeSize int     `json:"minEdgeSize"`
	AvgEdgeSize float64 `json:"avgEdgeSize"`
}

// Graph is the read-only unit passed to every analytics module.
type Graph struct {
	Nodes      []Entity
	Edges      []Hyperedge
	Incidence  Incidence
	Stats      Stats
	Transposed bool

	nodeIndex map[string]int
	edgeIndex map[string]int
}

// UID builders. Entity UIDs are type-prefixed so identifiers from different
// source tables can never collide.
func CIUID(id string) string      { return fmt.Sprintf("ci:%s", id) }
func GroupUID(name string) string { return fmt.Sprintf("group:%s", name) }
func ServiceUID(name string) string {
	return fmt.Sprintf("service:%s", name)
}
func ChangeUID(number string) string { return fmt.Sprintf("change:%s", number) }

// NewGraph assembles a graph directly from nodes and edges, deriving the
// incidence map, lookup indexes and stats from the edge element lists.
func NewGraph(nodes []Entity, edges []Hyperedge) *Graph {
	g := &Graph{Nodes: nodes, Edges: edges, Incidence: make(Incidence)}
	for _, e := range edges {
		for _, uid := range e.Elements {
			g.Incidence.Add(uid, e.UID)
		}
	}
	g.reindex()
	g.recomputeStats()
	return g
}

// Node returns the entity with the given UID.
func (g *Graph) Node(uid string) (Entity, bool) {
	i, ok := g.nodeIndex[uid]
	if !ok {
		return Entity{}, false
	}
	return g.Nodes[i], true
}

// Edge returns the hyperedge with the given UID.
func (g *Graph) Edge(uid string) (Hyperedge, bool) {
	i, ok := g.edgeIndex[uid]
	if !ok {
		return Hyperedge{}, false
	}
	return g.Edges[i], true
}

// NodesOfType returns all entities of the given type in insertion order.
func (g *Graph) NodesOfType(t EntityType) []Entity {
	var out []Entity
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// reindex rebuilds the internal UID lookup tables.
func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.UID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.Edges))
	for i, e := range g.Edges {
		g.edgeIndex[e.UID] = i
	}
}

// recomputeStats derives Stats from the structural fields.
func (g *Graph) recomputeStats() {
	s := Stats{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges)}

	incidenceCount := 0
	for i, n := range g.Nodes {
		d := g.Incidence.Degree(n.UID)
		incidenceCount += d
		if i == 0 || d > s.MaxDegree {
			s.MaxDegree = d
		}
		if i == 0 || d < s.MinDegree {
			s.MinDegree = d
		}
	}
	if s.NodeCount > 0 {
		s.AvgDegree = float64(incidenceCount) / float64(s.NodeCount)
	}

	for i, e := range g.Edges {
		sz := len(e.Elements)
		if i == 0 || sz > s.MaxEdgeSize {
			s.MaxEdgeSize = sz
		}
		if i == 0 || sz < s.MinEdgeSize {
			s.MinEdgeSize = sz
		}
		// AvgEdgeSize accumulates in the loop, divided below.
		s.AvgEdgeSize += float64(sz)
	}
	if s.EdgeCount > 0 {
		s.AvgEdgeSize /= float64(s.EdgeCount)
	}

	if s.NodeCount > 0 && s.EdgeCount > 0 {
		s.Density = float64(incidenceCount) / (float64(s.NodeCount) * float64(s.EdgeCount))
	}

	g.Stats = s
}

// Snapshot is the JSON-serializable view of a graph served over the API.
type Snapshot struct {
	Nodes      []Entity            `json:"nodes"`
	Edges      []Hyperedge         `json:"edges"`
	Incidence  map[string][]string `json:"incidence"`
	Stats      Stats               `json:"stats"`
	Transposed bool                `json:"isTransposed"`
}

// Snapshot converts the graph into its serializable form. Incidence sets
// are flattened to sorted-by-edge-order slices via the edge index so the
// output is deterministic.
func (g *Graph) Snapshot() Snapshot {
	inc := make(map[string][]string, len(g.Incidence))
	for uid, set := range g.Incidence {
		edges := make([]string, 0, len(set))
		for _, e := range g.Edges {
			if _, ok := set[e.UID]; ok {
				edges = append(edges, e.UID)
			}
		}
		inc[uid] = edges
	}
	return Snapshot{
		Nodes:      g.Nodes,
		Edges:      g.Edges,
		Incidence:  inc,
		Stats:      g.Stats,
		Transposed: g.Transposed,
	}
}
