package analytics

import (
	"sort"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
)

// Communities runs a single-level Louvain-style modularity optimization
// over the CI-projected weighted graph. With zero total edge weight every
// node stays a trivial singleton community and Q is 0.
func (e *Engine) Communities(g *hypergraph.Graph) *CommunityResult {
	p := projectCIs(g)
	n := p.size()

	res := &CommunityResult{
		Assignments: make(map[string]int, n),
		Communities: []CommunitySummary{},
	}
	if n == 0 {
		return res
	}

	m := p.totalWeight()
	comm := make([]int, n)
	for i := range comm {
		comm[i] = i
	}

	if m > 0 {
		strength := make([]float64, n)
		sumTot := make([]float64, n)
		for i := 0; i < n; i++ {
			strength[i] = p.strength(i)
			sumTot[i] = strength[i]
		}

		for pass := 0; pass < e.opts.LouvainMaxPasses; pass++ {
			moved := false
			for i := 0; i < n; i++ {
				current := comm[i]
				sumTot[current] -= strength[i]

				// Weight from i into each adjacent community,
				// visited in ascending community id for
				// deterministic tie handling.
				links := make(map[int]float64)
				for _, j := range p.neighbors(i) {
					links[comm[j]] += p.weight(i, j)
				}
				candidates := make([]int, 0, len(links)+1)
				if _, ok := links[current]; !ok {
					candidates = append(candidates, current)
				}
				for c := range links {
					candidates = append(candidates, c)
				}
				sort.Ints(candidates)

				gain := func(c int) float64 {
					return links[c] - sumTot[c]*strength[i]/(2*m)
				}

				best := current
				bestGain := gain(current)
				for _, c := range candidates {
					if c == current {
						continue
					}
					if gn := gain(c); gn > bestGain {
						best = c
						bestGain = gn
					}
				}

				sumTot[best] += strength[i]
				if best != current {
					comm[i] = best
					moved = true
				}
			}
			if !moved {
				break
			}
		}
	}

	// Renumber communities densely in first-appearance node order.
	dense := make(map[int]int)
	for i := 0; i < n; i++ {
		if _, ok := dense[comm[i]]; !ok {
			dense[comm[i]] = len(dense)
		}
		comm[i] = dense[comm[i]]
	}
	for i, uid := range p.uids {
		res.Assignments[uid] = comm[i]
	}

	res.Modularity = modularity(p, comm)
	res.Communities = e.summarizeCommunities(g, p, comm, len(dense))
	return res
}

// modularity computes Q = sum_c [ in_c/(2m) - (tot_c/(2m))^2 ].
func modularity(p *projection, comm []int) float64 {
	m := p.totalWeight()
	if m == 0 {
		return 0
	}

	nComm := 0
	for _, c := range comm {
		if c+1 > nComm {
			nComm = c + 1
		}
	}
	internal := make([]float64, nComm) // sum of w_ij for i,j in c, both directions
	total := make([]float64, nComm)    // sum of strengths

	for i := range comm {
		total[comm[i]] += p.strength(i)
		for j, w := range p.weights[i] {
			if comm[i] == comm[j] {
				internal[comm[i]] += w
			}
		}
	}

	q := 0.0
	for c := 0; c < nComm; c++ {
		q += internal[c]/(2*m) - (total[c]/(2*m))*(total[c]/(2*m))
	}
	return q
}

// summarizeCommunities reports size, dominant CI class and dominant
// business service per community by naive majority count.
func (e *Engine) summarizeCommunities(g *hypergraph.Graph, p *projection, comm []int, nComm int) []CommunitySummary {
	summaries := make([]CommunitySummary, nComm)
	for c := range summaries {
		summaries[c].ID = c
	}

	classVotes := make([]map[string]int, nComm)
	serviceVotes := make([]map[string]int, nComm)
	for c := 0; c < nComm; c++ {
		classVotes[c] = make(map[string]int)
		serviceVotes[c] = make(map[string]int)
	}

	for i, uid := range p.uids {
		c := comm[i]
		summaries[c].Size++
		summaries[c].Members = append(summaries[c].Members, uid)

		if n, ok := g.Node(uid); ok {
			if cls := n.Attributes["class"]; cls != "" {
				classVotes[c][cls]++
			}
		}
		for _, nb := range hypergraph.Neighbors(g, uid) {
			if n, ok := g.Node(nb); ok && n.Type == hypergraph.TypeService {
				serviceVotes[c][n.Name]++
			}
		}
	}

	for c := range summaries {
		summaries[c].DominantClass = majority(classVotes[c])
		summaries[c].DominantService = majority(serviceVotes[c])
	}
	return summaries
}

// majority returns the key with the highest count, breaking ties by
// lexicographic order so the result is deterministic.
func majority(votes map[string]int) string {
	best := ""
	bestCount := 0
	keys := make([]string, 0, len(votes))
	for k := range votes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if votes[k] > bestCount {
			best = k
			bestCount = votes[k]
		}
	}
	return best
}
