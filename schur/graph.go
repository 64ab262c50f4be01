package schur

import (
	"strconv"

	"github.com/cpmech/thunderegg/domain"
	"github.com/katalvlaran/lvlath/graph/algorithms"
	"github.com/katalvlaran/lvlath/graph/core"
)

// AdjacencyGraph builds an undirected patch-adjacency graph from dom's
// installed neighbor relations, one vertex per patch id — schur.New
// itself walks PatchInfo's neighbor map directly, but this graph form gives
// a reusable topology view for locating a Coarse/Fine star or checking a
// Domain's connectivity independently of that walk (the domain-stack
// assignment of katalvlaran/lvlath's graph/core package to exactly this
// purpose).
func AdjacencyGraph(dom *domain.Domain) *core.Graph {
	g := core.NewGraph(false, false)

	ids := map[int64]bool{}
	for _, p := range dom.Patches {
		ids[p.ID] = true
		for _, nbrID := range p.GetNbrIds() {
			ids[nbrID] = true
		}
	}
	for id := range ids {
		g.AddVertex(&core.Vertex{ID: strconv.FormatInt(id, 10)})
	}
	for _, p := range dom.Patches {
		from := strconv.FormatInt(p.ID, 10)
		for _, nbrID := range p.GetNbrIds() {
			g.AddEdge(from, strconv.FormatInt(nbrID, 10), 1)
		}
	}
	return g
}

// ReachableFromFirstPatch runs a breadth-first search from dom's first
// local patch over AdjacencyGraph(dom) and returns every patch id it
// reaches — a connectivity check for confirming a generated Domain's
// finest level forms one connected mesh rather than disjoint islands.
func ReachableFromFirstPatch(dom *domain.Domain) (map[int64]bool, error) {
	if len(dom.Patches) == 0 {
		return map[int64]bool{}, nil
	}
	g := AdjacencyGraph(dom)
	start := strconv.FormatInt(dom.Patches[0].ID, 10)
	res, err := algorithms.BFS(g, start, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(res.Visited))
	for idStr := range res.Visited {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, nil
}
