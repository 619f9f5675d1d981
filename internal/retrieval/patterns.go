package retrieval

import "sort"

// ImportEdge is one FILE -[:IMPORTS]-> IMPORT -[:REFERENCES]-> FILE hop,
// reduced to the two file ids it connects, as read from the graph store.
type ImportEdge struct {
	FromFileID string
	ToFileID   string
}

// Cycle is one detected import cycle, as an ordered list of file ids
// returning to its own start.
type Cycle struct {
	Files []string
}

// FindCircularImports resolves spec.md §9's open question about
// find_pattern(type='circular'): a real cycle detection over the
// FILE-[:IMPORTS]->IMPORT-[:REFERENCES]->FILE graph, implemented as
// Tarjan-style DFS cycle detection over the file-to-file adjacency derived
// from edges.
func FindCircularImports(edges []ImportEdge) []Cycle {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.FromFileID] = append(adj[e.FromFileID], e.ToFileID)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var stack []string
	var cycles []Cycle
	seen := make(map[string]bool)

	var visit func(node string)
	visit = func(node string) {
		color[node] = gray
		stack = append(stack, node)
		for _, next := range adj[node] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				cyc := cycleFrom(stack, next)
				key := canonicalKey(cyc)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, Cycle{Files: cyc})
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
	}

	var nodes []string
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

func cycleFrom(stack []string, target string) []string {
	for i, n := range stack {
		if n == target {
			out := append([]string{}, stack[i:]...)
			return append(out, target)
		}
	}
	return []string{target}
}

// canonicalKey rotates the cycle to start at its lexicographically
// smallest element so the same cycle found from different start points
// dedupes to one entry.
func canonicalKey(cycle []string) string {
	if len(cycle) <= 1 {
		return ""
	}
	body := cycle[:len(cycle)-1]
	minIdx := 0
	for i, v := range body {
		if v < body[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string{}, body[minIdx:]...), body[:minIdx]...)
	key := ""
	for _, v := range rotated {
		key += v + "\x00"
	}
	return key
}
