// Package community implements code_clusters' community detection
// (SPEC_FULL.md §4.11, resolving spec.md §9's Open Question): path-informed
// connected-components clustering, not full Leiden. Communities are seeded
// by directory and merged across directories when IMPORTS/CALLS edge
// density between them clears a threshold.
package community

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
)

// MergeThreshold is the minimum cross-directory edge density required to
// merge two candidate communities (default 0.3, SPEC_FULL.md §4.11).
const MergeThreshold = 0.3

// Detector is the interface code_clusters depends on; PathBased is the
// shipped implementation, and a future Leiden-based detector is a
// drop-in replacement behind the same interface.
type Detector interface {
	Detect(ctx context.Context, projectID string) ([]graphmodel.Community, error)
}

// PathBased groups files by directory, then merges directory groups whose
// cross-group IMPORTS/CALLS edge density clears MergeThreshold.
type PathBased struct {
	graph *graphstore.Store
}

// New constructs a PathBased detector.
func New(graph *graphstore.Store) *PathBased {
	return &PathBased{graph: graph}
}

// Detect runs clustering and persists the resulting COMMUNITY nodes with
// BELONGS_TO edges from each member FILE.
func (d *PathBased) Detect(ctx context.Context, projectID string) ([]graphmodel.Community, error) {
	files, err := d.graph.FilesForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	edges, err := d.graph.FileLevelEdges(ctx, projectID)
	if err != nil {
		return nil, err
	}

	groups := seedByDirectory(files)
	groups = mergeByDensity(groups, edges)

	communities := make([]graphmodel.Community, 0, len(groups))
	for i, members := range groups {
		c := graphmodel.Community{
			ID:          fmt.Sprintf("%s:community:%d", projectID, i),
			Label:       label(members),
			Summary:     summary(members),
			MemberCount: len(members),
			ProjectID:   projectID,
		}
		memberIDs := make([]string, 0, len(members))
		for _, f := range members {
			memberIDs = append(memberIDs, f.ID)
		}
		if err := d.graph.UpsertCommunity(ctx, c, memberIDs); err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}
	return communities, nil
}

// seedByDirectory buckets files by their containing directory; two files
// in the same directory start in the same candidate community.
func seedByDirectory(files []graphmodel.File) [][]graphmodel.File {
	byDir := make(map[string][]graphmodel.File)
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f.Path)
		if _, ok := byDir[dir]; !ok {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], f)
	}
	sort.Strings(dirs)
	groups := make([][]graphmodel.File, 0, len(dirs))
	for _, dir := range dirs {
		groups = append(groups, byDir[dir])
	}
	return groups
}

// mergeByDensity repeatedly merges the pair of groups with the highest
// cross-group edge density until no pair clears MergeThreshold.
func mergeByDensity(groups [][]graphmodel.File, edges []graphstore.FilePair) [][]graphmodel.File {
	pathToGroup := make(map[string]int)
	for gi, g := range groups {
		for _, f := range g {
			pathToGroup[f.Path] = gi
		}
	}

	for {
		density := make(map[[2]int]int)
		sizes := make(map[[2]int]int)
		for _, e := range edges {
			gi, giok := pathToGroup[e.FromPath]
			gj, gjok := pathToGroup[e.ToPath]
			if !giok || !gjok || gi == gj {
				continue
			}
			key := pairKey(gi, gj)
			density[key]++
		}
		for gi := range groups {
			for gj := gi + 1; gj < len(groups); gj++ {
				sizes[pairKey(gi, gj)] = len(groups[gi]) * len(groups[gj])
			}
		}

		bestKey := [2]int{-1, -1}
		bestDensity := 0.0
		for key, count := range density {
			possible := sizes[key]
			if possible == 0 {
				continue
			}
			d := float64(count) / float64(possible)
			if d > bestDensity {
				bestDensity = d
				bestKey = key
			}
		}
		if bestDensity < MergeThreshold || bestKey[0] < 0 {
			break
		}

		gi, gj := bestKey[0], bestKey[1]
		groups[gi] = append(groups[gi], groups[gj]...)
		for _, f := range groups[gj] {
			pathToGroup[f.Path] = gi
		}
		groups = append(groups[:gj], groups[gj+1:]...)
		for gk := gj; gk < len(groups); gk++ {
			for _, f := range groups[gk] {
				pathToGroup[f.Path] = gk
			}
		}
	}
	return groups
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func label(members []graphmodel.File) string {
	if len(members) == 0 {
		return "empty"
	}
	return filepath.Dir(members[0].Path)
}

func summary(members []graphmodel.File) string {
	dirs := make(map[string]bool)
	for _, f := range members {
		dirs[filepath.Dir(f.Path)] = true
	}
	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)
	return fmt.Sprintf("%d file(s) across %s", len(members), strings.Join(names, ", "))
}
