package planner

import (
	"sort"

	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// topoSort orders nodes by Kahn's algorithm so that every dependency
// precedes its dependents, breaking ties lexicographically. dependsOn[n]
// lists the distinct nodes n depends on. A cycle is reported as
// CyclicDependency naming every node the sort could not place.
func topoSort(nodes []string, dependsOn map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		inDegree[n] = 0
	}
	for _, n := range nodes {
		for _, dep := range dependsOn[n] {
			inDegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var ready []string
	for _, n := range nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	out := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		out = append(out, n)

		next := append([]string(nil), dependents[n]...)
		sort.Strings(next)
		for _, m := range next {
			inDegree[m]--
			if inDegree[m] == 0 {
				ready = insertSorted(ready, m)
			}
		}
	}

	if len(out) != len(nodes) {
		var unresolved []string
		for _, n := range nodes {
			if inDegree[n] > 0 {
				unresolved = append(unresolved, n)
			}
		}
		sort.Strings(unresolved)
		return nil, &errs.CyclicDependency{Unresolved: unresolved}
	}
	return out, nil
}

func insertSorted(sorted []string, v string) []string {
	i := sort.SearchStrings(sorted, v)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = v
	return sorted
}

// tableDependsOn builds the FK dependency edges for subset: for each table in
// subset, the distinct tables it has a foreign key referencing, restricted
// to other members of subset. Self-references are excluded since a
// self-referencing FK never blocks a table's own creation or deletion.
func tableDependsOn(s *schema.Schema, subset []string) map[string][]string {
	inSubset := make(map[string]bool, len(subset))
	for _, n := range subset {
		inSubset[n] = true
	}
	deps := make(map[string][]string, len(subset))
	for _, name := range subset {
		t := s.Table(name)
		seen := map[string]bool{}
		for _, c := range t.Constraints {
			if c.Kind != schema.ConstraintForeignKey {
				continue
			}
			if c.ReferencedTable == name || !inSubset[c.ReferencedTable] || seen[c.ReferencedTable] {
				continue
			}
			seen[c.ReferencedTable] = true
			deps[name] = append(deps[name], c.ReferencedTable)
		}
	}
	return deps
}

// topoSortTables returns subset ordered so referents precede their
// dependents, per the FK graph within s restricted to subset.
func topoSortTables(s *schema.Schema, subset []string) ([]string, error) {
	return topoSort(subset, tableDependsOn(s, subset))
}

func reverseStrings(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
