package schema

import (
	"sort"

	"go.uber.org/zap"
)

// Dependencies maps each table to the tables its foreign keys reference.
// Self references and references leaving the table set are dropped.
func Dependencies(tables TableSet, fks ForeignKeys) map[string][]string {
	deps := make(map[string][]string, len(tables))
	for _, name := range tables.Names() {
		seen := map[string]bool{}
		keys := fks[name]
		fkNames := make([]string, 0, len(keys))
		for n := range keys {
			fkNames = append(fkNames, n)
		}
		sort.Strings(fkNames)
		for _, n := range fkNames {
			ref := keys[n].RefTable
			if ref == name || !tables.Has(ref) || seen[ref] {
				continue
			}
			seen[ref] = true
			deps[name] = append(deps[name], ref)
		}
	}
	return deps
}

// SortByDependencies orders tables so that referenced tables come first.
// Cycles are broken by picking the table with the fewest unresolved
// dependencies, preferring one that takes part in a two-table cycle.
func SortByDependencies(names []string, deps map[string][]string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	names = append([]string(nil), names...)
	sort.Strings(names)

	var sorted []string
	processed := make(map[string]bool, len(names))
	for len(sorted) < len(names) {
		added := false

		// Tables whose dependencies are all placed.
		for _, t := range names {
			if processed[t] {
				continue
			}
			ready := true
			for _, dep := range deps[t] {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, t)
				processed[t] = true
				added = true
			}
		}
		if added {
			continue
		}

		// Nothing was ready: a cycle.
		best, bestScore := "", -1<<31
		for _, t := range names {
			if processed[t] {
				continue
			}
			score := 0
			circular := false
			for _, dep := range deps[t] {
				if processed[dep] {
					continue
				}
				score -= 100
				for _, back := range deps[dep] {
					if back == t {
						circular = true
					}
				}
			}
			if circular {
				score += 500
			}
			// names is sorted, so the first best wins ties deterministically.
			if score > bestScore {
				best, bestScore = t, score
			}
		}
		logger.Debug("breaking circular dependency", zap.String("table", best), zap.Int("score", bestScore))
		sorted = append(sorted, best)
		processed[best] = true
	}
	return sorted
}
