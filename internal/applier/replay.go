package applier

import (
	"sort"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// Replay folds Apply over a migration history in version order, producing
// the baseline schema that history reconstructs. It never halts on a
// non-fatal finding: version gaps are collected as warnings the caller can
// choose to report, mirroring the teacher's Migration.Dedupe posture of
// surfacing issues without aborting a build. A VersionDuplicate is added to
// the same list but that plan's actions are skipped, since there is no
// sound way to decide which of two same-numbered migrations is canonical.
func Replay(history []action.MigrationPlan) (*schema.Schema, []error) {
	var warnings []error

	sorted := append([]action.MigrationPlan(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	seen := map[int64]bool{}
	cur := schema.New()
	var lastVersion int64
	haveLast := false

	for _, plan := range sorted {
		if seen[plan.Version] {
			warnings = append(warnings, &errs.VersionDuplicate{Version: plan.Version})
			continue
		}
		seen[plan.Version] = true

		if haveLast && plan.Version != lastVersion+1 {
			warnings = append(warnings, &errs.VersionGap{After: lastVersion, Before: plan.Version})
		}
		lastVersion = plan.Version
		haveLast = true

		for _, a := range plan.Actions {
			next, err := Apply(cur, a)
			if err != nil {
				warnings = append(warnings, err)
				continue
			}
			cur = next
		}
	}

	return cur, warnings
}
