// Plan-against-baseline validation, grounded on the teacher's
// internal/core/validate_semantic.go cross-entity checks but replay-based
// rather than structural: spec.md §4.4 requires validate_plan to actually
// fold the plan through the applier and report every failure from one pass.
package planner

import (
	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/applier"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// ValidatePlan replays plan's actions against baseline through the applier
// and reports every failure encountered along the way — including a
// DeleteColumn still referenced by a constraint, which the applier itself
// rejects with InvariantViolation — rather than stopping at the first.
func ValidatePlan(baseline *schema.Schema, plan action.MigrationPlan) error {
	var problems errs.List

	cur := baseline.Clone()
	for _, a := range plan.Actions {
		next, err := applier.Apply(cur, a)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		cur = next
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}
