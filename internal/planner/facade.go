// Facade entry point collapsing replay -> diff -> validate into one call,
// grounded on cmd/smf/main.go's diffCmd/migrateCmd pipeline (parse -> diff.Diff
// -> generator.GenerateMigration -> format) — here the CLI-level orchestration
// lives in the library once input parsing and SQL rendering are pulled out
// into their own collaborators (internal/store, internal/sqlgen).
package planner

import (
	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/applier"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// PlanResult is the outcome of planning a migration from a history of
// applied migrations toward a target schema.
type PlanResult struct {
	Baseline     *schema.Schema
	Actions      []action.MigrationAction
	Notes        []Note
	ReplayIssues []error // VersionGap/VersionDuplicate/apply errors collected during Replay, non-fatal
	SchemaErr    error   // validate_schema(target) findings, non-fatal to planning
}

// Plan reconstructs the baseline from history, diffs it against target, and
// runs validate_schema against target. It only returns a non-nil error for a
// precondition failure that makes planning itself impossible (a cyclic
// dependency or an incompatible enum change from the differ); replay issues
// and schema validation findings are reported on PlanResult instead, per
// spec.md §4's "collect, don't halt" policy for everything except
// programming-error preconditions.
func Plan(history []action.MigrationPlan, target *schema.Schema, opts schema.ValidationOptions) (*PlanResult, error) {
	baseline, replayIssues := applier.Replay(history)

	actions, err := Diff(baseline, target)
	if err != nil {
		return nil, err
	}

	return &PlanResult{
		Baseline:     baseline,
		Actions:      actions,
		Notes:        BreakingChanges(actions),
		ReplayIssues: replayIssues,
		SchemaErr:    schema.Validate(target, opts),
	}, nil
}
