package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dev-five-git/vespertide/internal/errs"
)

func TestExitCodeForInternalInvariantFailures(t *testing.T) {
	assert.Equal(t, 2, exitCodeFor(&errs.InvariantViolation{Entity: "t", Reason: "x"}))
	assert.Equal(t, 2, exitCodeFor(&errs.CyclicDependency{Unresolved: []string{"a", "b"}}))
	assert.Equal(t, 2, exitCodeFor(&errs.IncompatibleEnumChange{Enum: "e", Reason: "x"}))
}

func TestExitCodeForUserErrors(t *testing.T) {
	assert.Equal(t, 1, exitCodeFor(&errs.ParseError{Reason: "bad json"}))
	assert.Equal(t, 1, exitCodeFor(&errs.MissingBackfill{Table: "t", Column: "c"}))
	assert.Equal(t, 1, exitCodeFor(&errs.BackendUnsupported{Backend: "postgres", Reason: "x"}))
}

func TestExitCodeForListedErrorsChecksEveryMember(t *testing.T) {
	list := errs.List{&errs.ParseError{Reason: "a"}, &errs.InvariantViolation{Entity: "t", Reason: "b"}}
	assert.Equal(t, 2, exitCodeFor(list))
}
