package planner

import (
	"errors"

	"ecofood/tools"
)

// PlanGenerationError marks a run of the plan-generation step that
// produced no usable plan. The job runner treats it as recoverable
// (one whole-week fallback attempt); anything else is fatal.
type PlanGenerationError = tools.PlanGenerationError

// IsPlanGeneration reports whether err is a plan-generation failure
func IsPlanGeneration(err error) bool {
	var pgErr *PlanGenerationError
	return errors.As(err, &pgErr)
}
