package tools

// PlanGenerationError is the single failure kind for "the generator
// produced no usable plan": generator unavailable, invocation failure,
// unparseable response, missing plan list, or an empty normalized plan.
// Callers apply one fallback policy regardless of the root cause and
// classify with errors.As rather than matching message text.
type PlanGenerationError struct {
	Reason string
	Err    error
}

func (e *PlanGenerationError) Error() string {
	if e.Err != nil {
		return "plan generation failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "plan generation failed: " + e.Reason
}

func (e *PlanGenerationError) Unwrap() error {
	return e.Err
}
