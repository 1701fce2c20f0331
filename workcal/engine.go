package workcal

// StepBudget bounds how many calendar days the forward walker may travel
// past its start before giving up with ErrCalendarUnsatisfiable.
type StepBudget int

// DefaultStepBudget is roughly two calendar years of day-steps.
const DefaultStepBudget StepBudget = 732

// Engine runs the walkers. The zero value is ready to use with
// DefaultStepBudget. Engine holds no state between calls and is safe for
// concurrent use.
type Engine struct {
	// Budget caps forward walks. Zero or negative means DefaultStepBudget.
	Budget StepBudget
}

func (e Engine) budget() StepBudget {
	if e.Budget <= 0 {
		return DefaultStepBudget
	}
	return e.Budget
}
