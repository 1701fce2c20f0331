package workcal

import "time"

// ResumeInput describes an SLA that was put on hold and is now resuming.
type ResumeInput struct {
	HeldAt           time.Time
	OriginalDeadline time.Time
	ResumeAt         time.Time
	Calendar         *Calendar

	// LeavesAtHold are used to measure what was left when the hold began,
	// LeavesAtResume to place the new deadline.
	LeavesAtHold   []LeaveRecord
	LeavesAtResume []LeaveRecord
}

type ResumeResult struct {
	RemainingMinutes int
	Deadline         time.Time
	// Breached is set when the original deadline had already passed at the
	// hold; the resumed SLA then has zero minutes left.
	Breached bool
}

// Resume carries the working minutes left at the hold over to a new
// deadline counted from the resume instant.
func (e Engine) Resume(in ResumeInput) (ResumeResult, error) {
	var res ResumeResult
	if in.OriginalDeadline.After(in.HeldAt) {
		remaining, err := e.WorkingMinutesBetween(in.HeldAt, in.OriginalDeadline, in.Calendar, in.LeavesAtHold)
		if err != nil {
			return ResumeResult{}, err
		}
		res.RemainingMinutes = remaining
	} else {
		res.Breached = true
	}

	deadline, err := e.Deadline(in.ResumeAt, res.RemainingMinutes, in.Calendar, in.LeavesAtResume)
	if err != nil {
		return ResumeResult{}, err
	}
	res.Deadline = deadline
	return res, nil
}
