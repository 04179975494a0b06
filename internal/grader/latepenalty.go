package grader

import (
	"math"
	"time"

	"github.com/campuslab/grader-go-api/internal/models"
)

// Lateness captures how far past the due date a submission arrived and the
// resulting score penalty.
type Lateness struct {
	DueAt       *time.Time
	DaysLate    int
	LatePenalty float64
}

// ComputeLateness charges whole days past the due date at the problem's
// per-day rate. No due date, or an on-time submission, costs nothing.
func ComputeLateness(problem models.Problem, submittedAt time.Time) Lateness {
	if problem.DueAt == nil || problem.DueAt.IsZero() {
		return Lateness{}
	}

	due := *problem.DueAt
	result := Lateness{DueAt: &due}
	if !submittedAt.After(due) {
		return result
	}

	daysLate := int(math.Ceil(submittedAt.Sub(due).Hours() / 24))

	perDay := DefaultLatePenaltyPerDay
	if problem.LatePenaltyPerDay != nil {
		if rate := *problem.LatePenaltyPerDay; isFinite(rate) && rate >= 0 {
			perDay = rate
		}
	}

	result.DaysLate = daysLate
	result.LatePenalty = round1(clampScore(float64(daysLate) * perDay))
	return result
}
