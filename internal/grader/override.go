package grader

import (
	"errors"
	"math"
	"time"

	"github.com/campuslab/grader-go-api/internal/models"
)

// ErrInvalidOverrideScore indicates a manual score outside [0,10].
var ErrInvalidOverrideScore = errors.New("override score must be between 0 and 10")

// ApplyTeacherOverride layers a manual score on an existing evaluation. The
// AI-produced fields are never recomputed or discarded; the override is an
// annotation on a copy of the record.
func ApplyTeacherOverride(evaluation models.AiEvaluation, teacherID string, score float64, at time.Time) (models.AiEvaluation, error) {
	if math.IsNaN(score) || score < 0 || score > MaxScore {
		return models.AiEvaluation{}, ErrInvalidOverrideScore
	}

	overridden := evaluation
	overridden.MistakeFlags = append([]string(nil), evaluation.MistakeFlags...)
	overridden.Issues = append([]string(nil), evaluation.Issues...)

	rounded := round1(score)
	overrideAt := at
	overridden.TeacherOverride = true
	overridden.TeacherOverrideBy = teacherID
	overridden.TeacherOverrideAt = &overrideAt
	overridden.TeacherOverrideScore = &rounded

	return overridden, nil
}
