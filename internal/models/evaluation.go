package models

import "time"

// Grading providers recorded on an evaluation.
const (
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"
)

// AiEvaluation is the structured grading record produced for one grading run.
// It is immutable once produced; a teacher override layers the manual fields
// on a copy without discarding the AI fields.
type AiEvaluation struct {
	Provider           string     `json:"provider"`
	Model              string     `json:"model"`
	CodeQualityScore   float64    `json:"codeQualityScore"`
	OutputMatchScore   float64    `json:"outputMatchScore"`
	RawScore           float64    `json:"rawScore"`
	LatePenalty        float64    `json:"latePenalty"`
	FinalScore         float64    `json:"finalScore"`
	DaysLate           int        `json:"daysLate"`
	DueAt              *time.Time `json:"dueAt"`
	SubmittedAt        time.Time  `json:"submittedAt"`
	Reasoning          string     `json:"reasoning"`
	OutputVerification string     `json:"outputVerification"`
	OutputMatched      bool       `json:"outputMatched"`
	MistakeFlags       []string   `json:"mistakeFlags"`
	SuspectedCheating  bool       `json:"suspectedCheating"`
	CheatingReason     string     `json:"cheatingReason"`
	Issues             []string   `json:"issues"`

	TeacherOverride      bool       `json:"teacherOverride"`
	TeacherOverrideBy    string     `json:"teacherOverrideBy,omitempty"`
	TeacherOverrideAt    *time.Time `json:"teacherOverrideAt,omitempty"`
	TeacherOverrideScore *float64   `json:"teacherOverrideScore,omitempty"`
}

// EffectiveScore returns the teacher-overridden score when present, otherwise
// the reconciled final score.
func (e AiEvaluation) EffectiveScore() float64 {
	if e.TeacherOverride && e.TeacherOverrideScore != nil {
		return *e.TeacherOverrideScore
	}
	return e.FinalScore
}
