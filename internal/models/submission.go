package models

import "time"

// ProjectFileType discriminates editor entries; only files are graded.
const (
	ProjectFileTypeFile   = "file"
	ProjectFileTypeFolder = "folder"
)

// SubmissionStatus enumerates the submission lifecycle.
const (
	SubmissionStatusDraft     = "draft"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusValidated = "validated"
)

// ProjectFile is a single entry of the student's editor workspace.
type ProjectFile struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Path       string `json:"path"`
	IsReadonly bool   `json:"isReadonly"`
}

// ExecutionResult is the already-captured output of running the student's
// code. The engine never executes anything itself.
type ExecutionResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exitCode"`
}

// Submission is a student's set of files for one experiment.
type Submission struct {
	ID           string        `json:"id"`
	ExperimentID string        `json:"experimentId"`
	StudentID    string        `json:"studentId"`
	Status       string        `json:"status"`
	Files        []ProjectFile `json:"files"`
	Score        *float64      `json:"score"`
	Feedback     string        `json:"feedback"`
	EvaluatedBy  string        `json:"evaluatedBy,omitempty"`
	LastSaved    time.Time     `json:"lastSaved"`
	SubmittedAt  *time.Time    `json:"submittedAt"`
	AiEvaluation *AiEvaluation `json:"aiEvaluation"`
}

// HasBeenValidated reports whether a teacher signed off on the submission.
func (s Submission) HasBeenValidated() bool {
	return s.Status == SubmissionStatusValidated
}
