package ai

import "context"

// SourceFile is one file of the submission bundle embedded into the prompt.
type SourceFile struct {
	Path    string
	Content string
}

// GradeInput contains the artefacts needed to review a lab submission.
type GradeInput struct {
	Title          string
	Description    string
	ExpectedOutput string
	Hints          []string
	Files          []SourceFile
	Stdout         string
	Stderr         string
	ExitCode       *int
}

// GradeResult is the structured verdict parsed from the model reply.
// CodeQualityScore is NaN when the reply omitted a usable number; callers are
// expected to re-derive the score locally in that case.
type GradeResult struct {
	CodeQualityScore  float64
	Reasoning         string
	Issues            []string
	SuspectedCheating bool
	CheatingReason    string
	MistakeFlags      []string
}

// Grader describes a remote model capable of reviewing lab submissions. A
// failed call is reported as an error; no partial result is ever returned.
type Grader interface {
	Grade(ctx context.Context, input GradeInput) (GradeResult, error)
}
