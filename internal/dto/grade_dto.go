package dto

import (
	"time"

	"github.com/campuslab/grader-go-api/internal/grader"
	"github.com/campuslab/grader-go-api/internal/models"
)

// ProblemPayload is the experiment description supplied by the submission
// layer alongside a grading request.
type ProblemPayload struct {
	Title             string     `json:"title" validate:"required"`
	Description       string     `json:"description"`
	ExpectedOutput    string     `json:"expectedOutput"`
	Hints             []string   `json:"hints"`
	HelperLinks       []string   `json:"helperLinks"`
	MaxMarks          float64    `json:"maxMarks"`
	DueAt             *time.Time `json:"dueAt"`
	LatePenaltyPerDay *float64   `json:"latePenaltyPerDay"`
}

// FilePayload is one editor entry of the submission.
type FilePayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Path    string `json:"path"`
}

// ExecutionResultPayload carries the already-captured run output, if any.
type ExecutionResultPayload struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exitCode"`
}

// GradeRequest is the grading input contract. SubmittedAt defaults to the
// service clock when absent.
type GradeRequest struct {
	Problem         ProblemPayload          `json:"problem" validate:"required"`
	Files           []FilePayload           `json:"files"`
	ExecutionResult *ExecutionResultPayload `json:"executionResult"`
	SubmittedAt     *time.Time              `json:"submittedAt"`
}

// GradeResponse is the grading output contract.
type GradeResponse struct {
	Score        float64             `json:"score"`
	MaxScore     float64             `json:"maxScore"`
	Feedback     string              `json:"feedback"`
	AiEvaluation AiEvaluationPayload `json:"aiEvaluation"`
}

// AiEvaluationPayload mirrors the evaluation record for API consumers.
type AiEvaluationPayload struct {
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

// TeacherOverrideRequest layers a manual score on an existing evaluation.
type TeacherOverrideRequest struct {
	TeacherID    string              `json:"teacherId" validate:"required"`
	Score        float64             `json:"score" validate:"gte=0,lte=10"`
	AiEvaluation AiEvaluationPayload `json:"aiEvaluation" validate:"required"`
}

// ToEvaluationInput maps the request onto an engine input, filling in the
// submission timestamp when the caller omitted it.
func (r GradeRequest) ToEvaluationInput(fallbackSubmittedAt time.Time) grader.EvaluationInput {
	files := make([]models.ProjectFile, 0, len(r.Files))
	for _, file := range r.Files {
		files = append(files, models.ProjectFile{
			Name:    file.Name,
			Content: file.Content,
			Type:    file.Type,
			Path:    file.Path,
		})
	}

	var execution *models.ExecutionResult
	if r.ExecutionResult != nil {
		execution = &models.ExecutionResult{
			Stdout:   r.ExecutionResult.Stdout,
			Stderr:   r.ExecutionResult.Stderr,
			ExitCode: r.ExecutionResult.ExitCode,
		}
	}

	submittedAt := fallbackSubmittedAt
	if r.SubmittedAt != nil {
		submittedAt = *r.SubmittedAt
	}

	return grader.EvaluationInput{
		Problem: models.Problem{
			Title:             r.Problem.Title,
			Description:       r.Problem.Description,
			ExpectedOutput:    r.Problem.ExpectedOutput,
			Hints:             r.Problem.Hints,
			HelperLinks:       r.Problem.HelperLinks,
			MaxMarks:          r.Problem.MaxMarks,
			DueAt:             r.Problem.DueAt,
			LatePenaltyPerDay: r.Problem.LatePenaltyPerDay,
		},
		Files:           files,
		ExecutionResult: execution,
		SubmittedAt:     submittedAt,
	}
}

// NewGradeResponse builds the output contract from an engine outcome.
func NewGradeResponse(outcome grader.EvaluationOutcome) GradeResponse {
	return GradeResponse{
		Score:        outcome.Score,
		MaxScore:     grader.MaxScore,
		Feedback:     outcome.Feedback,
		AiEvaluation: NewAiEvaluationPayload(outcome.Evaluation),
	}
}

// NewAiEvaluationPayload converts an evaluation model into its DTO.
func NewAiEvaluationPayload(evaluation models.AiEvaluation) AiEvaluationPayload {
	return AiEvaluationPayload{
		Provider:             evaluation.Provider,
		Model:                evaluation.Model,
		CodeQualityScore:     evaluation.CodeQualityScore,
		OutputMatchScore:     evaluation.OutputMatchScore,
		RawScore:             evaluation.RawScore,
		LatePenalty:          evaluation.LatePenalty,
		FinalScore:           evaluation.FinalScore,
		DaysLate:             evaluation.DaysLate,
		DueAt:                evaluation.DueAt,
		SubmittedAt:          evaluation.SubmittedAt,
		Reasoning:            evaluation.Reasoning,
		OutputVerification:   evaluation.OutputVerification,
		OutputMatched:        evaluation.OutputMatched,
		MistakeFlags:         evaluation.MistakeFlags,
		SuspectedCheating:    evaluation.SuspectedCheating,
		CheatingReason:       evaluation.CheatingReason,
		Issues:               evaluation.Issues,
		TeacherOverride:      evaluation.TeacherOverride,
		TeacherOverrideBy:    evaluation.TeacherOverrideBy,
		TeacherOverrideAt:    evaluation.TeacherOverrideAt,
		TeacherOverrideScore: evaluation.TeacherOverrideScore,
	}
}

// ToModel converts the payload back into the evaluation model.
func (p AiEvaluationPayload) ToModel() models.AiEvaluation {
	return models.AiEvaluation{
		Provider:             p.Provider,
		Model:                p.Model,
		CodeQualityScore:     p.CodeQualityScore,
		OutputMatchScore:     p.OutputMatchScore,
		RawScore:             p.RawScore,
		LatePenalty:          p.LatePenalty,
		FinalScore:           p.FinalScore,
		DaysLate:             p.DaysLate,
		DueAt:                p.DueAt,
		SubmittedAt:          p.SubmittedAt,
		Reasoning:            p.Reasoning,
		OutputVerification:   p.OutputVerification,
		OutputMatched:        p.OutputMatched,
		MistakeFlags:         p.MistakeFlags,
		SuspectedCheating:    p.SuspectedCheating,
		CheatingReason:       p.CheatingReason,
		Issues:               p.Issues,
		TeacherOverride:      p.TeacherOverride,
		TeacherOverrideBy:    p.TeacherOverrideBy,
		TeacherOverrideAt:    p.TeacherOverrideAt,
		TeacherOverrideScore: p.TeacherOverrideScore,
	}
}
