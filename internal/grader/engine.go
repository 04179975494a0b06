package grader

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/campuslab/grader-go-api/internal/models"
	"github.com/campuslab/grader-go-api/pkg/ai"
)

const (
	heuristicModelName = "local"
	defaultFileName    = "main.txt"
	feedbackIssueLimit = 3
)

// EvaluationInput is one self-contained grading request.
type EvaluationInput struct {
	Problem         models.Problem
	Files           []models.ProjectFile
	ExecutionResult *models.ExecutionResult
	SubmittedAt     time.Time
}

// EvaluationOutcome is the engine's single return value: the final score, a
// human-readable feedback text and the full evaluation record.
type EvaluationOutcome struct {
	Score      float64
	Feedback   string
	Evaluation models.AiEvaluation
}

// Engine reconciles heuristic signals, output verification, cheating
// detection, an optional remote model verdict and lateness into one score.
type Engine struct {
	remote ai.Grader
	model  string
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewEngine constructs the evaluation engine. The remote grader may be nil;
// grading then runs fully on the heuristic path.
func NewEngine(remote ai.Grader, model string, logger zerolog.Logger) *Engine {
	if model == "" {
		model = ai.DefaultModel
	}
	return &Engine{
		remote: remote,
		model:  model,
		logger: logger.With().Str("component", "grading_engine").Logger(),
		tracer: otel.Tracer("github.com/campuslab/grader-go-api/internal/grader"),
	}
}

// Evaluate runs the full grading pipeline. It never fails: every sub-step
// failure degrades to the heuristic path or a neutral default.
func (e *Engine) Evaluate(ctx context.Context, input EvaluationInput) EvaluationOutcome {
	ctx, span := e.tracer.Start(ctx, "grading.evaluate")
	defer span.End()

	files := NormalizeFiles(input.Files)

	verification := EvaluateOutputVerification(input.Problem, files, input.ExecutionResult)
	outputMatchScore := verification.Score
	outputMatched := verification.Matched
	mistakeFlags := append([]string(nil), verification.Flags...)

	signals := DetectCheating(input.Problem, files)
	suspectedCheating := signals.Suspected
	cheatingReason := signals.Reason
	if signals.PrintOnly {
		mistakeFlags = append(mistakeFlags, flagPrintOnly)
	}
	if signals.HardcodedExpected {
		mistakeFlags = append(mistakeFlags, flagHardcodedOutput)
	}

	provider := models.ProviderHeuristic
	model := heuristicModelName
	codeQualityScore := 0.0
	reasoning := ""
	var issues []string

	remoteResult, remoteErr := e.callRemote(ctx, input, files)
	if remoteErr != nil {
		codeQualityScore = HeuristicCodeScore(files)
		reasoning = fmt.Sprintf("Fallback grading used because the AI call failed: %s", remoteErr)
	} else {
		provider = models.ProviderGemini
		model = e.model
		if isFinite(remoteResult.CodeQualityScore) {
			codeQualityScore = clampScore(remoteResult.CodeQualityScore)
		} else {
			codeQualityScore = HeuristicCodeScore(files)
		}
		reasoning = remoteResult.Reasoning
		issues = append(issues, remoteResult.Issues...)
		mistakeFlags = append(mistakeFlags, remoteResult.MistakeFlags...)
		suspectedCheating = suspectedCheating || remoteResult.SuspectedCheating
		if remoteResult.CheatingReason != "" {
			cheatingReason = remoteResult.CheatingReason
		}
	}

	if suspectedCheating {
		outputMatchScore = math.Min(outputMatchScore, CheatingOutputCap)
		codeQualityScore = math.Min(codeQualityScore, CheatingCodeCap)
		issues = append(issues, issueCheatingCapNote)
	}

	rawScore := round1(outputMatchScore*OutputWeight + codeQualityScore*CodeWeight)
	if !outputMatched {
		rawScore = math.Min(rawScore, UnmatchedRawCap)
	}
	if suspectedCheating {
		rawScore = math.Min(rawScore, CheatingRawCap)
	}

	lateness := ComputeLateness(input.Problem, input.SubmittedAt)
	finalScore := round1(clampScore(rawScore - lateness.LatePenalty))

	// Perfect, on-time, verified submissions always receive full marks.
	if outputMatched && lateness.DaysLate == 0 && !suspectedCheating {
		rawScore = MaxScore
		finalScore = MaxScore
	}

	mistakeFlags = dedupeAndCap(mistakeFlags, MaxFlagEntries)
	issues = dedupeAndCap(issues, MaxFlagEntries)

	evaluation := models.AiEvaluation{
		Provider:           provider,
		Model:              model,
		CodeQualityScore:   round1(codeQualityScore),
		OutputMatchScore:   round1(outputMatchScore),
		RawScore:           rawScore,
		LatePenalty:        lateness.LatePenalty,
		FinalScore:         finalScore,
		DaysLate:           lateness.DaysLate,
		DueAt:              lateness.DueAt,
		SubmittedAt:        input.SubmittedAt,
		Reasoning:          reasoning,
		OutputVerification: verification.Summary,
		OutputMatched:      outputMatched,
		MistakeFlags:       mistakeFlags,
		SuspectedCheating:  suspectedCheating,
		CheatingReason:     cheatingReason,
		Issues:             issues,
	}

	span.SetAttributes(
		attribute.String("grading.provider", provider),
		attribute.Float64("grading.final_score", finalScore),
		attribute.Bool("grading.suspected_cheating", suspectedCheating),
	)
	e.logger.Info().
		Str("provider", provider).
		Float64("final_score", finalScore).
		Int("days_late", lateness.DaysLate).
		Bool("output_matched", outputMatched).
		Bool("suspected_cheating", suspectedCheating).
		Msg("submission graded")

	return EvaluationOutcome{
		Score:      finalScore,
		Feedback:   buildFeedback(evaluation),
		Evaluation: evaluation,
	}
}

func (e *Engine) callRemote(ctx context.Context, input EvaluationInput, files []models.ProjectFile) (ai.GradeResult, error) {
	if e.remote == nil {
		return ai.GradeResult{}, ai.ErrNotConfigured
	}

	sources := make([]ai.SourceFile, 0, len(files))
	for _, file := range files {
		sources = append(sources, ai.SourceFile{Path: file.Path, Content: file.Content})
	}

	gradeInput := ai.GradeInput{
		Title:          input.Problem.Title,
		Description:    input.Problem.Description,
		ExpectedOutput: input.Problem.ExpectedOutput,
		Hints:          input.Problem.Hints,
		Files:          sources,
	}
	if input.ExecutionResult != nil {
		gradeInput.Stdout = input.ExecutionResult.Stdout
		gradeInput.Stderr = input.ExecutionResult.Stderr
		gradeInput.ExitCode = input.ExecutionResult.ExitCode
	}

	return e.remote.Grade(ctx, gradeInput)
}

// NormalizeFiles keeps file-typed entries only and fills in defaults for
// missing names and paths. Entries with an empty type count as files.
func NormalizeFiles(files []models.ProjectFile) []models.ProjectFile {
	normalized := make([]models.ProjectFile, 0, len(files))
	for _, file := range files {
		if file.Type != "" && file.Type != models.ProjectFileTypeFile {
			continue
		}
		name := file.Name
		if name == "" {
			name = defaultFileName
		}
		path := file.Path
		if path == "" {
			path = name
		}
		normalized = append(normalized, models.ProjectFile{
			Name:    name,
			Content: file.Content,
			Type:    models.ProjectFileTypeFile,
			Path:    path,
		})
	}
	return normalized
}

func buildFeedback(evaluation models.AiEvaluation) string {
	lines := []string{
		fmt.Sprintf("AI score: %s/10", formatScore(evaluation.FinalScore)),
		fmt.Sprintf("Output verification: %s/10", formatScore(evaluation.OutputMatchScore)),
		fmt.Sprintf("Code quality: %s/10", formatScore(evaluation.CodeQualityScore)),
	}

	if evaluation.DaysLate > 0 {
		lines = append(lines, fmt.Sprintf("Late penalty: -%s (%d day(s) late)", formatScore(evaluation.LatePenalty), evaluation.DaysLate))
	} else {
		lines = append(lines, "Submission timing: on time")
	}

	if evaluation.Reasoning != "" {
		lines = append(lines, fmt.Sprintf("Review: %s", evaluation.Reasoning))
	}
	if len(evaluation.MistakeFlags) > 0 {
		lines = append(lines, fmt.Sprintf("Mistake flags: %s", strings.Join(evaluation.MistakeFlags, "; ")))
	}
	if evaluation.SuspectedCheating {
		lines = append(lines, fmt.Sprintf("Cheating suspicion: %s", evaluation.CheatingReason))
	}
	if len(evaluation.Issues) > 0 {
		top := evaluation.Issues
		if len(top) > feedbackIssueLimit {
			top = top[:feedbackIssueLimit]
		}
		lines = append(lines, fmt.Sprintf("Key issues: %s", strings.Join(top, "; ")))
	}

	return strings.Join(lines, "\n")
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func dedupeAndCap(entries []string, limit int) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
		if len(out) == limit {
			break
		}
	}
	return out
}
