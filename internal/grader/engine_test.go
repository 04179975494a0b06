package grader

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuslab/grader-go-api/internal/models"
	"github.com/campuslab/grader-go-api/pkg/ai"
)

type stubRemote struct {
	result   ai.GradeResult
	err      error
	gotInput ai.GradeInput
	calls    int
}

func (s *stubRemote) Grade(_ context.Context, input ai.GradeInput) (ai.GradeResult, error) {
	s.calls++
	s.gotInput = input
	return s.result, s.err
}

func schedulingProblem() models.Problem {
	return models.Problem{
		Title:          "FCFS Scheduling",
		Description:    "Compute the average waiting time and turnaround time for each process.",
		ExpectedOutput: "Average waiting time and turnaround time",
	}
}

func logicFiles() []models.ProjectFile {
	content := "for (i = 0; i < n; i++) { total += queue[i]; }\n// accumulate per-process stats\nfunction stats(n) { return total / n; }"
	return fileOf(content)
}

func matchedExecution() *models.ExecutionResult {
	return &models.ExecutionResult{Stdout: "Average waiting time: 4.2\nTurnaround time: 7.1"}
}

func TestEvaluateHeuristicPerfectSubmission(t *testing.T) {
	engine := NewEngine(nil, "", zerolog.Nop())

	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         schedulingProblem(),
		Files:           logicFiles(),
		ExecutionResult: matchedExecution(),
		SubmittedAt:     time.Now(),
	})

	require.InDelta(t, MaxScore, outcome.Score, 1e-9)
	require.Equal(t, models.ProviderHeuristic, outcome.Evaluation.Provider)
	require.Equal(t, heuristicModelName, outcome.Evaluation.Model)
	require.InDelta(t, MaxScore, outcome.Evaluation.RawScore, 1e-9)
	require.InDelta(t, MaxScore, outcome.Evaluation.FinalScore, 1e-9)
	require.True(t, outcome.Evaluation.OutputMatched)
	require.False(t, outcome.Evaluation.SuspectedCheating)
	require.Contains(t, outcome.Evaluation.Reasoning, "Fallback grading used because the AI call failed")
	require.Contains(t, outcome.Feedback, "AI score: 10/10")
	require.Contains(t, outcome.Feedback, "Submission timing: on time")
}

func TestEvaluateCapsCheatingSubmission(t *testing.T) {
	engine := NewEngine(nil, "", zerolog.Nop())

	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         schedulingProblem(),
		Files:           fileOf("print average waiting time turnaround time"),
		ExecutionResult: &models.ExecutionResult{Stdout: "Average waiting time and turnaround time"},
		SubmittedAt:     time.Now(),
	})

	evaluation := outcome.Evaluation
	require.True(t, evaluation.SuspectedCheating)
	require.Equal(t, cheatingReasonFixed, evaluation.CheatingReason)
	require.InDelta(t, CheatingOutputCap, evaluation.OutputMatchScore, 1e-9)
	require.InDelta(t, 1.2, evaluation.CodeQualityScore, 1e-9)
	require.InDelta(t, 2.6, evaluation.RawScore, 1e-9)
	require.InDelta(t, 2.6, evaluation.FinalScore, 1e-9)
	require.LessOrEqual(t, evaluation.FinalScore, CheatingRawCap)
	require.Contains(t, evaluation.MistakeFlags, flagPrintOnly)
	require.Contains(t, evaluation.MistakeFlags, flagHardcodedOutput)
	require.Contains(t, evaluation.Issues, issueCheatingCapNote)
	require.Contains(t, outcome.Feedback, "Cheating suspicion:")
}

func TestEvaluateLateSubmissionSubtractsPenalty(t *testing.T) {
	engine := NewEngine(nil, "", zerolog.Nop())

	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	perDay := 0.5
	problem := schedulingProblem()
	problem.DueAt = &due
	problem.LatePenaltyPerDay = &perDay

	files := logicFiles()
	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         problem,
		Files:           files,
		ExecutionResult: matchedExecution(),
		SubmittedAt:     due.Add(50 * time.Hour),
	})

	evaluation := outcome.Evaluation
	require.Equal(t, 3, evaluation.DaysLate)
	require.InDelta(t, 1.5, evaluation.LatePenalty, 1e-9)

	codeScore := HeuristicCodeScore(files)
	wantRaw := round1(MaxScore*OutputWeight + codeScore*CodeWeight)
	require.InDelta(t, wantRaw, evaluation.RawScore, 1e-9)
	require.InDelta(t, round1(clampScore(wantRaw-1.5)), evaluation.FinalScore, 1e-9)
	require.Contains(t, outcome.Feedback, "Late penalty: -1.5 (3 day(s) late)")
}

func TestEvaluateMergesRemoteVerdict(t *testing.T) {
	stub := &stubRemote{result: ai.GradeResult{
		CodeQualityScore: 9.2,
		Reasoning:        "Clean implementation with descriptive names.",
		Issues:           []string{"Minor naming inconsistency"},
		MistakeFlags:     []string{"Magic numbers"},
	}}
	engine := NewEngine(stub, "gemini-2.0-flash", zerolog.Nop())

	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         schedulingProblem(),
		Files:           logicFiles(),
		ExecutionResult: matchedExecution(),
		SubmittedAt:     time.Now(),
	})

	evaluation := outcome.Evaluation
	require.Equal(t, 1, stub.calls)
	require.Equal(t, "FCFS Scheduling", stub.gotInput.Title)
	require.Len(t, stub.gotInput.Files, 1)
	require.Equal(t, models.ProviderGemini, evaluation.Provider)
	require.Equal(t, "gemini-2.0-flash", evaluation.Model)
	require.InDelta(t, 9.2, evaluation.CodeQualityScore, 1e-9)
	require.Equal(t, "Clean implementation with descriptive names.", evaluation.Reasoning)
	require.Contains(t, evaluation.Issues, "Minor naming inconsistency")
	require.Contains(t, evaluation.MistakeFlags, "Magic numbers")
	// Matched, on-time, no cheating: the perfect-score rule still applies.
	require.InDelta(t, MaxScore, evaluation.FinalScore, 1e-9)
}

func TestEvaluateRemoteNaNFallsBackToHeuristicCodeScore(t *testing.T) {
	stub := &stubRemote{result: ai.GradeResult{CodeQualityScore: math.NaN(), Reasoning: "score missing"}}
	engine := NewEngine(stub, "gemini-2.0-flash", zerolog.Nop())

	files := logicFiles()
	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         schedulingProblem(),
		Files:           files,
		ExecutionResult: matchedExecution(),
		SubmittedAt:     time.Now(),
	})

	require.Equal(t, models.ProviderGemini, outcome.Evaluation.Provider)
	require.InDelta(t, HeuristicCodeScore(files), outcome.Evaluation.CodeQualityScore, 1e-9)
}

func TestEvaluateRemoteCheatingVerdictCapsScores(t *testing.T) {
	stub := &stubRemote{result: ai.GradeResult{
		CodeQualityScore:  9.0,
		SuspectedCheating: true,
		CheatingReason:    "Output appears copied from the rubric.",
	}}
	engine := NewEngine(stub, "gemini-2.0-flash", zerolog.Nop())

	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         schedulingProblem(),
		Files:           logicFiles(),
		ExecutionResult: matchedExecution(),
		SubmittedAt:     time.Now(),
	})

	evaluation := outcome.Evaluation
	require.True(t, evaluation.SuspectedCheating)
	require.Equal(t, "Output appears copied from the rubric.", evaluation.CheatingReason)
	require.InDelta(t, CheatingOutputCap, evaluation.OutputMatchScore, 1e-9)
	require.InDelta(t, CheatingCodeCap, evaluation.CodeQualityScore, 1e-9)
	require.LessOrEqual(t, evaluation.FinalScore, CheatingRawCap)
}

func TestEvaluateUnmatchedOutputCapsRawScore(t *testing.T) {
	stub := &stubRemote{result: ai.GradeResult{CodeQualityScore: 10, Reasoning: "solid code"}}
	engine := NewEngine(stub, "gemini-2.0-flash", zerolog.Nop())

	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:         models.Problem{Title: "FCFS Scheduling", ExpectedOutput: "Average waiting time and turnaround time"},
		Files:           fileOf("for (i = 0; i < n; i++) { total += queue[i]; }"),
		ExecutionResult: &models.ExecutionResult{Stdout: "average: pending"},
		SubmittedAt:     time.Now(),
	})

	evaluation := outcome.Evaluation
	require.False(t, evaluation.OutputMatched)
	require.InDelta(t, 4.0, evaluation.OutputMatchScore, 1e-9)
	require.InDelta(t, UnmatchedRawCap, evaluation.RawScore, 1e-9)
	require.InDelta(t, UnmatchedRawCap, evaluation.FinalScore, 1e-9)
}

func TestEvaluateRemoteErrorFallsBackToHeuristic(t *testing.T) {
	stub := &stubRemote{err: errors.New("rate limited")}
	engine := NewEngine(stub, "gemini-2.0-flash", zerolog.Nop())

	outcome := engine.Evaluate(context.Background(), EvaluationInput{
		Problem:     schedulingProblem(),
		Files:       logicFiles(),
		SubmittedAt: time.Now(),
	})

	require.Equal(t, models.ProviderHeuristic, outcome.Evaluation.Provider)
	require.Equal(t, heuristicModelName, outcome.Evaluation.Model)
	require.Contains(t, outcome.Evaluation.Reasoning, "rate limited")
}

func TestEvaluateScoresStayInRangeWithOneDecimal(t *testing.T) {
	engine := NewEngine(nil, "", zerolog.Nop())

	inputs := []EvaluationInput{
		{Problem: schedulingProblem(), Files: nil, SubmittedAt: time.Now()},
		{Problem: models.Problem{}, Files: fileOf("x"), SubmittedAt: time.Now()},
		{Problem: schedulingProblem(), Files: fileOf("print average waiting time turnaround time"), SubmittedAt: time.Now()},
	}

	for _, input := range inputs {
		outcome := engine.Evaluate(context.Background(), input)
		for _, score := range []float64{
			outcome.Score,
			outcome.Evaluation.CodeQualityScore,
			outcome.Evaluation.OutputMatchScore,
			outcome.Evaluation.RawScore,
			outcome.Evaluation.FinalScore,
		} {
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, MaxScore)
			require.InDelta(t, round1(score), score, 1e-9)
		}
	}
}

func TestNormalizeFilesFillsDefaultsAndDropsFolders(t *testing.T) {
	files := []models.ProjectFile{
		{Content: "print('x')"},
		{Name: "src", Type: models.ProjectFileTypeFolder},
		{Name: "solution.py", Content: "pass", Type: models.ProjectFileTypeFile},
	}

	normalized := NormalizeFiles(files)
	require.Len(t, normalized, 2)
	require.Equal(t, defaultFileName, normalized[0].Name)
	require.Equal(t, defaultFileName, normalized[0].Path)
	require.Equal(t, models.ProjectFileTypeFile, normalized[0].Type)
	require.Equal(t, "solution.py", normalized[1].Path)
}

func TestDedupeAndCap(t *testing.T) {
	entries := []string{"a", " a ", "", "b", "a", "c"}
	require.Equal(t, []string{"a", "b", "c"}, dedupeAndCap(entries, 10))
	require.Equal(t, []string{"a", "b"}, dedupeAndCap(entries, 2))
}
