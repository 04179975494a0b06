package grader

import (
	"math"
	"regexp"
	"strings"

	"github.com/campuslab/grader-go-api/internal/models"
)

// Heuristic scoring knobs for the network-free fallback path.
const (
	coverageBase = 2.0
	coverageSpan = 8.0

	mixedSignalPenalty = 0.8
	stderrOnlyPenalty  = 1.5

	codeLengthDivisor = 1200.0
	codeLengthCap     = 4.0

	runtimeErrorPenalty  = 3.0
	stderrWarningPenalty = 1.0
	missingOutputPenalty = 1.5
	lowCoverageThreshold = 0.3

	// descriptionCoverageWeight discounts the problem description when it
	// stands in for a missing expected-output rubric term.
	descriptionCoverageWeight = 0.8
)

var (
	controlFlowRe = regexp.MustCompile(`\b(for|while|if|switch)\b[\s(]`)
	functionRe    = regexp.MustCompile(`function\s+\w+|\w+\s*=>|\bdef\s+\w+|\bfunc\s+\w+|\blambda\b`)
	commentRe     = regexp.MustCompile(`//|/\*|(^|\n)\s*#`)
)

// OutputVerification is the refined rubric check used by the orchestrator.
type OutputVerification struct {
	Score   float64
	Matched bool
	Flags   []string
	Summary string
}

// HeuristicOutputScore estimates how well the submission satisfied the
// expected-output rubric without calling any remote model.
func HeuristicOutputScore(problem models.Problem, files []models.ProjectFile, execution *models.ExecutionResult) float64 {
	expected := strings.ToLower(strings.TrimSpace(problem.ExpectedOutput))
	if expected == "" || len(ExtractKeywords(expected)) == 0 {
		return NeutralOutputScore
	}

	stdout, stderr := executionStreams(execution)
	codeText := strings.ToLower(joinFileContents(files))

	coverage := math.Max(Coverage(expected, stdout), Coverage(expected, codeText))
	score := coverageBase + coverage*coverageSpan

	if stdout != "" && stderr != "" {
		score -= mixedSignalPenalty
	}
	if stderr != "" && stdout == "" {
		score -= stderrOnlyPenalty
	}

	return round1(clampScore(score))
}

// HeuristicCodeScore estimates code quality from four cheap signals over the
// concatenated file contents.
func HeuristicCodeScore(files []models.ProjectFile) float64 {
	if len(files) == 0 {
		return 0
	}

	fullText := joinFileContents(files)
	score := clamp(float64(len(fullText))/codeLengthDivisor, 0, codeLengthCap)

	if controlFlowRe.MatchString(fullText) {
		score += 2
	} else {
		score += 0.5
	}
	if functionRe.MatchString(fullText) {
		score += 2
	} else {
		score += 0.5
	}
	if commentRe.MatchString(fullText) {
		score += 1
	} else {
		score += 0.2
	}

	return round1(clampScore(score))
}

// EvaluateOutputVerification checks the submission output and code against
// the expected-output rubric, falling back to the problem description when no
// rubric exists. With neither, the result is neutral and counts as matched.
func EvaluateOutputVerification(problem models.Problem, files []models.ProjectFile, execution *models.ExecutionResult) OutputVerification {
	rubric := strings.TrimSpace(problem.ExpectedOutput)
	if rubric == "" {
		rubric = strings.TrimSpace(problem.Description)
	}
	if rubric == "" {
		return OutputVerification{
			Score:   NeutralOutputScore,
			Matched: true,
			Summary: "No expected output or description available; applied a neutral verification score.",
		}
	}

	stdout, stderr := executionStreams(execution)
	codeText := strings.ToLower(joinFileContents(files))

	best := math.Max(Coverage(rubric, stdout), Coverage(rubric, codeText))
	best = math.Max(best, descriptionCoverageWeight*Coverage(problem.Description, stdout))

	score := coverageBase + best*coverageSpan
	var flags []string

	if stderr != "" && stdout == "" {
		score -= runtimeErrorPenalty
		flags = append(flags, "Runtime/compile error output detected")
	} else if stderr != "" {
		score -= stderrWarningPenalty
		flags = append(flags, "stderr warnings")
	}
	if stdout == "" && best < lowCoverageThreshold {
		score -= missingOutputPenalty
		flags = append(flags, "Expected output not observed")
	}

	score = round1(clampScore(score))
	matched := score >= OutputMatchThreshold

	summary := "Expected output markers were found in the program output or source."
	if !matched {
		summary = "Expected output could not be verified against the program output or source."
	}

	return OutputVerification{Score: score, Matched: matched, Flags: flags, Summary: summary}
}

func joinFileContents(files []models.ProjectFile) string {
	parts := make([]string, 0, len(files))
	for _, file := range files {
		parts = append(parts, file.Content)
	}
	return strings.Join(parts, "\n")
}

func executionStreams(execution *models.ExecutionResult) (stdout, stderr string) {
	if execution == nil {
		return "", ""
	}
	return strings.ToLower(strings.TrimSpace(execution.Stdout)), strings.ToLower(strings.TrimSpace(execution.Stderr))
}
