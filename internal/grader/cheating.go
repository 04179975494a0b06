package grader

import (
	"regexp"
	"strings"

	"github.com/campuslab/grader-go-api/internal/models"
)

const (
	shortCodeLineLimit   = 10
	hardcodedMinLength   = 12
	hardcodedMinWords    = 4
	hardcodedTokenProbe  = 6
	cheatingReasonFixed  = "Expected output appears hardcoded without supporting logic in a minimal submission."
	flagPrintOnly        = "Print-only implementation without core logic"
	flagHardcodedOutput  = "Expected output appears hardcoded in source"
	issueCheatingCapNote = "Cheating suspicion raised; scores capped pending teacher review"
)

var (
	printRe = regexp.MustCompile(`\bprint\b[\s(]|console\.log|printf\s*\(|cout\s*<<|system\.out|puts\s`)
	logicRe = regexp.MustCompile(`\b(for|while|if|switch)\b[\s(]|function\s+\w+|\w+\s*=>|\bdef\s+\w+|\bfunc\s+\w+|\blambda\b|\bclass\s+\w+`)
	inputRe = regexp.MustCompile(`\binput\s*\(|scanf\s*\(|cin\s*>>|readline|read_line|stdin|prompt\s*\(`)
)

// CheatingSignals describes the pattern evidence extracted from a submission.
type CheatingSignals struct {
	Suspected         bool
	Reason            string
	HasPrint          bool
	HasLogic          bool
	HasInput          bool
	HardcodedExpected bool
	PrintOnly         bool
	ShortCode         bool
}

// DetectCheating flags submissions that reproduce the expected output
// verbatim without any logic that could have produced it.
func DetectCheating(problem models.Problem, files []models.ProjectFile) CheatingSignals {
	code := joinFileContents(files)
	lowerCode := strings.ToLower(code)

	signals := CheatingSignals{
		HasPrint: printRe.MatchString(lowerCode),
		HasLogic: logicRe.MatchString(lowerCode),
		HasInput: inputRe.MatchString(lowerCode),
	}
	signals.HardcodedExpected = hardcodedExpected(problem.ExpectedOutput, lowerCode)
	signals.ShortCode = countNonBlankLines(code) <= shortCodeLineLimit
	signals.PrintOnly = signals.HasPrint && !signals.HasLogic && !signals.HasInput

	if signals.HardcodedExpected && !signals.HasLogic && (signals.PrintOnly || signals.ShortCode) {
		signals.Suspected = true
		signals.Reason = cheatingReasonFixed
	}

	return signals
}

// hardcodedExpected is true when the normalized rubric text appears verbatim
// in the code, or when the code contains every one of the rubric's leading
// significant tokens.
func hardcodedExpected(expectedOutput, lowerCode string) bool {
	normalized := Normalize(expectedOutput)
	if normalized == "" {
		return false
	}

	normalizedCode := Normalize(lowerCode)
	if len(normalized) >= hardcodedMinLength && strings.Contains(normalizedCode, normalized) {
		return true
	}

	words := strings.Fields(normalized)
	if len(words) < hardcodedMinWords {
		return false
	}

	significant := make([]string, 0, hardcodedTokenProbe)
	for _, word := range words {
		if len(word) < keywordMinLength {
			continue
		}
		significant = append(significant, word)
		if len(significant) == hardcodedTokenProbe {
			break
		}
	}
	if len(significant) == 0 {
		return false
	}

	for _, word := range significant {
		if !strings.Contains(normalizedCode, word) {
			return false
		}
	}
	return true
}

func countNonBlankLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
