package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for the Gemini grading client.
const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout     = 20 * time.Second
	DefaultTemperature = 0.1

	// CodeBundleLimit bounds the characters of student code embedded into a
	// prompt; anything beyond it is cut and marked.
	CodeBundleLimit = 26000

	truncationMarker = "\n\n// [truncated]"
)

// ErrNotConfigured is returned when no API credential is available. It is a
// valid runtime condition, not a startup failure.
var ErrNotConfigured = errors.New("gemini api key is not configured")

var (
	gradeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grader",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of remote grading requests",
	}, []string{"model"})

	gradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grader",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of remote grading failures",
	}, []string{"model"})
)

// GeminiConfig defines configuration options for the Gemini grading client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Timeout     time.Duration
	Temperature float32
	BundleLimit int
	Logger      zerolog.Logger
}

// GeminiGrader implements Grader against the Gemini generateContent API. The
// client makes exactly one attempt per call; fallback policy belongs to the
// caller.
type GeminiGrader struct {
	httpClient *http.Client
	cfg        GeminiConfig
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewGeminiGrader builds a grading client. A missing API key is allowed; the
// client then fails every Grade call with ErrNotConfigured.
func NewGeminiGrader(cfg GeminiConfig) *GeminiGrader {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.BundleLimit <= 0 {
		cfg.BundleLimit = CodeBundleLimit
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &GeminiGrader{
		httpClient: &http.Client{},
		cfg:        cfg,
		tracer:     otel.Tracer("github.com/campuslab/grader-go-api/pkg/ai/gemini"),
		logger:     logger.With().Str("component", "gemini_grader").Logger(),
	}
}

// Model returns the configured model identifier.
func (g *GeminiGrader) Model() string {
	return g.cfg.Model
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Grade sends one grading request and parses the JSON verdict. Any failure —
// missing credential, transport error, timeout, non-2xx status or an
// unparsable reply — is returned as an error with no partial result.
func (g *GeminiGrader) Grade(parent context.Context, input GradeInput) (GradeResult, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return GradeResult{}, ErrNotConfigured
	}

	ctx, span := g.tracer.Start(parent, "gemini.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: g.buildPrompt(input)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:      g.cfg.Temperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return GradeResult{}, fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.Endpoint, "/"),
		url.PathEscape(g.cfg.Model),
		url.QueryEscape(g.cfg.APIKey),
	)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return GradeResult{}, fmt.Errorf("build gemini request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := g.httpClient.Do(request)
	gradeDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return GradeResult{}, g.fail(span, fmt.Errorf("gemini request failed: %w", err))
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return GradeResult{}, g.fail(span, fmt.Errorf("read gemini response: %w", err))
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return GradeResult{}, g.fail(span, errors.New(remoteErrorMessage(payload, response.StatusCode)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return GradeResult{}, g.fail(span, fmt.Errorf("decode gemini response: %w", err))
	}

	text := candidateText(decoded)
	verdict, err := parseVerdict(text)
	if err != nil {
		return GradeResult{}, g.fail(span, err)
	}

	span.SetAttributes(attribute.Bool("gemini.suspected_cheating", verdict.SuspectedCheating))
	return verdict, nil
}

func (g *GeminiGrader) fail(span trace.Span, err error) error {
	gradeFailures.WithLabelValues(g.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	g.logger.Warn().Err(err).Msg("remote grading failed")
	return err
}

func (g *GeminiGrader) buildPrompt(input GradeInput) string {
	exitCode := "unknown"
	if input.ExitCode != nil {
		exitCode = fmt.Sprintf("%d", *input.ExitCode)
	}

	lines := []string{
		"You are evaluating a student lab submission.",
		"Return ONLY JSON with keys:",
		"{",
		`  "codeQualityScore": number(0-10),`,
		`  "reasoning": string,`,
		`  "issues": string[],`,
		`  "suspectedCheating": boolean,`,
		`  "cheatingReason": string,`,
		`  "mistakeFlags": string[]`,
		"}",
		"",
		"Scoring rules:",
		"- Judge code quality, structure and completeness only.",
		"- Do NOT score output matching; it is verified separately.",
		"- Flag submissions that hardcode the expected output instead of computing it.",
		"",
		fmt.Sprintf("Problem title: %s", input.Title),
		fmt.Sprintf("Problem description: %s", input.Description),
		fmt.Sprintf("Expected output: %s", input.ExpectedOutput),
		fmt.Sprintf("Hints: %s", strings.Join(input.Hints, " | ")),
		"",
		"Execution result (if present):",
		fmt.Sprintf("stdout: %s", input.Stdout),
		fmt.Sprintf("stderr: %s", input.Stderr),
		fmt.Sprintf("exitCode: %s", exitCode),
		"",
		"Student files:",
		buildCodeBundle(input.Files, g.cfg.BundleLimit),
	}

	return strings.Join(lines, "\n")
}

func buildCodeBundle(files []SourceFile, limit int) string {
	sections := make([]string, 0, len(files))
	for _, file := range files {
		sections = append(sections, fmt.Sprintf("// File: %s\n%s", file.Path, file.Content))
	}

	bundle := strings.Join(sections, "\n\n")
	if len(bundle) <= limit {
		return bundle
	}
	return bundle[:limit] + truncationMarker
}

func remoteErrorMessage(payload []byte, status int) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error.Message != "" {
			return body.Error.Message
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("gemini request failed (%d)", status)
}

func candidateText(response generateResponse) string {
	if len(response.Candidates) == 0 {
		return ""
	}
	parts := make([]string, 0, len(response.Candidates[0].Content.Parts))
	for _, part := range response.Candidates[0].Content.Parts {
		parts = append(parts, part.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// parseVerdict accepts either a clean JSON document or one embedded inside
// surrounding text, and coerces fields defensively.
func parseVerdict(text string) (GradeResult, error) {
	parsed, ok := parseJSONObject(text)
	if !ok {
		return GradeResult{}, errors.New("gemini returned non-JSON content")
	}

	return GradeResult{
		CodeQualityScore:  toNumber(parsed["codeQualityScore"]),
		Reasoning:         toString(parsed["reasoning"]),
		Issues:            toStringSlice(parsed["issues"]),
		SuspectedCheating: toBool(parsed["suspectedCheating"]),
		CheatingReason:    toString(parsed["cheatingReason"]),
		MistakeFlags:      toStringSlice(parsed["mistakeFlags"]),
	}, nil
}

func parseJSONObject(text string) (map[string]interface{}, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed, true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

func toNumber(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return math.NaN()
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func toBool(value interface{}) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return false
}

func toStringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
