package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/campuslab/grader-go-api/internal/dto"
	"github.com/campuslab/grader-go-api/internal/grader"
)

// ErrInvalidOverrideScore mirrors the engine's override validation for
// handler error mapping.
var ErrInvalidOverrideScore = grader.ErrInvalidOverrideScore

// ErrMissingEvaluation indicates an override request without a prior
// evaluation record to annotate.
var ErrMissingEvaluation = errors.New("evaluation record is required")

// EvaluationEngine is the grading pipeline the service drives. It never
// fails; degraded grading is reflected inside the outcome.
type EvaluationEngine interface {
	Evaluate(ctx context.Context, input grader.EvaluationInput) grader.EvaluationOutcome
}

// GradingService exposes grading operations at the submission boundary.
type GradingService interface {
	Grade(ctx context.Context, payload dto.GradeRequest) (dto.GradeResponse, error)
	Override(ctx context.Context, payload dto.TeacherOverrideRequest) (dto.AiEvaluationPayload, error)
}

type gradingService struct {
	engine    EvaluationEngine
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(engine EvaluationEngine, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		engine:    engine,
		validator: validate,
		logger:    logger.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, payload dto.GradeRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/campuslab/grader-go-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.run")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	input := payload.ToEvaluationInput(s.now())
	outcome := s.engine.Evaluate(ctx, input)

	span.SetAttributes(
		attribute.String("grading.provider", outcome.Evaluation.Provider),
		attribute.Float64("grading.score", outcome.Score),
	)

	return dto.NewGradeResponse(outcome), nil
}

func (s *gradingService) Override(ctx context.Context, payload dto.TeacherOverrideRequest) (dto.AiEvaluationPayload, error) {
	tracer := otel.Tracer("github.com/campuslab/grader-go-api/internal/service/grading")
	_, span := tracer.Start(ctx, "grading.override")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AiEvaluationPayload{}, err
	}

	evaluation := payload.AiEvaluation.ToModel()
	if evaluation.Provider == "" {
		err := ErrMissingEvaluation
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing_evaluation")
		return dto.AiEvaluationPayload{}, err
	}

	overridden, err := grader.ApplyTeacherOverride(evaluation, payload.TeacherID, payload.Score, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "override_rejected")
		return dto.AiEvaluationPayload{}, err
	}

	s.logger.Info().
		Str("teacher_id", payload.TeacherID).
		Float64("override_score", payload.Score).
		Msg("evaluation overridden")

	span.SetAttributes(attribute.Float64("grading.override_score", payload.Score))
	return dto.NewAiEvaluationPayload(overridden), nil
}
