package grader

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuslab/grader-go-api/internal/models"
)

func TestComputeLatenessWithoutDueDate(t *testing.T) {
	result := ComputeLateness(models.Problem{}, time.Now())
	require.Zero(t, result.DaysLate)
	require.Zero(t, result.LatePenalty)
	require.Nil(t, result.DueAt)
}

func TestComputeLatenessOnTime(t *testing.T) {
	due := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	problem := models.Problem{DueAt: &due}

	result := ComputeLateness(problem, due)
	require.Zero(t, result.DaysLate)
	require.Zero(t, result.LatePenalty)
	require.NotNil(t, result.DueAt)
}

func TestComputeLatenessWholeDaysRoundUp(t *testing.T) {
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	perDay := 0.5
	problem := models.Problem{DueAt: &due, LatePenaltyPerDay: &perDay}

	result := ComputeLateness(problem, due.Add(50*time.Hour))
	require.Equal(t, 3, result.DaysLate)
	require.InDelta(t, 1.5, result.LatePenalty, 1e-9)
}

func TestComputeLatenessInvalidRateUsesDefault(t *testing.T) {
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	perDay := -2.0
	problem := models.Problem{DueAt: &due, LatePenaltyPerDay: &perDay}

	result := ComputeLateness(problem, due.Add(25*time.Hour))
	require.Equal(t, 2, result.DaysLate)
	require.InDelta(t, 1.0, result.LatePenalty, 1e-9)
}

func TestComputeLatenessPenaltyClampedToMax(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	perDay := 1.0
	problem := models.Problem{DueAt: &due, LatePenaltyPerDay: &perDay}

	result := ComputeLateness(problem, due.Add(30*24*time.Hour))
	require.Equal(t, 30, result.DaysLate)
	require.InDelta(t, MaxScore, result.LatePenalty, 1e-9)
}

func TestComputeLatenessNaNRateUsesDefault(t *testing.T) {
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	perDay := math.NaN()
	problem := models.Problem{DueAt: &due, LatePenaltyPerDay: &perDay}

	result := ComputeLateness(problem, due.Add(time.Hour))
	require.Equal(t, 1, result.DaysLate)
	require.InDelta(t, 0.5, result.LatePenalty, 1e-9)
}
