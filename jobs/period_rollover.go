package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	jobmetrics "github.com/scholaris-erp/scholaris/internal/jobs"
)

// PeriodGenerator creates the periods of a year.
type PeriodGenerator interface {
	GenerateYear(ctx context.Context, year int, rawType string) ([]periods.Period, error)
}

// PeriodRolloverJob generates the accounting periods of a new year.
type PeriodRolloverJob struct {
	Periods     PeriodGenerator
	DefaultType string
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	clock       func() time.Time
}

// NewPeriodRolloverJob constructs the rollover handler. defaultType applies
// when the task payload names no period type.
func NewPeriodRolloverJob(generator PeriodGenerator, defaultType string, logger *slog.Logger, metrics *jobmetrics.Metrics) *PeriodRolloverJob {
	return &PeriodRolloverJob{
		Periods:     generator,
		DefaultType: defaultType,
		Logger:      logger,
		Metrics:     metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle generates the requested year, skipping periods that already exist.
func (j *PeriodRolloverJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Periods == nil {
		return errors.New("period rollover: generator not configured")
	}
	var payload PeriodRolloverPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Year == 0 {
		payload.Year = j.now().Year()
	}
	if payload.PeriodType == "" {
		payload.PeriodType = j.DefaultType
	}
	if payload.PeriodType == "" {
		payload.PeriodType = string(periods.TypeMonthly)
	}

	tracker := metricsOr(j.Metrics).Track(TaskPeriodRollover)
	logger := jobLogger(j.Logger, TaskPeriodRollover).With(slog.Int("year", payload.Year), slog.String("period_type", payload.PeriodType))
	created, err := j.Periods.GenerateYear(ctx, payload.Year, payload.PeriodType)
	if err != nil {
		logger.Error("generate periods", slog.Any("error", err))
		if shared.IsValidation(err) {
			tracker.End(err)
			return errors.Join(err, asynq.SkipRetry)
		}
		return tracker.End(err)
	}
	logger.Info("periods rolled over", slog.Int("created", len(created)))
	return tracker.End(nil)
}

func (j *PeriodRolloverJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
