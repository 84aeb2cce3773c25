package architecturecreator

import (
	"context"
	"time"

	"solution-creator/internal/common/logger"
	"solution-creator/internal/common/metrics"
	"solution-creator/internal/common/observability"
	"solution-creator/internal/common/validation"
)

// Event describes one state transition of a controller.
type Event struct {
	SessionID    string
	SubmissionID string
	From         Phase
	To           Phase
	Outcome      string
	Reason       string
	StatusCode   int
	Duration     time.Duration
	At           time.Time
}

// Observer receives one call per transition, after the state has changed.
type Observer interface {
	OnTransition(ctx context.Context, ev Event)
}

// ValidationObserver is implemented by observers that also want rejected
// submits.
type ValidationObserver interface {
	OnValidationFailed(ctx context.Context, sessionID string, errs []validation.ValidationError)
}

type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnTransition(ctx context.Context, ev Event) { f(ctx, ev) }

// Observers fans events out in order.
type Observers []Observer

func (o Observers) OnTransition(ctx context.Context, ev Event) {
	for _, obs := range o {
		obs.OnTransition(ctx, ev)
	}
}

func (o Observers) OnValidationFailed(ctx context.Context, sessionID string, errs []validation.ValidationError) {
	for _, obs := range o {
		if vo, ok := obs.(ValidationObserver); ok {
			vo.OnValidationFailed(ctx, sessionID, errs)
		}
	}
}

type LoggingObserver struct {
	logger logger.Logger
}

func NewLoggingObserver(log logger.Logger) *LoggingObserver {
	return &LoggingObserver{logger: log}
}

func (o *LoggingObserver) OnTransition(_ context.Context, ev Event) {
	fields := map[string]interface{}{
		"sessionId":    ev.SessionID,
		"submissionId": ev.SubmissionID,
		"from":         string(ev.From),
		"to":           string(ev.To),
	}
	if ev.To != PhaseSettled {
		o.logger.Info("submission started", fields)
		return
	}

	fields["outcome"] = ev.Outcome
	fields["durationMs"] = ev.Duration.Milliseconds()
	if ev.StatusCode != 0 {
		fields["statusCode"] = ev.StatusCode
	}
	if ev.Reason != "" {
		fields["reason"] = ev.Reason
	}

	switch ev.Outcome {
	case string(OutcomeSuccess):
		o.logger.Info("submission settled", fields)
	case string(OutcomePartialSuccess):
		o.logger.Warn("submission settled", fields)
	default:
		o.logger.Error("submission settled", fields)
	}
}

func (o *LoggingObserver) OnValidationFailed(_ context.Context, sessionID string, errs []validation.ValidationError) {
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	o.logger.Debug("submit rejected", map[string]interface{}{
		"sessionId": sessionID,
		"fields":    fields,
	})
}

// MetricsObserver feeds the Prometheus collectors.
type MetricsObserver struct{}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (MetricsObserver) OnTransition(_ context.Context, ev Event) {
	switch ev.To {
	case PhasePending:
		metrics.SubmissionsInFlight.Inc()
	case PhaseSettled:
		metrics.SubmissionsInFlight.Dec()
		metrics.SubmissionsTotal.WithLabelValues(ev.Outcome).Inc()
		metrics.SubmissionDuration.WithLabelValues(ev.Outcome).Observe(ev.Duration.Seconds())
	}
}

func (MetricsObserver) OnValidationFailed(_ context.Context, _ string, errs []validation.ValidationError) {
	for _, e := range errs {
		metrics.ValidationFailures.WithLabelValues(e.Field).Inc()
	}
}

// TelemetryObserver records transitions on the OpenTelemetry meter.
type TelemetryObserver struct {
	obs *observability.Observability
}

func NewTelemetryObserver(obs *observability.Observability) *TelemetryObserver {
	return &TelemetryObserver{obs: obs}
}

func (o *TelemetryObserver) OnTransition(ctx context.Context, ev Event) {
	o.obs.RecordTransition(ctx, string(ev.From), string(ev.To), ev.Outcome)
	if ev.To == PhaseSettled {
		o.obs.RecordSubmissionDuration(ctx, ev.Duration, ev.Outcome)
	}
}
