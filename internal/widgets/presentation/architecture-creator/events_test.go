// internal/widgets/presentation/architecture-creator/events_test.go
package architecturecreator

import (
	"context"
	"strings"
	"testing"
	"time"

	"solution-creator/internal/common/logger"
	"solution-creator/internal/common/metrics"
	"solution-creator/internal/common/observability"
	"solution-creator/internal/common/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startEvent() Event {
	return Event{SessionID: "sess-1", SubmissionID: "sub-1", From: PhaseIdle, To: PhasePending}
}

func settleEvent(outcome string) Event {
	return Event{
		SessionID:    "sess-1",
		SubmissionID: "sub-1",
		From:         PhasePending,
		To:           PhaseSettled,
		Outcome:      outcome,
		StatusCode:   200,
		Duration:     1500 * time.Millisecond,
	}
}

func TestObservers_FanOutInOrder(t *testing.T) {
	var order []string
	obs := Observers{
		ObserverFunc(func(_ context.Context, ev Event) { order = append(order, "first:"+string(ev.To)) }),
		ObserverFunc(func(_ context.Context, ev Event) { order = append(order, "second:"+string(ev.To)) }),
	}

	obs.OnTransition(context.Background(), startEvent())

	assert.Equal(t, []string{"first:pending", "second:pending"}, order)
}

func TestObservers_ForwardValidationFailures(t *testing.T) {
	rec := &recordingObserver{}
	obs := Observers{ObserverFunc(func(context.Context, Event) {}), rec}

	errs := []validation.ValidationError{{Field: FieldNotes, Code: validation.CodeRequiredFieldMissing}}
	obs.OnValidationFailed(context.Background(), "sess-1", errs)

	require.Len(t, rec.rejected, 1)
	assert.Equal(t, errs, rec.rejected[0])
}

func TestLoggingObserver_Levels(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{name: "start", event: startEvent(), wantLevel: zapcore.InfoLevel, wantMsg: "submission started"},
		{name: "success", event: settleEvent("success"), wantLevel: zapcore.InfoLevel, wantMsg: "submission settled"},
		{name: "partial", event: settleEvent("partial_success"), wantLevel: zapcore.WarnLevel, wantMsg: "submission settled"},
		{name: "failure", event: settleEvent("network_error"), wantLevel: zapcore.ErrorLevel, wantMsg: "submission settled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			obs := NewLoggingObserver(logger.NewZapAdapter(zap.New(core)))

			obs.OnTransition(context.Background(), tt.event)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			fields := entries[0].ContextMap()
			assert.Equal(t, "sess-1", fields["sessionId"])
			assert.Equal(t, "sub-1", fields["submissionId"])
			if tt.event.To == PhaseSettled {
				assert.Equal(t, tt.event.Outcome, fields["outcome"])
				assert.EqualValues(t, 1500, fields["durationMs"])
			}
		})
	}
}

func TestLoggingObserver_ValidationFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewLoggingObserver(logger.NewZapAdapter(zap.New(core)))

	obs.OnValidationFailed(context.Background(), "sess-1", []validation.ValidationError{
		{Field: FieldNotes}, {Field: FieldContext},
	})

	entries := logs.FilterMessage("submit rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestMetricsObserver(t *testing.T) {
	obs := NewMetricsObserver()
	ctx := context.Background()

	inFlight := testutil.ToFloat64(metrics.SubmissionsInFlight)
	settled := testutil.ToFloat64(metrics.SubmissionsTotal.WithLabelValues("request_failed"))
	rejected := testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues(FieldNotes))

	obs.OnTransition(ctx, startEvent())
	assert.Equal(t, inFlight+1, testutil.ToFloat64(metrics.SubmissionsInFlight))

	obs.OnTransition(ctx, settleEvent("request_failed"))
	assert.Equal(t, inFlight, testutil.ToFloat64(metrics.SubmissionsInFlight))
	assert.Equal(t, settled+1, testutil.ToFloat64(metrics.SubmissionsTotal.WithLabelValues("request_failed")))

	obs.OnValidationFailed(ctx, "sess-1", []validation.ValidationError{{Field: FieldNotes}})
	assert.Equal(t, rejected+1, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues(FieldNotes)))
}

func TestTelemetryObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := observability.New("widget-test", observability.WithRegisterer(reg), observability.WithoutGlobal())
	defer obs.Shutdown(context.Background())

	telemetry := NewTelemetryObserver(obs)
	telemetry.OnTransition(context.Background(), startEvent())
	telemetry.OnTransition(context.Background(), settleEvent("success"))

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "widget_transitions")
	assert.Contains(t, joined, "widget_submission_duration")
}

func TestTelemetryObserver_NilObservability(t *testing.T) {
	telemetry := NewTelemetryObserver(nil)

	assert.NotPanics(t, func() {
		telemetry.OnTransition(context.Background(), settleEvent("success"))
	})
}
