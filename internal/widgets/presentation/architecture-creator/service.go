package architecturecreator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	apperrors "solution-creator/internal/common/errors"
	apphttp "solution-creator/internal/common/http"
	"solution-creator/internal/common/logger"
	"solution-creator/internal/common/observability"
	"solution-creator/internal/common/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxLoggedBody = 512

var (
	errNullReply    = errors.New("reply body is JSON null")
	errTrailingData = errors.New("reply body has data after the JSON value")
)

// Transport posts a JSON body and returns the raw reply.
type Transport interface {
	PostJSON(ctx context.Context, url string, body []byte, headers map[string]string) (*apphttp.Response, error)
}

// Submitter performs one webhook call and classifies the reply.
type Submitter interface {
	Execute(ctx context.Context, submissionID string, payload Payload) Settlement
}

type Service struct {
	config    *Config
	logger    logger.Logger
	transport Transport
	obs       *observability.Observability
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	transport := deps.Transport
	if transport == nil {
		transport = apphttp.NewClient(config.Timeout)
	}
	return &Service{
		config:    config,
		logger:    log.With(map[string]interface{}{"component": "webhook"}),
		transport: transport,
		obs:       deps.Observability,
	}
}

// Execute never returns an error: every failure is folded into the
// settlement's outcome, with the cause in Settlement.Err.
func (s *Service) Execute(ctx context.Context, submissionID string, payload Payload) Settlement {
	ctx, span := s.obs.StartSpan(ctx, "webhook.submit",
		attribute.String("submission.id", submissionID),
	)

	settlement := s.execute(ctx, submissionID, payload)

	span.SetAttributes(
		attribute.String("outcome", settlement.Outcome.Label()),
		attribute.Int("http.status_code", settlement.StatusCode),
	)
	observability.EndSpan(span, settlement.Err)
	return settlement
}

func (s *Service) execute(ctx context.Context, submissionID string, payload Payload) Settlement {
	log := s.logger.With(map[string]interface{}{"submissionId": submissionID})

	if s.config.WebhookURL == "" {
		err := apperrors.NewWebhookNotConfiguredError()
		log.Error("webhook url missing", map[string]interface{}{"error": err})
		return networkFailure(0, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return networkFailure(0, apperrors.NewWebhookNetworkError(err))
	}

	log.Debug("posting payload", map[string]interface{}{
		"url":   s.config.WebhookURL,
		"bytes": len(body),
	})

	resp, err := s.transport.PostJSON(ctx, s.config.WebhookURL, body, map[string]string{
		"X-Submission-Id": submissionID,
	})
	if err != nil {
		return networkFailure(0, err)
	}

	if !resp.OK() {
		return Settlement{
			Outcome:    Outcome{Kind: OutcomeFailure, Reason: ReasonRequestFailed},
			StatusCode: resp.StatusCode,
			Err:        apperrors.NewWebhookRequestFailedError(resp.StatusCode, truncate(resp.Body)),
		}
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return networkFailure(resp.StatusCode, apperrors.NewWebhookResponseMalformedError(resp.StatusCode, err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return networkFailure(resp.StatusCode, apperrors.NewWebhookResponseMalformedError(resp.StatusCode, errTrailingData))
	}
	if doc == nil {
		return networkFailure(resp.StatusCode, apperrors.NewWebhookResponseMalformedError(resp.StatusCode, errNullReply))
	}

	violations, err := validation.ValidateDocument(GetResponseSchema(), doc)
	if err != nil {
		log.Error("response schema check failed", map[string]interface{}{"error": err})
	}
	if err != nil || len(violations) > 0 {
		rules := make([]string, len(violations))
		for i, v := range violations {
			rules[i] = v.Error()
		}
		log.Warn("webhook reply did not meet success contract", map[string]interface{}{
			"statusCode": resp.StatusCode,
			"violations": rules,
		})
		return Settlement{
			Outcome:    Outcome{Kind: OutcomePartialSuccess},
			StatusCode: resp.StatusCode,
		}
	}

	reply := decodeReply(doc)
	return Settlement{
		Outcome: Outcome{
			Kind:            OutcomeSuccess,
			PresentationID:  reply.PresentationID,
			PresentationURL: reply.PresentationURL,
		},
		StatusCode: resp.StatusCode,
	}
}

func networkFailure(status int, err error) Settlement {
	return Settlement{
		Outcome:    Outcome{Kind: OutcomeFailure, Reason: ReasonNetworkError},
		StatusCode: status,
		Err:        err,
	}
}

// decodeReply reads a contract-valid document. presentation_id may arrive as
// a number.
func decodeReply(doc interface{}) WebhookResponse {
	m, _ := doc.(map[string]interface{})
	return WebhookResponse{
		Status:          stringValue(m["status"]),
		PresentationID:  stringValue(m["presentation_id"]),
		PresentationURL: stringValue(m["presentation_url"]),
	}
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}
