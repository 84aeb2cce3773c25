package architecturecreator

import (
	"solution-creator/internal/common/logger"
	"solution-creator/internal/common/observability"
)

// Form field names, in display order.
const (
	FieldSubmitterEmail  = "submitterEmail"
	FieldCustomerName    = "customerName"
	FieldCustomerDomain  = "customerDomain"
	FieldContext         = "context"
	FieldAudienceType    = "audienceType"
	FieldSolutionFormat  = "solutionFormat"
	FieldSolutionIdeas   = "solutionIdeas"
	FieldNotes           = "notes"
	FieldDiagramURL      = "diagramUrl"
	FieldGongTranscripts = "gongTranscripts"
)

var FieldNames = []string{
	FieldSubmitterEmail,
	FieldCustomerName,
	FieldCustomerDomain,
	FieldContext,
	FieldAudienceType,
	FieldSolutionFormat,
	FieldSolutionIdeas,
	FieldNotes,
	FieldDiagramURL,
	FieldGongTranscripts,
}

var (
	AudienceTypes   = []string{"Executive", "Technical", "Mixed", "Sales", "Marketing"}
	SolutionFormats = []string{"Document", "Deck"}
)

// FormData is the user's in-progress input.
type FormData struct {
	SubmitterEmail  string `json:"submitterEmail"`
	CustomerName    string `json:"customerName"`
	CustomerDomain  string `json:"customerDomain"`
	Context         string `json:"context"`
	AudienceType    string `json:"audienceType"`
	SolutionFormat  string `json:"solutionFormat"`
	SolutionIdeas   string `json:"solutionIdeas"`
	Notes           string `json:"notes"`
	DiagramURL      string `json:"diagramUrl"`
	GongTranscripts string `json:"gongTranscripts"`
}

func (f *FormData) field(name string) *string {
	switch name {
	case FieldSubmitterEmail:
		return &f.SubmitterEmail
	case FieldCustomerName:
		return &f.CustomerName
	case FieldCustomerDomain:
		return &f.CustomerDomain
	case FieldContext:
		return &f.Context
	case FieldAudienceType:
		return &f.AudienceType
	case FieldSolutionFormat:
		return &f.SolutionFormat
	case FieldSolutionIdeas:
		return &f.SolutionIdeas
	case FieldNotes:
		return &f.Notes
	case FieldDiagramURL:
		return &f.DiagramURL
	case FieldGongTranscripts:
		return &f.GongTranscripts
	}
	return nil
}

// Values returns the form as a field-name keyed map.
func (f FormData) Values() map[string]string {
	out := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		out[name] = *f.field(name)
	}
	return out
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSettled Phase = "settled"
)

type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomePartialSuccess OutcomeKind = "partial_success"
	OutcomeFailure        OutcomeKind = "failure"
)

type FailureReason string

const (
	ReasonRequestFailed FailureReason = "request failed"
	ReasonNetworkError  FailureReason = "network error"
)

const (
	MessageSuccess        = "Presentation created successfully!"
	MessagePartialSuccess = "Request submitted successfully, but presentation creation is still in progress."
	MessageRequestFailed  = "Failed to submit request. Please try again."
	MessageNetworkError   = "Network error. Please check your connection and try again."
)

// Outcome is the result of one settled submission.
type Outcome struct {
	Kind            OutcomeKind   `json:"kind"`
	PresentationID  string        `json:"presentationId,omitempty"`
	PresentationURL string        `json:"presentationUrl,omitempty"`
	Reason          FailureReason `json:"reason,omitempty"`
}

// Message is the user-facing text for the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeSuccess:
		return MessageSuccess
	case OutcomePartialSuccess:
		return MessagePartialSuccess
	case OutcomeFailure:
		if o.Reason == ReasonRequestFailed {
			return MessageRequestFailed
		}
		return MessageNetworkError
	}
	return ""
}

// Label is the outcome name used in metrics and events.
func (o Outcome) Label() string {
	if o.Kind == OutcomeFailure {
		switch o.Reason {
		case ReasonRequestFailed:
			return "request_failed"
		default:
			return "network_error"
		}
	}
	return string(o.Kind)
}

// State is a copy of the controller's observable state.
type State struct {
	Phase        Phase    `json:"phase"`
	Outcome      *Outcome `json:"outcome,omitempty"`
	Message      string   `json:"message,omitempty"`
	SubmissionID string   `json:"submissionId,omitempty"`
}

func (s State) Pending() bool { return s.Phase == PhasePending }

func outcomeLabel(o *Outcome) string {
	if o == nil {
		return ""
	}
	return o.Label()
}

// Payload is the document POSTed to the webhook.
type Payload struct {
	Metadata PayloadMetadata `json:"metadata"`
	Customer PayloadCustomer `json:"customer"`
	Content  PayloadContent  `json:"content"`
}

type PayloadMetadata struct {
	SubmittedBy    string `json:"submittedBy"`
	SubmitterEmail string `json:"submitterEmail"`
}

type PayloadCustomer struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	PortalID     string `json:"portalId"`
	Context      string `json:"context"`
	AudienceType string `json:"audienceType"`
}

type PayloadContent struct {
	Notes           string `json:"notes"`
	SolutionIdeas   string `json:"solutionIdeas"`
	SolutionFormat  string `json:"solutionFormat"`
	DiagramURL      string `json:"diagramUrl"`
	GongTranscripts string `json:"gongTranscripts"`
}

// WebhookResponse is the success contract of the webhook reply.
type WebhookResponse struct {
	Status          string `json:"status"`
	PresentationID  string `json:"presentation_id"`
	PresentationURL string `json:"presentation_url"`
}

// Settlement is what the service reports back to the controller.
type Settlement struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Transport     Transport
	Observability *observability.Observability
}
