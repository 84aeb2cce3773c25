package architecturecreator

import "strings"

// BuildContext carries the host settings a payload needs.
type BuildContext struct {
	PortalID   string
	WebhookURL string // destination only, never serialized
}

// BuildPayload maps the form onto the webhook document. Optional fields are
// sent as empty strings.
func BuildPayload(form FormData, bc BuildContext) Payload {
	return Payload{
		Metadata: PayloadMetadata{
			SubmittedBy:    SubmitterHandle(form.SubmitterEmail),
			SubmitterEmail: form.SubmitterEmail,
		},
		Customer: PayloadCustomer{
			Name:         form.CustomerName,
			Domain:       form.CustomerDomain,
			PortalID:     bc.PortalID,
			Context:      form.Context,
			AudienceType: form.AudienceType,
		},
		Content: PayloadContent{
			Notes:           form.Notes,
			SolutionIdeas:   form.SolutionIdeas,
			SolutionFormat:  form.SolutionFormat,
			DiagramURL:      form.DiagramURL,
			GongTranscripts: form.GongTranscripts,
		},
	}
}

// SubmitterHandle is the part of email before the first '@', or "Unknown"
// when that part is empty.
func SubmitterHandle(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "Unknown"
	}
	return local
}
