package architecturecreator

import (
	"fmt"
	"strings"

	"solution-creator/internal/common/errors"
	"solution-creator/internal/common/validation"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Required: []string{
			FieldSubmitterEmail, FieldCustomerName, FieldCustomerDomain, FieldContext,
			FieldAudienceType, FieldSolutionFormat, FieldSolutionIdeas, FieldNotes,
		},
		Properties: map[string]validation.Property{
			FieldSubmitterEmail: {
				Type:        "string",
				Description: "Email of the person requesting the presentation",
				Format:      "email",
			},
			FieldCustomerName: {
				Type:        "string",
				Description: "Customer display name",
			},
			FieldCustomerDomain: {
				Type:        "string",
				Description: "Customer web domain",
			},
			FieldContext: {
				Type:        "string",
				Description: "Project context",
			},
			FieldAudienceType: {
				Type:        "string",
				Description: "Who the presentation is for",
				Enum:        AudienceTypes,
			},
			FieldSolutionFormat: {
				Type:        "string",
				Description: "Document or slide deck",
				Enum:        SolutionFormats,
			},
			FieldSolutionIdeas: {
				Type:        "string",
				Description: "Initial solution concepts",
			},
			FieldNotes: {
				Type:        "string",
				Description: "Additional requirements",
			},
			FieldDiagramURL: {
				Type:        "string",
				Description: "Optional architecture diagram link",
				Format:      "uri",
			},
			FieldGongTranscripts: {
				Type:        "string",
				Description: "Optional call transcripts",
			},
		},
		AdditionalProperties: false,
	}
}

// GetResponseSchema is the success contract of the webhook reply.
func GetResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"status", "presentation_url"},
		"properties": map[string]interface{}{
			"status": map[string]interface{}{
				"type":  "string",
				"const": "OK",
			},
			"presentation_url": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
		},
	}
}

// ValidateForm returns one entry per problem, ordered by field position.
func ValidateForm(form FormData) []validation.ValidationError {
	values := form.Values()
	input := make(map[string]interface{}, len(values))
	for k, v := range values {
		input[k] = v
	}

	result := validation.ValidateInput(input, GetInputSchema())
	if result.Valid {
		return nil
	}

	ordered := make([]validation.ValidationError, 0, len(result.Errors))
	for _, name := range FieldNames {
		ordered = append(ordered, result.GetErrorsForField(name)...)
	}
	return ordered
}

// InvalidFormError is returned by Submit when the form is not ready to send.
type InvalidFormError struct {
	Errors []validation.ValidationError
}

func (e *InvalidFormError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = ve.Error()
	}
	return fmt.Sprintf("invalid form: %s", strings.Join(parts, "; "))
}

// Fields lists the offending field names once each, in form order.
func (e *InvalidFormError) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, ve := range e.Errors {
		if !seen[ve.Field] {
			seen[ve.Field] = true
			fields = append(fields, ve.Field)
		}
	}
	return fields
}

// Missing lists only the required fields that were empty.
func (e *InvalidFormError) Missing() []string {
	var fields []string
	for _, ve := range e.Errors {
		if ve.Code == validation.CodeRequiredFieldMissing {
			fields = append(fields, ve.Field)
		}
	}
	return fields
}

func (e *InvalidFormError) Unwrap() error {
	return errors.NewFormValidationFailedError(e.Fields())
}
