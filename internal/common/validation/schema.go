package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Error codes carried by ValidationError.Code.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeInvalidEnumValue     = "INVALID_ENUM_VALUE"
	CodeInvalidEmail         = "INVALID_EMAIL"
	CodeInvalidURL           = "INVALID_URL"
	CodeExtraField           = "EXTRA_FIELD"
	CodeSchemaViolation      = "SCHEMA_VIOLATION"
)

// JSONSchema defines the structure for input/output schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Format      string   `json:"format,omitempty"` // email | uri
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateInput validates input against schema the way a browser checks the
// matching form controls. Required fields are reported in schema order; a
// required string that is empty counts as missing and is not checked further.
// Values of email and uri properties are stripped of newlines and surrounding
// whitespace first, as the browser does for type=email and type=url inputs.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	errors := []ValidationError{}
	missing := make(map[string]bool)

	for _, requiredField := range schema.Required {
		value, exists := input[requiredField]
		if !exists || isBlank(sanitize(value, schema.Properties[requiredField])) {
			missing[requiredField] = true
			errors = append(errors, ValidationError{
				Field:   requiredField,
				Message: "required field missing",
				Code:    CodeRequiredFieldMissing,
			})
		}
	}

	for _, fieldName := range sortedKeys(input) {
		if missing[fieldName] {
			continue
		}
		value := input[fieldName]
		prop, exists := schema.Properties[fieldName]
		if !exists {
			if !schema.AdditionalProperties {
				errors = append(errors, ValidationError{
					Field:   fieldName,
					Message: "field not allowed in schema",
					Code:    CodeExtraField,
				})
			}
			continue
		}

		errors = append(errors, validateField(fieldName, sanitize(value, prop), prop)...)
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateField(fieldName string, value interface{}, prop Property) []ValidationError {
	errors := []ValidationError{}

	if typeErr := validateType(value, prop.Type); typeErr != nil {
		return append(errors, ValidationError{
			Field:   fieldName,
			Message: typeErr.Error(),
			Code:    CodeInvalidType,
		})
	}

	strVal, ok := value.(string)
	if !ok || strVal == "" {
		// optional and empty
		return errors
	}

	if len(prop.Enum) > 0 && !contains(prop.Enum, strVal) {
		errors = append(errors, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("value must be one of %v", prop.Enum),
			Code:    CodeInvalidEnumValue,
		})
	}

	switch prop.Format {
	case "email":
		if !ValidateEmail(strVal) {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Message: "value must be a valid email address",
				Code:    CodeInvalidEmail,
			})
		}
	case "uri":
		if !ValidateURL(strVal) {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Message: "value must be an absolute URL",
				Code:    CodeInvalidURL,
			})
		}
	}

	return errors
}

func validateType(value interface{}, expectedType string) error {
	switch expectedType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	}
	return nil
}

// ValidateDocument checks data against a draft-07 JSON schema expressed as Go
// maps. A schema that cannot be compiled is returned as an error; document
// violations come back as ValidationErrors.
func ValidateDocument(schema map[string]interface{}, data interface{}) ([]ValidationError, error) {
	if len(schema) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]ValidationError, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    CodeSchemaViolation,
		}
	}
	return errs, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// emailPattern is the HTML living standard's valid e-mail address rule, the
// one browsers apply to type=email.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
	"[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
	"(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// ValidateEmail reports whether email is a valid e-mail address as a browser
// judges it. Dotless domains such as user@localhost are allowed.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// schemes whose URLs must name a host.
var hostSchemes = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true,
}

// ValidateURL accepts absolute URLs. Web schemes need a host; others such as
// mailto: do not.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	if hostSchemes[strings.ToLower(u.Scheme)] {
		return u.Host != ""
	}
	return true
}

func sanitize(value interface{}, prop Property) interface{} {
	s, ok := value.(string)
	if !ok || prop.Format == "" {
		return value
	}
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	return strings.Trim(s, " \t\f")
}

func isBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
