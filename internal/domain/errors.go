package domain

// APIError is the problem-details body of every error response
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// validationMessages are the fallbacks for validator tags without a dedicated message
var validationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"oneof":    "Must be one of the allowed values",
	"dive":     "Contains an invalid entry",
	"numeric":  "Must be a numeric value",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeUnprocessable = "unprocessable_entity"
	ErrorTypeNotFound      = "not_found"
	ErrorTypeBadRequest    = "bad_request"
	ErrorTypeConflict      = "conflict"
	ErrorTypeUnauthorized  = "unauthorized"
	ErrorTypeForbidden     = "forbidden"
	ErrorTypeTooLarge      = "payload_too_large"
	ErrorTypeUnavailable   = "service_unavailable"
	ErrorTypeInternal      = "internal_error"
)
