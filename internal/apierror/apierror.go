// Package apierror holds the JSON bodies of every 4xx/5xx response.
// Detail is safe to show a cashier; driver and store errors never end up in it.
package apierror

// Kind is the stable error class clients switch on. Detail wording may change, Kind does not.
type Kind string

const (
	KindBadRequest  Kind = "bad_request"
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindRejected    Kind = "rejected" // the pricing engine refused the input
	KindUnavailable Kind = "unavailable"
	KindRateLimited Kind = "rate_limited"
	KindInternal    Kind = "internal"
)

type APIError struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

func New(kind Kind, detail string) *APIError {
	return &APIError{Kind: kind, Detail: detail}
}

// ValidationError lists the failing DTO fields with the validator tag each one broke.
type ValidationError struct {
	Kind   Kind              `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: KindValidation, Detail: "validation failed", Fields: fields}
}
