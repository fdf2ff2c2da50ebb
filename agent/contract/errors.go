package contract

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrAmbiguous           = errors.New("identity is ambiguous")
	ErrInvalidRange        = errors.New("invalid date range")
	ErrValidation          = errors.New("validation failed")
	ErrSearchUnavailable   = errors.New("semantic search unavailable")
	ErrUpstreamUnavailable = errors.New("status endpoint unavailable")
	ErrMalformedResponse   = errors.New("malformed status response")
	ErrBudgetExhausted     = errors.New("step budget exhausted")
	ErrModelInvoke         = errors.New("model invoke failed")
	ErrSchemaViolation     = errors.New("model response violates schema")
)
