package courier

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingCredentials = errors.New("smtp credentials are not configured")
	ErrSendTimeout        = errors.New("email send timed out")
	ErrStoreUnavailable   = errors.New("rate limit store unavailable")
)

// Messages shown to clients. Nothing else ever reaches a response body.
const (
	msgInvalidInput    = "Invalid input."
	msgRateLimited     = "Too many requests. Please try again later."
	msgSendFailed      = "Failed to send message. Please try again later."
	msgForbiddenOrigin = "Origin not allowed."
	msgMethod          = "Method not allowed."
	msgTooLarge        = "Payload too large."
	msgUnsupported     = "Unsupported content type."
)
