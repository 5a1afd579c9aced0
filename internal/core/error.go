package core

// Error codes
const (
	ErrMatchNotFound     = "MATCH_NOT_FOUND"
	ErrNoMove            = "NO_MOVE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidConfig     = "INVALID_CONFIG"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
)
