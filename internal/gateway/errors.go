package gateway

import "errors"

// Kind classifies a gateway failure for the transport layers.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthenticated
	KindPermissionDenied
	KindRateLimited
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is the caller-visible failure of a gateway operation. Message is safe to return to clients;
// internal details are kept in the audit log and server logs only.
type Error struct {
	Kind    Kind
	Message string
	// Blocked reports that the request was refused (authentication, authorization or quota) rather than
	// failing while being processed.
	Blocked bool
}

func (e *Error) Error() string { return e.Message }

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// Caller-visible messages.
const (
	msgInvalidSession = "Invalid or expired session"
	msgInactive       = "Officer account is inactive"
	msgRoleDenied     = "Your role is not permitted to use the assistant"
	msgFailed         = "Failed to process query. Please try again."
	msgInternal       = "Internal error"
)

func newError(kind Kind, msg string, blocked bool) *Error {
	return &Error{Kind: kind, Message: msg, Blocked: blocked}
}
