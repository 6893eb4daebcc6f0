package dialogue

import "fmt"

// SessionError signals a fatal session problem: the caller must start a
// new conversation. Slot validation failures never surface as errors.
type SessionError struct {
	Code    string
	Message string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidSessionError reports an unknown, expired or mismatched session id.
func NewInvalidSessionError(sessionID string) error {
	return &SessionError{
		Code:    "invalidSession",
		Message: fmt.Sprintf("session %q is unknown or has expired", sessionID),
	}
}
