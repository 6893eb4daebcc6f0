package quotes

import (
	"fmt"

	"charterhub/models"
)

// IntakeError is a rejected quote submission with a named reason.
type IntakeError struct {
	Code    string
	Message string
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotOpenError reports a bid against a request that is not open for
// quoting; only Published requests admit new quotes.
func NewNotOpenError(status models.RequestStatus) error {
	return &IntakeError{
		Code:    "notOpenForQuoting",
		Message: fmt.Sprintf("not open for quoting (status %s)", status),
	}
}
