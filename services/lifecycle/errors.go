package lifecycle

import (
	"fmt"
	"strings"

	"charterhub/models"
)

// LifecycleError is a rejected lifecycle operation with a named reason.
type LifecycleError struct {
	Code    string
	Message string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTransitionError reports a transition the table does not declare.
func NewTransitionError(from models.RequestStatus, event TransitionEvent) error {
	msg := fmt.Sprintf("cannot apply %q to a request in status %q", event, from)
	switch from {
	case models.StatusCompleted:
		msg = "already completed"
	case models.StatusCancelled:
		if event == EventWithdraw {
			msg = "already cancelled"
		}
	}
	return &LifecycleError{Code: "invalidTransition", Message: msg}
}

// NewMissingCoordinatesError names the location side(s) that still lack
// geocoded coordinates, blocking publication.
func NewMissingCoordinatesError(sides []string) error {
	return &LifecycleError{
		Code:    "missingCoordinates",
		Message: fmt.Sprintf("cannot publish: %s missing coordinates", strings.Join(sides, " and ")),
	}
}
