package lifecycle

import "charterhub/models"

// TransitionEvent names one cause of a status change. Every legal
// transition is declared once in the table below and validated uniformly.
type TransitionEvent string

const (
	EventBeginReview TransitionEvent = "begin_review"
	EventPublish     TransitionEvent = "publish"
	EventFirstQuote  TransitionEvent = "first_quote"
	EventAccept      TransitionEvent = "accept"
	EventComplete    TransitionEvent = "complete"
	EventWithdraw    TransitionEvent = "withdraw"
)

// transitions is the single source of truth for the request status
// machine. Completed and Cancelled have no outgoing edges.
var transitions = map[models.RequestStatus]map[TransitionEvent]models.RequestStatus{
	models.StatusDraft: {
		EventBeginReview: models.StatusUnderReview,
		EventPublish:     models.StatusPublished,
		EventWithdraw:    models.StatusCancelled,
	},
	models.StatusUnderReview: {
		EventPublish:  models.StatusPublished,
		EventWithdraw: models.StatusCancelled,
	},
	models.StatusPublished: {
		EventFirstQuote: models.StatusQuotesReceived,
		EventWithdraw:   models.StatusCancelled,
	},
	models.StatusQuotesReceived: {
		EventAccept:   models.StatusAccepted,
		EventWithdraw: models.StatusCancelled,
	},
	models.StatusAccepted: {
		EventComplete: models.StatusCompleted,
		EventWithdraw: models.StatusCancelled,
	},
}

// Next resolves a transition against the table, rejecting anything not
// declared in it.
func Next(from models.RequestStatus, event TransitionEvent) (models.RequestStatus, error) {
	if edges, ok := transitions[from]; ok {
		if to, ok := edges[event]; ok {
			return to, nil
		}
	}
	return "", NewTransitionError(from, event)
}
