package notification

import "charterhub/models"

// Event names emitted by the request/quote lifecycle.
const (
	EventRequestSubmitted     = "RequestSubmitted"
	EventRequestPublished     = "RequestPublished"
	EventFirstQuoteReceived   = "FirstQuoteReceived"
	EventQuoteReceived        = "QuoteReceived"
	EventQuoteDeadlineReached = "QuoteDeadlineReached"
)

// Event is the semantic payload handed to the dispatcher. The lifecycle
// decides when and with what payload to emit; delivery (and any
// throttling) is the dispatcher's concern.
type Event struct {
	Name           string                      `json:"name"`
	Request        models.CharterRequestRecord `json:"request"`
	Quote          *models.Quote               `json:"quote,omitempty"`
	QuoteLink      string                      `json:"quoteLink,omitempty"`
	TotalCount     int64                       `json:"totalCount,omitempty"`
	HoursRemaining int                         `json:"hoursRemaining,omitempty"`
	Operators      []models.Operator           `json:"operators,omitempty"`
}

// NewRequestSubmitted shapes the event fired when the dialogue hands over a
// finished request.
func NewRequestSubmitted(request models.CharterRequestRecord, quoteLink string) Event {
	return Event{Name: EventRequestSubmitted, Request: request, QuoteLink: quoteLink}
}

// NewRequestPublished shapes the event fired when a request opens for bids.
func NewRequestPublished(request models.CharterRequestRecord, operators []models.Operator) Event {
	return Event{Name: EventRequestPublished, Request: request, Operators: operators}
}

// NewFirstQuoteReceived shapes the event for the quote that moved the
// request to QuotesReceived.
func NewFirstQuoteReceived(request models.CharterRequestRecord, quote models.Quote) Event {
	return Event{Name: EventFirstQuoteReceived, Request: request, Quote: &quote, TotalCount: 1}
}

// NewQuoteReceived shapes the event for every subsequent quote, carrying
// the running count and hours remaining so the dispatcher can throttle.
func NewQuoteReceived(request models.CharterRequestRecord, quote models.Quote, totalCount int64, hoursRemaining int) Event {
	return Event{
		Name:           EventQuoteReceived,
		Request:        request,
		Quote:          &quote,
		TotalCount:     totalCount,
		HoursRemaining: hoursRemaining,
	}
}

// NewQuoteDeadlineReached shapes the one-shot event fired when the quote
// deadline is first observed as passed.
func NewQuoteDeadlineReached(request models.CharterRequestRecord, totalCount int64) Event {
	return Event{Name: EventQuoteDeadlineReached, Request: request, TotalCount: totalCount}
}
