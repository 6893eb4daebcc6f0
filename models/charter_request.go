package models

import "time"

// RequestStatus is the lifecycle state of a persisted charter request.
type RequestStatus string

const (
	StatusDraft          RequestStatus = "Draft"
	StatusUnderReview    RequestStatus = "UnderReview"
	StatusPublished      RequestStatus = "Published"
	StatusQuotesReceived RequestStatus = "QuotesReceived"
	StatusAccepted       RequestStatus = "Accepted"
	StatusCompleted      RequestStatus = "Completed"
	StatusCancelled      RequestStatus = "Cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CharterRequestRecord wraps one finished TripRequest for persistence.
// Records are never hard-deleted; Cancelled and Completed are soft end-states.
type CharterRequestRecord struct {
	ID            string        `bson:"id" json:"id"`
	SessionID     string        `bson:"session_id" json:"sessionId"`
	RequesterID   string        `bson:"requester_id,omitempty" json:"requesterId,omitempty"`
	CapturedEmail string        `bson:"captured_email,omitempty" json:"capturedEmail,omitempty"`
	Request       TripRequest   `bson:"request" json:"request"`
	Status        RequestStatus `bson:"status" json:"status"`
	// QuoteDeadline is the soft cutoff for new quotes, set when published.
	QuoteDeadline    *time.Time `bson:"quote_deadline,omitempty" json:"quoteDeadline,omitempty"`
	DeadlineNotified bool       `bson:"deadline_notified" json:"-"`
	CreatedAt        time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updatedAt"`
}
