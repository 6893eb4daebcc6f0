package models

import "time"

// DialogueStep is one state of the slot-filling conversation.
type DialogueStep string

const (
	StepTripType       DialogueStep = "trip_type"
	StepPassengerCount DialogueStep = "passenger_count"
	StepDate           DialogueStep = "date"
	StepPickup         DialogueStep = "pickup"
	StepDestination    DialogueStep = "destination"
	StepTripFormat     DialogueStep = "trip_format"
	StepTiming         DialogueStep = "timing"
	StepRequirements   DialogueStep = "requirements"
	StepEmail          DialogueStep = "email"
	StepComplete       DialogueStep = "complete"
)

// PartialRequest accumulates slot answers across the conversation.
// Pointer fields distinguish "never visited" from a zero answer; Finalize
// supplies defaults for anything the active flow skipped.
type PartialRequest struct {
	TripType     *string     `json:"tripType,omitempty"`
	Passengers   *int        `json:"passengers,omitempty"`
	Date         *TripDate   `json:"date,omitempty"`
	Pickup       *Location   `json:"pickup,omitempty"`
	Destination  *Location   `json:"destination,omitempty"`
	Format       *TripFormat `json:"format,omitempty"`
	Timing       *Timing     `json:"timing,omitempty"`
	Requirements []string    `json:"requirements,omitempty"`
	Email        *string     `json:"email,omitempty"`
}

// Finalize assembles the finished TripRequest, filling every never-visited
// slot with its type's zero value so no field is left undefined.
func (p PartialRequest) Finalize(source string, now time.Time) TripRequest {
	req := TripRequest{
		Meta: Meta{Source: source, CreatedAt: now},
	}
	if p.TripType != nil {
		req.Trip.Type = *p.TripType
	}
	if p.Passengers != nil {
		req.Trip.Passengers = *p.Passengers
	}
	if p.Date != nil {
		req.Trip.Date = *p.Date
	} else {
		req.Trip.Date = TripDate{Confidence: ConfidenceLow}
	}
	if p.Pickup != nil {
		req.Trip.Pickup = *p.Pickup
	} else {
		req.Trip.Pickup = Location{Confidence: ConfidenceLow}
	}
	if p.Destination != nil {
		req.Trip.Destination = *p.Destination
	} else {
		req.Trip.Destination = Location{Confidence: ConfidenceLow}
	}
	if p.Format != nil {
		req.Trip.Format = *p.Format
	}
	if p.Timing != nil {
		req.Trip.Timing = *p.Timing
	}
	req.Trip.Requirements = p.Requirements
	if req.Trip.Requirements == nil {
		req.Trip.Requirements = []string{}
	}
	if p.Email != nil {
		req.Customer.Email = *p.Email
	}
	return req
}

// DialogueSession is the ephemeral per-conversation state. It lives in the
// session store for 24 hours after its last write and is never persisted
// beyond that.
type DialogueSession struct {
	SessionID string         `json:"sessionId"`
	Step      DialogueStep   `json:"step"`
	Partial   PartialRequest `json:"partial"`
	// AwaitingMultiDayConfirm means the next message is read as a yes/no
	// answer to the multi-day question, not as a new date.
	AwaitingMultiDayConfirm bool      `json:"awaitingMultiDayConfirm"`
	Completed               bool      `json:"completed"`
	CompletedRequestID      string    `json:"completedRequestId,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// CallerIdentity is the authenticated principal attached to a message, if
// any. It is always passed explicitly by the transport layer, never read
// from ambient context.
type CallerIdentity struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}
