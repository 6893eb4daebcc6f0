package models

import "time"

// Confidence tags a parsed date or location with how much post-processing
// (e.g., geocoding) is still required before the value can be trusted.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// TripFormat classifies the journey shape collected in the dialogue.
type TripFormat string

const (
	FormatOneWay        TripFormat = "one_way"
	FormatReturnSameDay TripFormat = "return_same_day"
)

// Customer identifies the person who requested the trip.
type Customer struct {
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Phone     string `bson:"phone" json:"phone"`
	Email     string `bson:"email" json:"email"`
}

// TripDate keeps both the raw user answer and the resolved ISO date.
// Resolved is empty until the date could be pinned down exactly.
type TripDate struct {
	Raw        string     `bson:"raw" json:"raw"`
	Resolved   string     `bson:"resolved" json:"resolved"` // "YYYY-MM-DD" or empty
	Confidence Confidence `bson:"confidence" json:"confidence"`
}

// Location is a pickup or destination point. Lat/Lng stay nil until the
// admin-side geocoding step fills them in; Confidence may only be "high"
// once both coordinates are populated.
type Location struct {
	Raw        string     `bson:"raw" json:"raw"`
	Name       string     `bson:"name" json:"name"`
	Suburb     string     `bson:"suburb" json:"suburb"`
	State      string     `bson:"state" json:"state"`
	Lat        *float64   `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng        *float64   `bson:"lng,omitempty" json:"lng,omitempty"`
	Confidence Confidence `bson:"confidence" json:"confidence"`
}

// Geocoded reports whether both coordinates are present.
func (l Location) Geocoded() bool {
	return l.Lat != nil && l.Lng != nil
}

// Timing carries the raw timing answer plus the split pickup/return times.
type Timing struct {
	Raw        string `bson:"raw" json:"raw"`
	PickupTime string `bson:"pickup_time" json:"pickupTime"`
	ReturnTime string `bson:"return_time" json:"returnTime"`
}

// Trip is the structured body of a charter request.
type Trip struct {
	Type         string     `bson:"type" json:"type"`
	Passengers   int        `bson:"passengers" json:"passengers"`
	Date         TripDate   `bson:"date" json:"date"`
	Pickup       Location   `bson:"pickup" json:"pickup"`
	Destination  Location   `bson:"destination" json:"destination"`
	Format       TripFormat `bson:"format" json:"format"`
	Timing       Timing     `bson:"timing" json:"timing"`
	Requirements []string   `bson:"requirements" json:"requirements"`
}

// Meta records where and when the request was captured.
type Meta struct {
	Source    string    `bson:"source" json:"source"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// TripRequest is the finished payload assembled by the dialogue engine.
type TripRequest struct {
	Customer Customer `bson:"customer" json:"customer"`
	Trip     Trip     `bson:"trip" json:"trip"`
	Meta     Meta     `bson:"meta" json:"meta"`
}
