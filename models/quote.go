package models

import "time"

// QuoteStatus is the lifecycle state of a single operator bid.
type QuoteStatus string

const (
	QuotePending   QuoteStatus = "Pending"
	QuoteSubmitted QuoteStatus = "Submitted"
	QuoteAccepted  QuoteStatus = "Accepted"
	QuoteRejected  QuoteStatus = "Rejected"
	QuoteExpired   QuoteStatus = "Expired"
)

// Quote is an operator's priced bid against a published request.
// Price and operator are immutable once created; only Status may change.
type Quote struct {
	ID         string      `bson:"id" json:"id"`
	RequestID  string      `bson:"request_id" json:"requestId"`
	OperatorID string      `bson:"operator_id" json:"operatorId"`
	// PriceMinor is the bid amount in the currency's minor units (cents).
	PriceMinor int64       `bson:"price_minor" json:"priceMinor"`
	Currency   string      `bson:"currency" json:"currency"`
	Notes      string      `bson:"notes" json:"notes"`
	Status     QuoteStatus `bson:"status" json:"status"`
	CreatedAt  time.Time   `bson:"created_at" json:"createdAt"`
}
