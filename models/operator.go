package models

import "time"

// Operator is a transport operator who bids on published requests.
type Operator struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	Regions   []string  `bson:"regions" json:"regions"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"-"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
