package requestRepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"charterhub/models"
)

// Create inserts a new charter request record.
func (r *mongoRequestRepo) Create(ctx context.Context, record *models.CharterRequestRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, record)
	return err
}

// GetByID returns a charter request record by its id.
func (r *mongoRequestRepo) GetByID(ctx context.Context, id string) (*models.CharterRequestRecord, error) {
	var record models.CharterRequestRecord
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetBySessionID returns the record created from a given dialogue session.
func (r *mongoRequestRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CharterRequestRecord, error) {
	var record models.CharterRequestRecord
	err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByStatus fetches all records with the given status, newest first.
func (r *mongoRequestRepo) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.CharterRequestRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.CharterRequestRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus sets the record's status unconditionally.
func (r *mongoRequestRepo) UpdateStatus(ctx context.Context, id string, to models.RequestStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"status": to, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionIf performs the conditional status update used for races such as
// the first-quote Published→QuotesReceived flip.
func (r *mongoRequestRepo) TransitionIf(ctx context.Context, id string, from, to models.RequestStatus) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetQuoteDeadline stores the quote-collection deadline for the record.
func (r *mongoRequestRepo) SetQuoteDeadline(ctx context.Context, id string, deadline time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"quote_deadline": deadline, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDeadlineNotified flips deadline_notified from false to true.
func (r *mongoRequestRepo) MarkDeadlineNotified(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "deadline_notified": false},
		bson.M{"$set": bson.M{"deadline_notified": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
