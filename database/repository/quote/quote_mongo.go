package quoteRepo

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"charterhub/database"
	"charterhub/models"
)

type mongoQuoteRepo struct {
	coll *mongo.Collection
}

// NewMongoQuoteRepo returns a QuoteRepository backed by MongoDB.
func NewMongoQuoteRepo() QuoteRepository {
	db := database.MongoClient.Database("charterhub")
	repo := &mongoQuoteRepo{
		coll: db.Collection("quotes"),
	}
	repo.ensureIndexes()
	return repo
}

func (r *mongoQuoteRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
		},
	})
	if err != nil {
		log.Printf("quoteRepo: failed to ensure indexes: %v", err)
	}
}

// Create inserts a new quote.
func (r *mongoQuoteRepo) Create(ctx context.Context, quote *models.Quote) error {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	quote.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, quote)
	return err
}

// GetByID returns a quote by its id.
func (r *mongoQuoteRepo) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	var quote models.Quote
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&quote)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListByRequestID fetches all quotes submitted against a request, in
// creation order.
func (r *mongoQuoteRepo) ListByRequestID(ctx context.Context, requestID string) ([]models.Quote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quotes []models.Quote
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// CountByRequestID counts all quotes recorded against a request.
func (r *mongoQuoteRepo) CountByRequestID(ctx context.Context, requestID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"request_id": requestID})
}

// UpdateStatus sets a quote's status.
func (r *mongoQuoteRepo) UpdateStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"status": status},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
