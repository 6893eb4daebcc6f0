package requestRepo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"charterhub/database"
)

type mongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoCharterRequestRepo returns a CharterRequestRepository backed by MongoDB.
func NewMongoCharterRequestRepo() CharterRequestRepository {
	db := database.MongoClient.Database("charterhub")
	repo := &mongoRequestRepo{
		coll: db.Collection("charter_requests"),
	}
	repo.ensureIndexes()
	return repo
}

func (r *mongoRequestRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	})
	if err != nil {
		log.Printf("requestRepo: failed to ensure indexes: %v", err)
	}
}
