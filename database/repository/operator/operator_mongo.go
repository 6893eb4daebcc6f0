package operatorRepo

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

// ErrNotFound is returned when no operator matches the given id.
var ErrNotFound = errors.New("operator not found")

// OperatorRepository is the directory of transport operators who receive
// publish notifications and submit quotes.
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByID(ctx context.Context, id string) (*models.Operator, error)
	ListActive(ctx context.Context) ([]models.Operator, error)
}

type mongoOperatorRepo struct {
	coll *mongo.Collection
}

// NewMongoOperatorRepo returns an OperatorRepository backed by MongoDB.
func NewMongoOperatorRepo() OperatorRepository {
	db := database.MongoClient.Database("charterhub")
	repo := &mongoOperatorRepo{
		coll: db.Collection("operators"),
	}
	repo.ensureIndexes()
	return repo
}

func (r *mongoOperatorRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("operatorRepo: failed to ensure indexes: %v", err)
	}
}

func (r *mongoOperatorRepo) Create(ctx context.Context, op *models.Operator) error {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	op.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, op)
	return err
}

func (r *mongoOperatorRepo) GetByID(ctx context.Context, id string) (*models.Operator, error) {
	var op models.Operator
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&op)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *mongoOperatorRepo) ListActive(ctx context.Context) ([]models.Operator, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ops []models.Operator
	if err := cursor.All(ctx, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}
