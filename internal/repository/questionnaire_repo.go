package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"questionflow/internal/model"
)

// ErrVersionConflict means the stored questionnaire changed since it was read
var ErrVersionConflict = errors.New("questionnaire was modified concurrently")

// QuestionnaireRepo persists questionnaire graphs. GetByID returns nil, nil
// when the questionnaire does not exist. Update succeeds only when the
// stored version equals q.Version and bumps it on success.
type QuestionnaireRepo interface {
	Create(ctx context.Context, q *model.Questionnaire) (string, error)
	GetByID(ctx context.Context, id string) (*model.Questionnaire, error)
	GetByHostID(ctx context.Context, hostID string) ([]*model.Questionnaire, error)
	Update(ctx context.Context, q *model.Questionnaire) error
	Delete(ctx context.Context, id string) error
}

type questionnaireRepo struct {
	collection *mongo.Collection
}

// NewQuestionnaireRepo creates a MongoDB questionnaire repository
func NewQuestionnaireRepo(db *mongo.Database) QuestionnaireRepo {
	return &questionnaireRepo{
		collection: db.Collection("questionnaires"),
	}
}

// EnsureIndexes creates the host listing index
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("questionnaires").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "hostId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	return err
}

func (r *questionnaireRepo) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	if q.ID == "" {
		q.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	q.Version = 1
	normalize(q)

	if _, err := r.collection.InsertOne(ctx, q); err != nil {
		return "", err
	}
	return q.ID, nil
}

func (r *questionnaireRepo) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalize(&q)
	return &q, nil
}

func (r *questionnaireRepo) GetByHostID(ctx context.Context, hostID string) ([]*model.Questionnaire, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questionnaires := []*model.Questionnaire{}
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}
	for _, q := range questionnaires {
		normalize(q)
	}
	return questionnaires, nil
}

func (r *questionnaireRepo) Update(ctx context.Context, q *model.Questionnaire) error {
	expected := q.Version
	next := *q
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()
	normalize(&next)

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": q.ID, "version": expected}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	q.Version = next.Version
	q.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *questionnaireRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// normalize keeps list fields non-nil so clients always see arrays
func normalize(q *model.Questionnaire) {
	if q.Nodes == nil {
		q.Nodes = []model.Node{}
	}
	if q.Edges == nil {
		q.Edges = []model.Edge{}
	}
	for i := range q.Nodes {
		if q.Nodes[i].Data.Options == nil {
			q.Nodes[i].Data.Options = []model.LegacyOption{}
		}
	}
}
