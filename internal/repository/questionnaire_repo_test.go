package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"questionflow/internal/model"
)

func sampleQuestionnaire(hostID string) *model.Questionnaire {
	return &model.Questionnaire{
		HostID: hostID,
		Title:  "Onboarding",
		Nodes: []model.Node{{
			ID:   "n1",
			Type: model.NodeTypeQuestion,
			Data: model.QuestionNodeData{
				Question:     "Where do you work?",
				QuestionType: model.QuestionTypeRadio,
				Options: []model.LegacyOption{
					model.LabelOption("Onsite (Score: 1)"),
					model.RecordOption(model.OptionRecord{Text: "Remote", Score: "0."}),
				},
				OptionsData: []model.OptionRecord{{Text: "Onsite", Score: "1"}, {Text: "Remote", Score: "0."}},
			},
		}},
	}
}

// exerciseRepo runs the behaviour every backend must share
func exerciseRepo(t *testing.T, repo QuestionnaireRepo) {
	ctx := context.Background()
	host := "host_" + time.Now().Format("150405.000000")

	q := sampleQuestionnaire(host)
	id, err := repo.Create(ctx, q)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, int64(1), q.Version)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Onboarding", got.Title)
	assert.Equal(t, q.Nodes[0].Data, got.Nodes[0].Data, "both option shapes survive storage")
	assert.NotNil(t, got.Edges)

	// two writers read version 1; the second loses
	stale := *got
	got.Title = "Onboarding v2"
	require.NoError(t, repo.Update(ctx, got))
	assert.Equal(t, int64(2), got.Version)

	stale.Title = "lost"
	assert.ErrorIs(t, repo.Update(ctx, &stale), ErrVersionConflict)

	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding v2", again.Title)
	assert.Equal(t, int64(2), again.Version)

	list, err := repo.GetByHostID(ctx, host)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	require.NoError(t, repo.Delete(ctx, id))
	gone, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.ErrorIs(t, repo.Update(ctx, again), ErrVersionConflict)
}

func TestMemoryRepo(t *testing.T) {
	exerciseRepo(t, NewMemoryQuestionnaireRepo())
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryQuestionnaireRepo()
	ctx := context.Background()
	id, err := repo.Create(ctx, sampleQuestionnaire("h"))
	require.NoError(t, err)

	a, _ := repo.GetByID(ctx, id)
	a.Nodes[0].Data.Question = "changed"

	b, _ := repo.GetByID(ctx, id)
	assert.Equal(t, "Where do you work?", b.Nodes[0].Data.Question)
}

func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("QUESTIONFLOW_TEST_MONGO_URI")
	if testing.Short() || uri == "" {
		t.Skip("QUESTIONFLOW_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	db := client.Database("questionflow_test")
	require.NoError(t, EnsureIndexes(ctx, db))
	exerciseRepo(t, NewQuestionnaireRepo(db))
}

func TestPostgresRepo(t *testing.T) {
	url := os.Getenv("QUESTIONFLOW_TEST_DATABASE_URL")
	if testing.Short() || url == "" {
		t.Skip("QUESTIONFLOW_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, EnsurePostgresSchema(ctx, pool))
	exerciseRepo(t, NewPostgresQuestionnaireRepo(pool))
}

func TestNormalize(t *testing.T) {
	q := &model.Questionnaire{Nodes: []model.Node{{ID: "n"}}}
	normalize(q)
	assert.NotNil(t, q.Edges)
	assert.NotNil(t, q.Nodes[0].Data.Options)
}
