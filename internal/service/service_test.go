package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"questionflow/internal/cache"
	"questionflow/internal/editor"
	"questionflow/internal/metrics"
	"questionflow/internal/model"
	"questionflow/internal/repository"
)

type sentEvent struct {
	questionnaireID string
	msgType         string
	payload         interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []sentEvent
	disconnected []string
}

func (b *recordingBroadcaster) Broadcast(questionnaireID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{questionnaireID, msgType, payload})
}

func (b *recordingBroadcaster) Disconnect(questionnaireID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, questionnaireID)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.msgType
	}
	return out
}

// conflictingRepo fails the next n updates with a version conflict
type conflictingRepo struct {
	repository.QuestionnaireRepo
	conflicts int
	updates   int
}

func (r *conflictingRepo) Update(ctx context.Context, q *model.Questionnaire) error {
	r.updates++
	if r.conflicts > 0 {
		r.conflicts--
		return repository.ErrVersionConflict
	}
	return r.QuestionnaireRepo.Update(ctx, q)
}

type fixture struct {
	repo          repository.QuestionnaireRepo
	redis         *miniredis.Miniredis
	client        *redis.Client
	broadcaster   *recordingBroadcaster
	metrics       *metrics.Metrics
	sessions      cache.SessionCache
	questionnaire *QuestionnaireService
	editor        *EditorService
}

func newFixture(t *testing.T, policy editor.Policy) *fixture {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		repo:        repository.NewMemoryQuestionnaireRepo(),
		redis:       s,
		client:      client,
		broadcaster: &recordingBroadcaster{},
		metrics:     metrics.New(),
	}
	f.questionnaire = NewQuestionnaireService(f.repo, logger)
	f.questionnaire.SetBroadcaster(f.broadcaster)
	f.questionnaire.SetMetrics(f.metrics)

	f.sessions = cache.NewSessionCache(client, 10*time.Minute)
	f.editor = NewEditorService(f.questionnaire, f.sessions, policy, logger)
	f.editor.SetBroadcaster(f.broadcaster)
	f.editor.SetMetrics(f.metrics)
	return f
}

const testHost = "host_test"

// seedGraph stores a questionnaire with a radio question q1 branching to
// a text question q2 and a yes/no question q3
func (f *fixture) seedGraph(t *testing.T) *model.Questionnaire {
	t.Helper()
	q := &model.Questionnaire{
		HostID: testHost,
		Title:  "Workplace",
		Nodes: []model.Node{
			{ID: "q1", Type: model.NodeTypeQuestion, Data: model.QuestionNodeData{
				Question:     "Where do you work?",
				QuestionType: model.QuestionTypeRadio,
				Options:      model.LabelOptions("Onsite (Score: 0.6)", "Remote", "Hybrid"),
			}},
			{ID: "q2", Type: model.NodeTypeQuestion, Data: model.QuestionNodeData{
				Question:     "Which office?",
				QuestionType: model.QuestionTypeTextInput,
				Options:      []model.LegacyOption{},
			}},
			{ID: "q3", Type: model.NodeTypeQuestion, Data: model.QuestionNodeData{
				Question:     "Do you travel?",
				QuestionType: model.QuestionTypeYesNo,
				Options:      []model.LegacyOption{},
			}},
		},
		Edges: []model.Edge{
			{ID: "e0", Source: "q1", SourceHandle: "option-0", Target: "q2", Label: "Onsite (Score: 0.6)"},
			{ID: "e2", Source: "q1", SourceHandle: "option-2", Target: "q3", Label: "Hybrid"},
			{ID: "e3", Source: "q2", SourceHandle: model.HandleTextOutput, Target: "q3"},
		},
	}
	_, err := f.repo.Create(context.Background(), q)
	if err != nil {
		t.Fatalf("seed questionnaire: %v", err)
	}
	return q
}

// counterValue sums every series of a counter family
func counterValue(t *testing.T, f *fixture, name string) float64 {
	t.Helper()
	families, err := f.metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
