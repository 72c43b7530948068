package editor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionflow/internal/model"
)

type recorder struct {
	updates []SavePayload
	deletes []string
	labels  [][]string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnUpdate: func(_ context.Context, _ string, p SavePayload) error {
			r.updates = append(r.updates, p)
			return nil
		},
		OnDelete: func(_ context.Context, nodeID string) error {
			r.deletes = append(r.deletes, nodeID)
			return nil
		},
		OnUpdateEdgeLabels: func(_ context.Context, _ string, labels []string) error {
			r.labels = append(r.labels, labels)
			return nil
		},
	}
}

func open(t *testing.T, data model.QuestionNodeData, h Handlers, opts ...SessionOption) *Session {
	t.Helper()
	s, _ := Open(context.Background(), "node-1", data, DefaultPolicy, h, opts...)
	return s
}

func TestSession_CommitUnchangedLabelsSkipsRelabel(t *testing.T) {
	rec := &recorder{}
	s := open(t, radioNode("a", "b"), rec.handlers())

	d, err := s.Draft()
	require.NoError(t, err)
	d.SetQuestionText("Reworded")

	_, err = s.Commit(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.updates, 1)
	assert.Equal(t, "Reworded", rec.updates[0].QuestionText)
	assert.Empty(t, rec.labels)
	assert.True(t, s.Closed())
}

func TestSession_CommitRelabelsOnOptionChange(t *testing.T) {
	rec := &recorder{}
	s := open(t, radioNode("a", "b"), rec.handlers())

	d, _ := s.Draft()
	require.NoError(t, d.UpdateOption(1, FieldText, "Bee"))

	_, err := s.Commit(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.labels, 1)
	assert.Equal(t, []string{"a", "Bee"}, rec.labels[0])
}

func TestSession_CommitRelabelsOnTypeChange(t *testing.T) {
	rec := &recorder{}
	s := open(t, model.QuestionNodeData{Question: "Name?", QuestionType: model.QuestionTypeTextInput}, rec.handlers())

	d, _ := s.Draft()
	require.NoError(t, d.SetQuestionType(model.QuestionTypeYesNo))

	_, err := s.Commit(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.labels, 1)
	assert.Empty(t, rec.labels[0])
}

func TestSession_CommitEmbeddedScoreRelabels(t *testing.T) {
	rec := &recorder{}
	s := open(t, radioNode("Onsite (Score: 1)", "Remote"), rec.handlers())

	_, err := s.Commit(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.labels, 1, "score suffix was stripped from the label")
	assert.Equal(t, []string{"Onsite", "Remote"}, rec.labels[0])
}

func TestSession_ValidationFailureKeepsSessionOpen(t *testing.T) {
	rec := &recorder{}
	s := open(t, radioNode("a", "b"), rec.handlers())

	d, _ := s.Draft()
	d.SetQuestionText("")

	_, err := s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrEmptyQuestionText)
	assert.False(t, s.Closed())
	assert.Empty(t, rec.updates)
}

func TestSession_MissingOnUpdateIsDiagnosed(t *testing.T) {
	reporter := &recordingReporter{}
	s := open(t, radioNode("a", "b"), Handlers{}, WithReporter(reporter))

	_, err := s.Commit(context.Background())

	assert.ErrorIs(t, err, ErrMissingCallback)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "not a user-facing validation error")
	assert.False(t, s.Closed())
	require.Len(t, reporter.got, 1)
	assert.Equal(t, CodeMissingCallback, reporter.got[0].Code)
	assert.Equal(t, SeverityError, reporter.got[0].Severity)
	assert.Equal(t, "node-1", reporter.got[0].NodeID)
}

func TestSession_MissingRelabelCallbackOnlyWarns(t *testing.T) {
	reporter := &recordingReporter{}
	rec := &recorder{}
	h := rec.handlers()
	h.OnUpdateEdgeLabels = nil
	s := open(t, radioNode("a", "b"), h, WithReporter(reporter))

	d, _ := s.Draft()
	require.NoError(t, d.AddOption())
	require.NoError(t, d.UpdateOption(2, FieldText, "c"))

	_, err := s.Commit(context.Background())
	require.NoError(t, err)

	assert.Len(t, rec.updates, 1)
	require.Len(t, reporter.got, 1)
	assert.Equal(t, SeverityWarn, reporter.got[0].Severity)
}

func TestSession_UpdateErrorPropagates(t *testing.T) {
	boom := errors.New("store down")
	s := open(t, radioNode("a", "b"), Handlers{
		OnUpdate: func(context.Context, string, SavePayload) error { return boom },
	})

	_, err := s.Commit(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Closed())
}

func TestSession_RelabelFailureIsPartialCommit(t *testing.T) {
	boom := errors.New("edge store down")
	rec := &recorder{}
	h := rec.handlers()
	h.OnUpdateEdgeLabels = func(context.Context, string, []string) error { return boom }
	s := open(t, radioNode("a", "b"), h)

	d, _ := s.Draft()
	require.NoError(t, d.UpdateOption(0, FieldText, "Aye"))

	_, err := s.Commit(context.Background())

	assert.ErrorIs(t, err, ErrPartialCommit)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.updates, 1, "caller knows the node update already fired")
	assert.False(t, s.Closed())
}

func TestSession_CancelReportsNothing(t *testing.T) {
	rec := &recorder{}
	s := open(t, radioNode("a", "b"), rec.handlers())

	s.Cancel()

	assert.True(t, s.Closed())
	assert.Empty(t, rec.updates)
	assert.Empty(t, rec.labels)
	assert.Empty(t, rec.deletes)

	_, err := s.Draft()
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_Delete(t *testing.T) {
	rec := &recorder{}
	s := open(t, radioNode("a", "b"), rec.handlers())

	require.NoError(t, s.Delete(context.Background()))

	assert.Equal(t, []string{"node-1"}, rec.deletes)
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.Delete(context.Background()), ErrSessionClosed)
}

func TestSession_DeleteWithoutCallback(t *testing.T) {
	reporter := &recordingReporter{}
	s := open(t, radioNode("a"), Handlers{}, WithReporter(reporter))

	assert.ErrorIs(t, s.Delete(context.Background()), ErrMissingCallback)
	assert.False(t, s.Closed())
	assert.Len(t, reporter.got, 1)
}

func TestSlogReporter_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogReporter(logger).Report(context.Background(), Diagnostic{
		Code:     CodeMissingCallback,
		Severity: SeverityWarn,
		NodeID:   "n9",
		Message:  "OnDelete callback is not wired",
		Err:      ErrMissingCallback,
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "code=MISSING_CALLBACK")
	assert.Contains(t, out, "node_id=n9")
}

func TestMultiReporter_FansOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	MultiReporter(a, nil, b).Report(context.Background(), Diagnostic{Code: CodeInvalidOptions})

	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}
