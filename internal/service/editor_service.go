package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"questionflow/internal/cache"
	"questionflow/internal/editor"
	"questionflow/internal/metrics"
	"questionflow/internal/model"
	"questionflow/internal/repository"
)

var ErrSessionForbidden = errors.New("editor session belongs to another host")

// CommitResult is returned by a successful commit
type CommitResult struct {
	Payload       editor.SavePayload   `json:"payload"`
	Node          model.Node           `json:"node"`
	Edges         []model.Edge         `json:"edges"`
	Questionnaire *model.Questionnaire `json:"-"`
}

// EditorService runs editor sessions. Drafts live in the session cache
// between requests; commit applies the session callbacks to the loaded
// graph and persists it in one write.
type EditorService struct {
	questionnaires *QuestionnaireService
	sessions       cache.SessionCache
	policy         editor.Policy
	broadcaster    Broadcaster
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewEditorService creates a new editor service
func NewEditorService(questionnaires *QuestionnaireService, sessions cache.SessionCache, policy editor.Policy, logger *slog.Logger) *EditorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditorService{
		questionnaires: questionnaires,
		sessions:       sessions,
		policy:         policy,
		broadcaster:    nopBroadcaster{},
		logger:         logger,
	}
}

// SetBroadcaster injects the change feed
func (s *EditorService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics injects the metrics collectors
func (s *EditorService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Policy returns the policy every session uses
func (s *EditorService) Policy() editor.Policy {
	return s.policy
}

func (s *EditorService) reporter(questionnaireID string) editor.Reporter {
	return diagnosticsReporter(questionnaireID, s.logger, s.metrics, s.broadcaster)
}

// Open seeds a draft from the node's persisted data and stores the session
func (s *EditorService) Open(ctx context.Context, hostID, questionnaireID, nodeID string) (*model.EditorSession, error) {
	q, err := s.questionnaires.Get(ctx, hostID, questionnaireID)
	if err != nil {
		return nil, err
	}
	node := q.Node(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrNodeNotFound, nodeID)
	}

	draft, rec := editor.Seed(ctx, nodeID, node.Data, s.policy, s.reporter(questionnaireID))
	es := &model.EditorSession{
		ID:              uuid.NewString(),
		QuestionnaireID: questionnaireID,
		NodeID:          nodeID,
		HostID:          hostID,
		Draft:           draft.State(),
		ReconciledFrom:  string(rec.Source),
		Ambiguous:       rec.Ambiguous,
		IsNewQuestion:   node.Data.Question == "",
		OpenedAt:        time.Now().UTC(),
	}
	if err := s.sessions.Set(ctx, es); err != nil {
		return nil, fmt.Errorf("store editor session: %w", err)
	}

	s.metrics.SessionEvent("opened")
	s.metrics.Reconciled(string(rec.Source), rec.Ambiguous)
	s.logger.Debug("editor session opened",
		"session_id", es.ID,
		"questionnaire_id", questionnaireID,
		"node_id", nodeID,
		"reconciled_from", es.ReconciledFrom)
	return es, nil
}

// Get returns an open session the host owns
func (s *EditorService) Get(ctx context.Context, hostID, sessionID string) (*model.EditorSession, error) {
	es, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load editor session: %w", err)
	}
	if es == nil {
		return nil, cache.ErrSessionNotFound
	}
	if es.HostID != hostID {
		return nil, ErrSessionForbidden
	}
	return es, nil
}

// edit resumes the stored draft, applies fn and saves the result
func (s *EditorService) edit(ctx context.Context, hostID, sessionID string, fn func(d *editor.Draft) error) (*model.EditorSession, error) {
	return s.sessions.Update(ctx, sessionID, func(es *model.EditorSession) error {
		if es.HostID != hostID {
			return ErrSessionForbidden
		}
		if es.Committing {
			return cache.ErrSessionBusy
		}
		d := editor.Resume(es.Draft, s.policy)
		if err := fn(d); err != nil {
			return err
		}
		es.Draft = d.State()
		return nil
	})
}

// SetQuestionText replaces the draft's question text
func (s *EditorService) SetQuestionText(ctx context.Context, hostID, sessionID, text string) (*model.EditorSession, error) {
	return s.edit(ctx, hostID, sessionID, func(d *editor.Draft) error {
		d.SetQuestionText(text)
		return nil
	})
}

// SetQuestionType changes the draft's type, applying the type-switch policy
func (s *EditorService) SetQuestionType(ctx context.Context, hostID, sessionID string, qt model.QuestionType) (*model.EditorSession, error) {
	return s.edit(ctx, hostID, sessionID, func(d *editor.Draft) error {
		return d.SetQuestionType(qt)
	})
}

// SetRequired replaces the draft's required flag
func (s *EditorService) SetRequired(ctx context.Context, hostID, sessionID string, required bool) (*model.EditorSession, error) {
	return s.edit(ctx, hostID, sessionID, func(d *editor.Draft) error {
		d.SetRequired(required)
		return nil
	})
}

// AddOption appends a placeholder option
func (s *EditorService) AddOption(ctx context.Context, hostID, sessionID string) (*model.EditorSession, error) {
	return s.edit(ctx, hostID, sessionID, func(d *editor.Draft) error {
		return d.AddOption()
	})
}

// RemoveOption deletes an option; removed is false when the draft refused
func (s *EditorService) RemoveOption(ctx context.Context, hostID, sessionID string, index int) (es *model.EditorSession, removed bool, err error) {
	es, err = s.edit(ctx, hostID, sessionID, func(d *editor.Draft) error {
		removed = d.RemoveOption(index)
		return nil
	})
	return es, removed, err
}

// UpdateOption replaces one field of one option
func (s *EditorService) UpdateOption(ctx context.Context, hostID, sessionID string, index int, field editor.OptionField, value string) (*model.EditorSession, error) {
	return s.edit(ctx, hostID, sessionID, func(d *editor.Draft) error {
		return d.UpdateOption(index, field, value)
	})
}

// Commit validates the draft and writes it into the questionnaire. The
// session is claimed for the duration of the write; on any error nothing is
// written and the session is reopened for editing.
func (s *EditorService) Commit(ctx context.Context, hostID, sessionID string) (*CommitResult, error) {
	es, err := s.claim(ctx, hostID, sessionID)
	if err != nil {
		return nil, err
	}
	reporter := s.reporter(es.QuestionnaireID)

	var payload editor.SavePayload
	q, err := s.questionnaires.Mutate(ctx, hostID, es.QuestionnaireID, func(q *model.Questionnaire) error {
		node := q.Node(es.NodeID)
		if node == nil {
			return fmt.Errorf("%w: %s", model.ErrNodeNotFound, es.NodeID)
		}
		sess := editor.NewSession(es.NodeID, editor.Resume(es.Draft, s.policy), graphHandlers(q),
			editor.WithPrevious(node.Data), editor.WithReporter(reporter))
		p, err := sess.Commit(ctx)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		s.release(ctx, sessionID)
		s.metrics.CommitResult(commitOutcome(err))
		return nil, err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to drop committed editor session", "session_id", sessionID, "error", err)
	}

	res := &CommitResult{
		Payload:       payload,
		Node:          *q.Node(es.NodeID),
		Edges:         edgesFrom(q, es.NodeID),
		Questionnaire: q,
	}
	s.metrics.CommitResult("ok")
	s.metrics.SessionEvent("committed")
	s.broadcaster.Broadcast(es.QuestionnaireID, EventNodeUpdated, map[string]interface{}{
		"node":    res.Node,
		"edges":   res.Edges,
		"version": q.Version,
	})
	s.logger.Info("question committed",
		"questionnaire_id", es.QuestionnaireID,
		"node_id", es.NodeID,
		"question_type", payload.QuestionType,
		"options", len(payload.Options))
	return res, nil
}

// Cancel discards the draft. The questionnaire is not touched.
func (s *EditorService) Cancel(ctx context.Context, hostID, sessionID string) error {
	if _, err := s.claim(ctx, hostID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("drop editor session: %w", err)
	}
	s.metrics.SessionEvent("cancelled")
	return nil
}

// DeleteNode deletes the node being edited and closes the session
func (s *EditorService) DeleteNode(ctx context.Context, hostID, sessionID string) error {
	es, err := s.claim(ctx, hostID, sessionID)
	if err != nil {
		return err
	}
	reporter := s.reporter(es.QuestionnaireID)

	if _, err := s.questionnaires.Mutate(ctx, hostID, es.QuestionnaireID, func(q *model.Questionnaire) error {
		sess := editor.NewSession(es.NodeID, editor.Resume(es.Draft, s.policy), graphHandlers(q), editor.WithReporter(reporter))
		return sess.Delete(ctx)
	}); err != nil {
		s.release(ctx, sessionID)
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to drop editor session", "session_id", sessionID, "error", err)
	}
	s.metrics.SessionEvent("deleted")
	s.broadcaster.Broadcast(es.QuestionnaireID, EventNodeDeleted, map[string]string{"nodeId": es.NodeID})
	return nil
}

// claim marks the session as committing in one optimistic transaction.
// Edits and a second claim fail with ErrSessionBusy until release or delete.
func (s *EditorService) claim(ctx context.Context, hostID, sessionID string) (*model.EditorSession, error) {
	return s.sessions.Update(ctx, sessionID, func(es *model.EditorSession) error {
		if es.HostID != hostID {
			return ErrSessionForbidden
		}
		if es.Committing {
			return cache.ErrSessionBusy
		}
		es.Committing = true
		return nil
	})
}

// release reopens a claimed session for editing after a failed write
func (s *EditorService) release(ctx context.Context, sessionID string) {
	_, err := s.sessions.Update(ctx, sessionID, func(es *model.EditorSession) error {
		es.Committing = false
		return nil
	})
	if err != nil && !errors.Is(err, cache.ErrSessionNotFound) {
		s.logger.Warn("failed to release editor session", "session_id", sessionID, "error", err)
	}
}

// graphHandlers binds the editor callbacks to an in-memory questionnaire
func graphHandlers(q *model.Questionnaire) editor.Handlers {
	return editor.Handlers{
		OnUpdate: func(_ context.Context, nodeID string, p editor.SavePayload) error {
			return q.SetNodeData(nodeID, p.NodeData())
		},
		OnDelete: func(_ context.Context, nodeID string) error {
			return q.RemoveNode(nodeID)
		},
		OnUpdateEdgeLabels: func(_ context.Context, nodeID string, labels []string) error {
			_, err := q.RelabelEdges(nodeID, labels)
			return err
		},
	}
}

func edgesFrom(q *model.Questionnaire, nodeID string) []model.Edge {
	edges := []model.Edge{}
	for _, e := range q.Edges {
		if e.Source == nodeID {
			edges = append(edges, e)
		}
	}
	return edges
}

func commitOutcome(err error) string {
	var verr *editor.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, repository.ErrVersionConflict):
		return "conflict"
	}
	return "error"
}
