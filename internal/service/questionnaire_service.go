package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"questionflow/internal/metrics"
	"questionflow/internal/model"
	"questionflow/internal/repository"
)

var (
	ErrNotFound     = errors.New("questionnaire not found")
	ErrForbidden    = errors.New("questionnaire belongs to another host")
	ErrInvalidInput = errors.New("invalid input")
)

// maxWriteAttempts bounds the optimistic retry loop in Mutate
const maxWriteAttempts = 3

// QuestionnaireService owns the questionnaire graph: metadata, nodes and
// edges. Every write goes through Mutate.
type QuestionnaireService struct {
	repo        repository.QuestionnaireRepo
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(repo repository.QuestionnaireRepo, logger *slog.Logger) *QuestionnaireService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionnaireService{
		repo:        repo,
		broadcaster: nopBroadcaster{},
		logger:      logger,
	}
}

// SetBroadcaster injects the change feed
func (s *QuestionnaireService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics injects the metrics collectors
func (s *QuestionnaireService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Create stores an empty questionnaire for hostID
func (s *QuestionnaireService) Create(ctx context.Context, hostID, title, description string) (*model.Questionnaire, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	q := &model.Questionnaire{
		HostID:      hostID,
		Title:       title,
		Description: description,
		Nodes:       []model.Node{},
		Edges:       []model.Edge{},
	}
	if _, err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create questionnaire: %w", err)
	}
	s.logger.Info("questionnaire created", "questionnaire_id", q.ID, "host_id", hostID)
	return q, nil
}

// List returns the host's questionnaires, most recently updated first
func (s *QuestionnaireService) List(ctx context.Context, hostID string) ([]*model.Questionnaire, error) {
	return s.repo.GetByHostID(ctx, hostID)
}

// Get loads a questionnaire the host owns
func (s *QuestionnaireService) Get(ctx context.Context, hostID, id string) (*model.Questionnaire, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load questionnaire %s: %w", id, err)
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if q.HostID != hostID {
		return nil, ErrForbidden
	}
	return q, nil
}

// Mutate loads the questionnaire, applies fn and writes it back with a
// version check. A conflicting write reloads and reapplies fn; after
// maxWriteAttempts the conflict is returned. An error from fn aborts
// without writing.
func (s *QuestionnaireService) Mutate(ctx context.Context, hostID, id string, fn func(q *model.Questionnaire) error) (*model.Questionnaire, error) {
	for attempt := 1; ; attempt++ {
		q, err := s.Get(ctx, hostID, id)
		if err != nil {
			return nil, err
		}
		if err := fn(q); err != nil {
			return nil, err
		}
		err = s.repo.Update(ctx, q)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("save questionnaire %s: %w", id, err)
		}
		s.metrics.VersionConflict()
		if attempt >= maxWriteAttempts {
			s.logger.Warn("questionnaire write conflict", "questionnaire_id", id, "attempts", attempt)
			return nil, fmt.Errorf("save questionnaire %s: %w", id, err)
		}
	}
}

// UpdateMeta changes the title and description
func (s *QuestionnaireService) UpdateMeta(ctx context.Context, hostID, id, title, description string) (*model.Questionnaire, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	q, err := s.Mutate(ctx, hostID, id, func(q *model.Questionnaire) error {
		q.Title = title
		q.Description = description
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(id, EventQuestionnaireUpdated, map[string]interface{}{
		"title":       q.Title,
		"description": q.Description,
		"version":     q.Version,
	})
	return q, nil
}

// Delete removes a questionnaire and closes its change feed
func (s *QuestionnaireService) Delete(ctx context.Context, hostID, id string) error {
	if _, err := s.Get(ctx, hostID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete questionnaire %s: %w", id, err)
	}
	s.broadcaster.Broadcast(id, EventQuestionnaireDeleted, map[string]string{"questionnaireId": id})
	s.broadcaster.Disconnect(id)
	s.logger.Info("questionnaire deleted", "questionnaire_id", id, "host_id", hostID)
	return nil
}

// AddNode places a question on the canvas. A nil data creates an empty
// text-input question.
func (s *QuestionnaireService) AddNode(ctx context.Context, hostID, id string, pos model.Position, data *model.QuestionNodeData) (*model.Node, error) {
	node := model.Node{
		ID:       uuid.NewString(),
		Type:     model.NodeTypeQuestion,
		Position: pos,
		Data: model.QuestionNodeData{
			QuestionType: model.QuestionTypeTextInput,
			Options:      []model.LegacyOption{},
		},
	}
	if data != nil {
		node.Data = *data
		if node.Data.QuestionType == "" {
			node.Data.QuestionType = model.QuestionTypeTextInput
		}
		if !node.Data.QuestionType.Valid() {
			return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalidInput, node.Data.QuestionType)
		}
		if node.Data.Options == nil {
			node.Data.Options = []model.LegacyOption{}
		}
	}

	if _, err := s.Mutate(ctx, hostID, id, func(q *model.Questionnaire) error {
		q.Nodes = append(q.Nodes, node)
		return nil
	}); err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(id, EventNodeAdded, node)
	return &node, nil
}

// MoveNode updates a node's canvas position
func (s *QuestionnaireService) MoveNode(ctx context.Context, hostID, id, nodeID string, pos model.Position) error {
	if _, err := s.Mutate(ctx, hostID, id, func(q *model.Questionnaire) error {
		n := q.Node(nodeID)
		if n == nil {
			return fmt.Errorf("%w: %s", model.ErrNodeNotFound, nodeID)
		}
		n.Position = pos
		return nil
	}); err != nil {
		return err
	}
	s.broadcaster.Broadcast(id, EventNodeMoved, map[string]interface{}{"nodeId": nodeID, "position": pos})
	return nil
}

// DeleteNode removes a node and every edge touching it
func (s *QuestionnaireService) DeleteNode(ctx context.Context, hostID, id, nodeID string) error {
	if _, err := s.Mutate(ctx, hostID, id, func(q *model.Questionnaire) error {
		return q.RemoveNode(nodeID)
	}); err != nil {
		return err
	}
	s.broadcaster.Broadcast(id, EventNodeDeleted, map[string]string{"nodeId": nodeID})
	return nil
}

// AddEdge connects two nodes. The edge label defaults from the source handle.
func (s *QuestionnaireService) AddEdge(ctx context.Context, hostID, id string, edge model.Edge) (*model.Edge, error) {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	var added model.Edge
	if _, err := s.Mutate(ctx, hostID, id, func(q *model.Questionnaire) error {
		if err := q.AddEdge(edge); err != nil {
			return err
		}
		added = q.Edges[len(q.Edges)-1]
		return nil
	}); err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(id, EventEdgeAdded, added)
	return &added, nil
}

// DeleteEdge removes one edge
func (s *QuestionnaireService) DeleteEdge(ctx context.Context, hostID, id, edgeID string) error {
	if _, err := s.Mutate(ctx, hostID, id, func(q *model.Questionnaire) error {
		return q.RemoveEdge(edgeID)
	}); err != nil {
		return err
	}
	s.broadcaster.Broadcast(id, EventEdgeDeleted, map[string]string{"edgeId": edgeID})
	return nil
}
