package editor

import (
	"context"
	"fmt"
	"slices"

	"questionflow/internal/model"
)

// Handlers are the upward callbacks a session reports to. OnUpdate is
// required for Commit and OnDelete for Delete; OnUpdateEdgeLabels is
// optional.
//
// A commit may fire OnUpdate and then OnUpdateEdgeLabels. Owners that need
// the two applied together should stage both and persist once the commit
// returns; a relabel failure after OnUpdate is reported as ErrPartialCommit
// so a staged update can be discarded.
type Handlers struct {
	OnUpdate           func(ctx context.Context, nodeID string, payload SavePayload) error
	OnDelete           func(ctx context.Context, nodeID string) error
	OnUpdateEdgeLabels func(ctx context.Context, nodeID string, labels []string) error
}

// Session binds a draft to a node and its callbacks
type Session struct {
	nodeID       string
	draft        *Draft
	previous     []string
	previousType model.QuestionType
	handlers     Handlers
	reporter     Reporter
	closed       bool
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithReporter sets where integration diagnostics go
func WithReporter(r Reporter) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithPrevious records the node's persisted data before editing. Commit
// relabels edges only when the labels or the type differ from it.
func WithPrevious(data model.QuestionNodeData) SessionOption {
	return func(s *Session) {
		s.previous = data.Labels()
		s.previousType = data.QuestionType
	}
}

// NewSession wraps an existing draft
func NewSession(nodeID string, draft *Draft, handlers Handlers, opts ...SessionOption) *Session {
	s := &Session{
		nodeID:   nodeID,
		draft:    draft,
		handlers: handlers,
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open seeds a draft from the node's persisted data and starts a session.
func Open(ctx context.Context, nodeID string, data model.QuestionNodeData, policy Policy, handlers Handlers, opts ...SessionOption) (*Session, Reconciliation) {
	s := NewSession(nodeID, nil, handlers, append([]SessionOption{WithPrevious(data)}, opts...)...)
	draft, rec := Seed(ctx, nodeID, data, policy, s.reporter)
	s.draft = draft
	return s, rec
}

// NodeID returns the node being edited
func (s *Session) NodeID() string {
	return s.nodeID
}

// Closed reports whether the session was committed, cancelled or deleted
func (s *Session) Closed() bool {
	return s.closed
}

// Draft returns the draft being edited
func (s *Session) Draft() (*Draft, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.draft, nil
}

// Commit validates the draft and, only if it is valid, notifies OnUpdate
// and then OnUpdateEdgeLabels when the option labels (or the type, and with
// it the node's handles) changed. On any error the session stays open.
func (s *Session) Commit(ctx context.Context) (SavePayload, error) {
	if s.closed {
		return SavePayload{}, ErrSessionClosed
	}

	payload, err := Commit(s.draft)
	if err != nil {
		return SavePayload{}, err
	}

	if s.handlers.OnUpdate == nil {
		s.missing(ctx, "OnUpdate", SeverityError)
		return SavePayload{}, fmt.Errorf("%w: OnUpdate", ErrMissingCallback)
	}
	relabel := !slices.Equal(s.previous, payload.Options) || s.previousType != payload.QuestionType
	if relabel && s.handlers.OnUpdateEdgeLabels == nil {
		s.missing(ctx, "OnUpdateEdgeLabels", SeverityWarn)
		relabel = false
	}

	if err := s.handlers.OnUpdate(ctx, s.nodeID, payload); err != nil {
		return SavePayload{}, fmt.Errorf("update node %s: %w", s.nodeID, err)
	}
	if relabel {
		if err := s.handlers.OnUpdateEdgeLabels(ctx, s.nodeID, slices.Clone(payload.Options)); err != nil {
			return SavePayload{}, fmt.Errorf("%w: node %s: %w", ErrPartialCommit, s.nodeID, err)
		}
	}

	s.close()
	return payload, nil
}

// Cancel discards the draft. Nothing is reported upward.
func (s *Session) Cancel() {
	s.close()
}

// Delete asks the owner to delete the node and closes the session
func (s *Session) Delete(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.handlers.OnDelete == nil {
		s.missing(ctx, "OnDelete", SeverityError)
		return fmt.Errorf("%w: OnDelete", ErrMissingCallback)
	}
	if err := s.handlers.OnDelete(ctx, s.nodeID); err != nil {
		return fmt.Errorf("delete node %s: %w", s.nodeID, err)
	}
	s.close()
	return nil
}

func (s *Session) close() {
	s.closed = true
	s.draft = nil
}

func (s *Session) missing(ctx context.Context, name string, sev Severity) {
	s.reporter.Report(ctx, Diagnostic{
		Code:     CodeMissingCallback,
		Severity: sev,
		NodeID:   s.nodeID,
		Message:  name + " callback is not wired",
		Err:      ErrMissingCallback,
	})
}
