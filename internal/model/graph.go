package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Fixed source handle ids
const (
	HandleTextOutput  = "text-output"
	HandleYes         = "yes"
	HandleNo          = "no"
	HandleAllSelected = "multi-all"

	optionHandlePrefix = "option-"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrInvalidHandle = errors.New("source handle does not exist on node")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrSelfLoop      = errors.New("edge cannot connect a node to itself")
)

// OptionHandle is the source handle id of option i
func OptionHandle(i int) string {
	return optionHandlePrefix + strconv.Itoa(i)
}

// ParseOptionHandle extracts the option index from an option handle id
func ParseOptionHandle(handle string) (int, bool) {
	rest, ok := strings.CutPrefix(handle, optionHandlePrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// SourceHandles lists the outgoing handles a node exposes for its data
func SourceHandles(data QuestionNodeData) []string {
	switch data.QuestionType {
	case QuestionTypeTextInput:
		return []string{HandleTextOutput}
	case QuestionTypeYesNo:
		return []string{HandleYes, HandleNo}
	case QuestionTypeMultipleChoice, QuestionTypeRadio, QuestionTypeSelect:
		return optionHandles(len(data.Options))
	case QuestionTypeCheckbox:
		handles := optionHandles(len(data.Options))
		if len(data.Options) >= 2 {
			handles = append(handles, HandleAllSelected)
		}
		return handles
	}
	return nil
}

func optionHandles(n int) []string {
	handles := make([]string, n)
	for i := range handles {
		handles[i] = OptionHandle(i)
	}
	return handles
}

// HasHandle reports whether handle is one of data's source handles
func HasHandle(data QuestionNodeData, handle string) bool {
	for _, h := range SourceHandles(data) {
		if h == handle {
			return true
		}
	}
	return false
}

// DefaultEdgeLabel is the label an edge leaving handle gets
func DefaultEdgeLabel(data QuestionNodeData, handle string) string {
	switch handle {
	case HandleYes:
		return "Yes"
	case HandleNo:
		return "No"
	case HandleAllSelected:
		return "All Selected"
	}
	if i, ok := ParseOptionHandle(handle); ok && i < len(data.Options) {
		return data.Options[i].Text()
	}
	return ""
}

// Node returns the node with the given id, or nil
func (q *Questionnaire) Node(id string) *Node {
	for i := range q.Nodes {
		if q.Nodes[i].ID == id {
			return &q.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge with the given id, or nil
func (q *Questionnaire) Edge(id string) *Edge {
	for i := range q.Edges {
		if q.Edges[i].ID == id {
			return &q.Edges[i]
		}
	}
	return nil
}

// RemoveNode deletes a node together with every edge touching it
func (q *Questionnaire) RemoveNode(id string) error {
	idx := -1
	for i := range q.Nodes {
		if q.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	q.Nodes = append(q.Nodes[:idx], q.Nodes[idx+1:]...)

	kept := q.Edges[:0]
	for _, e := range q.Edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	q.Edges = kept
	return nil
}

// AddEdge validates and appends an edge. An empty label takes the default
// label of its source handle.
func (q *Questionnaire) AddEdge(e Edge) error {
	if e.Source == e.Target {
		return ErrSelfLoop
	}
	src := q.Node(e.Source)
	if src == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, e.Source)
	}
	if q.Node(e.Target) == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, e.Target)
	}
	if !HasHandle(src.Data, e.SourceHandle) {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, e.SourceHandle)
	}
	for _, existing := range q.Edges {
		if existing.Source == e.Source && existing.SourceHandle == e.SourceHandle && existing.Target == e.Target {
			return ErrDuplicateEdge
		}
	}
	if e.Label == "" {
		e.Label = DefaultEdgeLabel(src.Data, e.SourceHandle)
	}
	q.Edges = append(q.Edges, e)
	return nil
}

// RemoveEdge deletes an edge by id
func (q *Questionnaire) RemoveEdge(id string) error {
	for i := range q.Edges {
		if q.Edges[i].ID == id {
			q.Edges = append(q.Edges[:i], q.Edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
}

// RelabelEdges brings the edges leaving nodeID in line with its option
// labels: option-i edges take labels[i], and edges whose handle no longer
// exists on the node are dropped. It returns how many edges changed.
func (q *Questionnaire) RelabelEdges(nodeID string, labels []string) (int, error) {
	node := q.Node(nodeID)
	if node == nil {
		return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	changed := 0
	kept := q.Edges[:0]
	for _, e := range q.Edges {
		if e.Source != nodeID {
			kept = append(kept, e)
			continue
		}
		if !HasHandle(node.Data, e.SourceHandle) {
			changed++
			continue
		}
		if i, ok := ParseOptionHandle(e.SourceHandle); ok && i < len(labels) && e.Label != labels[i] {
			e.Label = labels[i]
			changed++
		}
		kept = append(kept, e)
	}
	q.Edges = kept
	return changed, nil
}

// SetNodeData replaces a node's question data
func (q *Questionnaire) SetNodeData(nodeID string, data QuestionNodeData) error {
	node := q.Node(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	node.Data = data
	return nil
}
