package model

import "time"

// Position is a node's location on the canvas
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeTypeQuestion is the canvas node type of question nodes
const NodeTypeQuestion = "questionNode"

// Node is a question placed on the canvas
type Node struct {
	ID       string           `json:"id" bson:"id"`
	Type     string           `json:"type" bson:"type"`
	Position Position         `json:"position" bson:"position"`
	Data     QuestionNodeData `json:"data" bson:"data"`
}

// Edge is an answer-driven transition between two nodes
type Edge struct {
	ID           string `json:"id" bson:"id"`
	Source       string `json:"source" bson:"source"`
	SourceHandle string `json:"sourceHandle" bson:"sourceHandle"`
	Target       string `json:"target" bson:"target"`
	Label        string `json:"label,omitempty" bson:"label,omitempty"`
}

// Questionnaire is a persistent branching questionnaire owned by a host
type Questionnaire struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	HostID      string    `json:"hostId" bson:"hostId"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Nodes       []Node    `json:"nodes" bson:"nodes"`
	Edges       []Edge    `json:"edges" bson:"edges"`
	Version     int64     `json:"version" bson:"version"` // Bumped on every write
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}
