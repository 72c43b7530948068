package model

import "time"

// QuestionDraft is the in-progress state of one question while an editor is open
type QuestionDraft struct {
	QuestionText string         `json:"questionText"`
	QuestionType QuestionType   `json:"questionType"`
	IsRequired   bool           `json:"isRequired"`
	Options      []OptionRecord `json:"options"`
	LastValid    []OptionRecord `json:"lastValid,omitempty"` // Restored when switching back to a choice type
}

// EditorSession is an open editor on one node of a questionnaire
type EditorSession struct {
	ID              string        `json:"id"`
	QuestionnaireID string        `json:"questionnaireId"`
	NodeID          string        `json:"nodeId"`
	HostID          string        `json:"hostId"`
	Draft           QuestionDraft `json:"draft"`
	ReconciledFrom  string        `json:"reconciledFrom"` // placeholder, canonical or legacy
	Ambiguous       bool          `json:"ambiguous,omitempty"`
	IsNewQuestion   bool          `json:"isNewQuestion"`
	OpenedAt        time.Time     `json:"openedAt"`
	Committing      bool          `json:"committing,omitempty"` // Claimed by a commit, cancel or delete in flight
}
