package model

import "fmt"

// QuestionType defines the type of question a node asks
type QuestionType string

const (
	QuestionTypeTextInput      QuestionType = "text-input"      // Free text, single outgoing branch
	QuestionTypeMultipleChoice QuestionType = "multiple-choice" // One branch per option
	QuestionTypeRadio          QuestionType = "radio"           // One branch per option
	QuestionTypeCheckbox       QuestionType = "checkbox"        // One branch per option plus "all selected"
	QuestionTypeYesNo          QuestionType = "yes-no"          // Fixed yes/no branches
	QuestionTypeSelect         QuestionType = "select"          // One branch per option
)

// QuestionTypes lists every supported type in display order
var QuestionTypes = []QuestionType{
	QuestionTypeTextInput,
	QuestionTypeMultipleChoice,
	QuestionTypeRadio,
	QuestionTypeCheckbox,
	QuestionTypeYesNo,
	QuestionTypeSelect,
}

// ParseQuestionType validates a raw type string
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the supported types
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether the type carries an editable option list.
// yes-no questions branch on fixed handles and keep no options.
func (t QuestionType) HasOptions() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeRadio, QuestionTypeCheckbox, QuestionTypeSelect:
		return true
	}
	return false
}

// Label is the badge text shown on a canvas node
func (t QuestionType) Label() string {
	switch t {
	case QuestionTypeTextInput:
		return "TEXT INPUT"
	case QuestionTypeMultipleChoice:
		return "MULTIPLE CHOICE"
	case QuestionTypeRadio:
		return "RADIO"
	case QuestionTypeCheckbox:
		return "CHECKBOX"
	case QuestionTypeYesNo:
		return "YES/NO"
	case QuestionTypeSelect:
		return "SELECT"
	default:
		return "QUESTION"
	}
}

// QuestionNodeData is the persisted state of a question node.
// Options holds the legacy shape (labels, sometimes records) and OptionsData
// the canonical records; the two are expected to line up by index but are
// not guaranteed to.
type QuestionNodeData struct {
	Question     string         `json:"question" bson:"question"`
	QuestionType QuestionType   `json:"questionType" bson:"questionType"`
	Options      []LegacyOption `json:"options" bson:"options"`
	OptionsData  []OptionRecord `json:"optionsData,omitempty" bson:"optionsData,omitempty"`
	IsRequired   bool           `json:"isRequired" bson:"isRequired"`
}

// Labels returns the option labels in legacy order
func (d QuestionNodeData) Labels() []string {
	labels := make([]string, len(d.Options))
	for i, opt := range d.Options {
		labels[i] = opt.Text()
	}
	return labels
}
