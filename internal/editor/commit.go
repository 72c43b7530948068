package editor

import (
	"fmt"
	"strings"

	"questionflow/internal/model"
)

// SavePayload is what a successful commit hands upward. Both option
// shapes are emitted so consumers can use either.
type SavePayload struct {
	QuestionText  string               `json:"questionText"`
	QuestionType  model.QuestionType   `json:"questionType"`
	IsRequired    bool                 `json:"isRequired"`
	Options       []string             `json:"options"`
	OptionRecords []model.OptionRecord `json:"optionRecords"`
}

// NodeData converts the payload back into the persisted node shape
func (p SavePayload) NodeData() model.QuestionNodeData {
	return model.QuestionNodeData{
		Question:     p.QuestionText,
		QuestionType: p.QuestionType,
		Options:      model.LabelOptions(p.Options...),
		OptionsData:  cloneOptions(p.OptionRecords),
		IsRequired:   p.IsRequired,
	}
}

// Validate checks a draft against its policy without building a payload
func Validate(d *Draft) error {
	s := d.state
	if strings.TrimSpace(s.QuestionText) == "" {
		return emptyQuestionText()
	}
	if !s.QuestionType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownQuestionType, s.QuestionType)
	}
	if !s.QuestionType.HasOptions() {
		return nil
	}
	if len(s.Options) == 0 {
		return invalidOptions(-1, "add at least one option for this question type")
	}

	switch d.policy.Validation {
	case ValidateAny:
		if firstFilled(s.Options) < 0 {
			return invalidOptions(-1, "enter text for at least one option")
		}
	default:
		if i := firstBlank(s.Options); i >= 0 {
			return invalidOptions(i, "every option needs text")
		}
	}
	return nil
}

// Commit validates the draft and builds its save payload. The draft is
// not modified; on failure it stays editable.
func Commit(d *Draft) (SavePayload, error) {
	if err := Validate(d); err != nil {
		return SavePayload{}, err
	}

	records := []model.OptionRecord{}
	if d.state.QuestionType.HasOptions() {
		records = cloneOptions(d.state.Options)
	}
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Text
	}

	return SavePayload{
		QuestionText:  d.state.QuestionText,
		QuestionType:  d.state.QuestionType,
		IsRequired:    d.state.IsRequired,
		Options:       labels,
		OptionRecords: records,
	}, nil
}

func firstFilled(opts []model.OptionRecord) int {
	for i, o := range opts {
		if !o.Blank() {
			return i
		}
	}
	return -1
}
