package editor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"questionflow/internal/model"
)

// OptionField names an editable field of an option
type OptionField string

const (
	FieldText       OptionField = "text"
	FieldScore      OptionField = "score"
	FieldAnnotation OptionField = "annotationText"
)

// ErrOptionsUnsupported is returned when adding options to an option-less question
var ErrOptionsUnsupported = errors.New("editor: question type has no options")

var scoreInput = regexp.MustCompile(`^\d*\.?\d*$`)

// Draft is the editing session state for one question. It is owned by a
// single editor and is not safe for concurrent use.
type Draft struct {
	state  model.QuestionDraft
	policy Policy
}

// Seed builds a fresh draft from a node's persisted data. Options are
// reconciled before the draft is returned.
func Seed(ctx context.Context, nodeID string, data model.QuestionNodeData, policy Policy, reporter Reporter) (*Draft, Reconciliation) {
	rec := NewReconciler(policy.Reconcile, reporter).Reconcile(ctx, nodeID, data.Options, data.OptionsData)

	qt := data.QuestionType
	if !qt.Valid() {
		qt = model.QuestionTypeTextInput
	}

	d := &Draft{
		state: model.QuestionDraft{
			QuestionText: data.Question,
			QuestionType: qt,
			IsRequired:   data.IsRequired,
			Options:      []model.OptionRecord{},
			LastValid:    cloneOptions(rec.Options),
		},
		policy: policy,
	}
	if qt.HasOptions() {
		d.state.Options = cloneOptions(rec.Options)
	}
	return d, rec
}

// Resume rebuilds a draft from previously saved state
func Resume(state model.QuestionDraft, policy Policy) *Draft {
	d := &Draft{state: cloneState(state), policy: policy}
	if d.state.Options == nil {
		d.state.Options = []model.OptionRecord{}
	}
	return d
}

// State returns a copy of the draft's data
func (d *Draft) State() model.QuestionDraft {
	return cloneState(d.state)
}

// Policy returns the policy the draft was created with
func (d *Draft) Policy() Policy {
	return d.policy
}

func (d *Draft) QuestionText() string {
	return d.state.QuestionText
}

func (d *Draft) QuestionType() model.QuestionType {
	return d.state.QuestionType
}

func (d *Draft) IsRequired() bool {
	return d.state.IsRequired
}

// Options returns a copy of the current option list
func (d *Draft) Options() []model.OptionRecord {
	return cloneOptions(d.state.Options)
}

// SetQuestionText replaces the question text
func (d *Draft) SetQuestionText(text string) {
	d.state.QuestionText = text
}

// SetRequired replaces the required flag
func (d *Draft) SetRequired(required bool) {
	d.state.IsRequired = required
}

// SetQuestionType changes the type. Option-less types drop the options;
// a choice type with no options is refilled according to the policy.
func (d *Draft) SetQuestionType(t model.QuestionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownQuestionType, t)
	}
	d.state.QuestionType = t

	if !t.HasOptions() {
		d.state.Options = []model.OptionRecord{}
		return nil
	}
	if len(d.state.Options) > 0 {
		return nil
	}
	if d.policy.TypeSwitch == TypeSwitchRestore && len(d.state.LastValid) > 0 {
		d.state.Options = cloneOptions(d.state.LastValid)
		return nil
	}
	d.state.Options = PlaceholderOptions()
	return nil
}

// AddOption appends a placeholder option
func (d *Draft) AddOption() error {
	if !d.state.QuestionType.HasOptions() {
		return ErrOptionsUnsupported
	}
	d.state.Options = append(d.state.Options, model.OptionRecord{})
	d.remember()
	return nil
}

// RemoveOption deletes the option at index. It refuses when only one
// option is left or the index is out of range and reports whether
// anything was removed.
func (d *Draft) RemoveOption(index int) bool {
	if len(d.state.Options) <= 1 || index < 0 || index >= len(d.state.Options) {
		return false
	}
	d.state.Options = append(d.state.Options[:index], d.state.Options[index+1:]...)
	d.remember()
	return true
}

// UpdateOption replaces one field of one option. Score input must match a
// partial decimal; it is stored exactly as typed so "0." survives, and an
// empty value clears the score.
func (d *Draft) UpdateOption(index int, field OptionField, value string) error {
	if index < 0 || index >= len(d.state.Options) {
		return fmt.Errorf("%w: %d", ErrOptionIndex, index)
	}
	opt := &d.state.Options[index]

	switch field {
	case FieldText:
		opt.Text = value
		if strings.TrimSpace(value) != "" {
			d.remember()
		}
	case FieldScore:
		if !scoreInput.MatchString(value) {
			return fmt.Errorf("%w: %q", ErrInvalidScore, value)
		}
		opt.Score = model.Score(value)
	case FieldAnnotation:
		opt.AnnotationText = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (d *Draft) remember() {
	d.state.LastValid = cloneOptions(d.state.Options)
}

func cloneState(s model.QuestionDraft) model.QuestionDraft {
	s.Options = cloneOptions(s.Options)
	s.LastValid = cloneOptions(s.LastValid)
	return s
}
