package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionflow/internal/model"
)

func radioNode(labels ...string) model.QuestionNodeData {
	return model.QuestionNodeData{
		Question:     "Where do you work?",
		QuestionType: model.QuestionTypeRadio,
		Options:      model.LabelOptions(labels...),
	}
}

func seed(t *testing.T, data model.QuestionNodeData, policy Policy) *Draft {
	t.Helper()
	d, _ := Seed(context.Background(), "n1", data, policy, nil)
	return d
}

func TestSeed_TextInputHasNoOptions(t *testing.T) {
	d := seed(t, model.QuestionNodeData{Question: "Name?", QuestionType: model.QuestionTypeTextInput}, DefaultPolicy)

	assert.Equal(t, model.QuestionTypeTextInput, d.QuestionType())
	assert.Empty(t, d.Options())
	assert.NotNil(t, d.State().Options)
}

func TestSeed_UnknownTypeFallsBackToTextInput(t *testing.T) {
	d := seed(t, model.QuestionNodeData{Question: "?", QuestionType: "slider"}, DefaultPolicy)
	assert.Equal(t, model.QuestionTypeTextInput, d.QuestionType())
}

func TestSeed_ChoiceTypeIsReconciled(t *testing.T) {
	d := seed(t, radioNode("Onsite (Score: 0.6)", "Remote"), DefaultPolicy)

	opts := d.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, "Onsite", opts[0].Text)
	assert.Equal(t, model.Score("0.6"), opts[0].Score)
}

func TestDraft_FieldSetters(t *testing.T) {
	d := seed(t, radioNode("a", "b"), DefaultPolicy)

	d.SetQuestionText("New question")
	d.SetRequired(true)

	assert.Equal(t, "New question", d.QuestionText())
	assert.True(t, d.IsRequired())
	assert.ErrorIs(t, d.SetQuestionType("dropdown"), ErrUnknownQuestionType)
	assert.Equal(t, model.QuestionTypeRadio, d.QuestionType())
}

func TestDraft_AddOptionAppendsPlaceholder(t *testing.T) {
	d := seed(t, radioNode("a", "b"), DefaultPolicy)

	require.NoError(t, d.AddOption())

	opts := d.Options()
	require.Len(t, opts, 3)
	assert.Equal(t, "a", opts[0].Text)
	assert.Equal(t, "b", opts[1].Text)
	assert.Equal(t, model.OptionRecord{}, opts[2])
}

func TestDraft_AddOptionRejectedForTextInput(t *testing.T) {
	d := seed(t, model.QuestionNodeData{Question: "Name?", QuestionType: model.QuestionTypeTextInput}, DefaultPolicy)
	assert.ErrorIs(t, d.AddOption(), ErrOptionsUnsupported)
}

func TestDraft_RemoveOption(t *testing.T) {
	d := seed(t, radioNode("a", "b", "c"), DefaultPolicy)

	assert.True(t, d.RemoveOption(1))
	assert.Equal(t, []string{"a", "c"}, texts(d.Options()))

	assert.False(t, d.RemoveOption(5))
	assert.False(t, d.RemoveOption(-1))
	assert.Len(t, d.Options(), 2)
}

func TestDraft_RemoveLastOptionIsNoop(t *testing.T) {
	d := seed(t, radioNode("only"), DefaultPolicy)

	assert.False(t, d.RemoveOption(0))
	assert.Len(t, d.Options(), 1)
}

func TestDraft_UpdateOptionScore(t *testing.T) {
	d := seed(t, radioNode("a", "b"), DefaultPolicy)

	require.NoError(t, d.UpdateOption(0, FieldScore, "0."))
	assert.Equal(t, model.Score("0."), d.Options()[0].Score, "partial decimal is kept as typed")

	err := d.UpdateOption(0, FieldScore, "abc")
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.Equal(t, model.Score("0."), d.Options()[0].Score, "rejected input leaves the prior value")

	assert.ErrorIs(t, d.UpdateOption(0, FieldScore, "-1"), ErrInvalidScore)
	assert.ErrorIs(t, d.UpdateOption(0, FieldScore, "1.2.3"), ErrInvalidScore)

	require.NoError(t, d.UpdateOption(0, FieldScore, "12.50"))
	assert.Equal(t, model.Score("12.50"), d.Options()[0].Score)

	require.NoError(t, d.UpdateOption(0, FieldScore, ""))
	assert.False(t, d.Options()[0].Score.IsSet())
}

func TestDraft_UpdateOptionTextAndAnnotation(t *testing.T) {
	d := seed(t, radioNode("a", "b"), DefaultPolicy)

	require.NoError(t, d.UpdateOption(1, FieldText, "Beta"))
	require.NoError(t, d.UpdateOption(1, FieldAnnotation, "Refer to consultant"))

	got := d.Options()[1]
	assert.Equal(t, "Beta", got.Text)
	assert.Equal(t, "Refer to consultant", got.AnnotationText)

	assert.ErrorIs(t, d.UpdateOption(2, FieldText, "x"), ErrOptionIndex)
	assert.ErrorIs(t, d.UpdateOption(0, "colour", "x"), ErrUnknownField)
}

func TestDraft_TypeSwitchRestorePolicy(t *testing.T) {
	d := seed(t, radioNode("a", "b", "c"), InlinePolicy)
	require.NoError(t, d.UpdateOption(0, FieldText, "Alpha"))

	require.NoError(t, d.SetQuestionType(model.QuestionTypeTextInput))
	assert.Empty(t, d.Options())

	require.NoError(t, d.SetQuestionType(model.QuestionTypeRadio))
	assert.Equal(t, []string{"Alpha", "b", "c"}, texts(d.Options()))

	// same policy again on a second round trip
	require.NoError(t, d.SetQuestionType(model.QuestionTypeYesNo))
	assert.Empty(t, d.Options())
	require.NoError(t, d.SetQuestionType(model.QuestionTypeCheckbox))
	assert.Equal(t, []string{"Alpha", "b", "c"}, texts(d.Options()))
}

func TestDraft_TypeSwitchResetPolicy(t *testing.T) {
	d := seed(t, radioNode("a", "b", "c"), ModalPolicy)

	require.NoError(t, d.SetQuestionType(model.QuestionTypeTextInput))
	assert.Empty(t, d.Options())

	require.NoError(t, d.SetQuestionType(model.QuestionTypeRadio))
	assert.Equal(t, PlaceholderOptions(), d.Options())

	require.NoError(t, d.SetQuestionType(model.QuestionTypeTextInput))
	require.NoError(t, d.SetQuestionType(model.QuestionTypeRadio))
	assert.Equal(t, PlaceholderOptions(), d.Options())
}

func TestDraft_SwitchBetweenChoiceTypesKeepsOptions(t *testing.T) {
	d := seed(t, radioNode("a", "b"), ModalPolicy)

	require.NoError(t, d.SetQuestionType(model.QuestionTypeCheckbox))
	assert.Equal(t, []string{"a", "b"}, texts(d.Options()))
}

func TestDraft_StateIsACopy(t *testing.T) {
	d := seed(t, radioNode("a", "b"), DefaultPolicy)

	s := d.State()
	s.Options[0].Text = "mutated"

	assert.Equal(t, "a", d.Options()[0].Text)
}

func TestResume_RoundTripsState(t *testing.T) {
	d := seed(t, radioNode("a", "b"), InlinePolicy)
	require.NoError(t, d.UpdateOption(0, FieldScore, "3"))

	resumed := Resume(d.State(), InlinePolicy)

	assert.Equal(t, d.State(), resumed.State())
	assert.Equal(t, InlinePolicy, resumed.Policy())
}

func texts(opts []model.OptionRecord) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Text
	}
	return out
}
