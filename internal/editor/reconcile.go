// Package editor holds the question editing core: turning persisted option
// data into one canonical list, the draft a user edits, and the commit and
// cancel protocol that hands the result back to the graph.
package editor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"questionflow/internal/model"
)

// Source says which rule produced a reconciled option list
type Source string

const (
	SourcePlaceholder Source = "placeholder"
	SourceCanonical   Source = "canonical"
	SourceLegacy      Source = "legacy"
)

// Reconciliation is the outcome of a reconcile pass
type Reconciliation struct {
	Options []model.OptionRecord
	Source  Source
	// Ambiguous is set when the canonical list was trusted on its head
	// element while a later element has no text.
	Ambiguous bool
}

var (
	embeddedScore  = regexp.MustCompile(`^(.+?)\s*\(Score:\s*([\d.]+)\)$`)
	leadingDecimal = regexp.MustCompile(`^\d*\.?\d*`)
)

// ParseLegacyLabel splits labels of the form "Onsite (Score: 0.6)". Only the
// leading decimal of the score is read, so "1.2.3" scores 1.2. ok is false
// when the label carries no parseable score.
func ParseLegacyLabel(label string) (model.OptionRecord, bool) {
	m := embeddedScore.FindStringSubmatch(label)
	if m == nil {
		return model.OptionRecord{}, false
	}
	f, err := strconv.ParseFloat(leadingDecimal.FindString(m[2]), 64)
	if err != nil {
		return model.OptionRecord{}, false
	}
	return model.OptionRecord{
		Text:  strings.TrimSpace(m[1]),
		Score: model.ScoreFromFloat(f),
	}, true
}

// PlaceholderOptions returns the two empty records a fresh choice question starts with
func PlaceholderOptions() []model.OptionRecord {
	return []model.OptionRecord{{}, {}}
}

// Reconciler merges legacy and canonical option data
type Reconciler struct {
	mode     ReconcileMode
	reporter Reporter
}

// NewReconciler creates a reconciler. A nil reporter drops diagnostics.
func NewReconciler(mode ReconcileMode, reporter Reporter) *Reconciler {
	if mode == "" {
		mode = ModeCompat
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Reconciler{mode: mode, reporter: reporter}
}

// Reconcile returns the compat-mode canonical list for legacy and canonical
func Reconcile(legacy []model.LegacyOption, canonical []model.OptionRecord) []model.OptionRecord {
	return NewReconciler(ModeCompat, nil).Reconcile(context.Background(), "", legacy, canonical).Options
}

// Reconcile produces one canonical option list. The first matching rule wins:
// no legacy options gives placeholders; a canonical list with a well-formed
// head is taken as is; otherwise legacy entries are merged with canonical
// metadata by index. The result is never empty.
func (r *Reconciler) Reconcile(ctx context.Context, nodeID string, legacy []model.LegacyOption, canonical []model.OptionRecord) Reconciliation {
	if len(legacy) == 0 {
		return Reconciliation{Options: PlaceholderOptions(), Source: SourcePlaceholder}
	}

	if len(canonical) > 0 && !canonical[0].Blank() {
		corrupt := firstBlank(canonical)
		switch {
		case corrupt < 0:
			return Reconciliation{Options: cloneOptions(canonical), Source: SourceCanonical}
		case r.mode == ModeCompat:
			r.reporter.Report(ctx, Diagnostic{
				Code:     CodeReconciliationAmbiguous,
				Severity: SeverityWarn,
				NodeID:   nodeID,
				Message:  fmt.Sprintf("canonical options trusted on first element, option %d has no text", corrupt),
				Err:      ErrReconciliationAmbiguous,
			})
			return Reconciliation{Options: cloneOptions(canonical), Source: SourceCanonical, Ambiguous: true}
		}
	}

	out := make([]model.OptionRecord, len(legacy))
	for i, opt := range legacy {
		var meta model.OptionRecord
		if i < len(canonical) {
			meta = canonical[i]
		}

		if !opt.IsRecord() {
			if parsed, ok := ParseLegacyLabel(opt.Label); ok {
				parsed.AnnotationText = meta.AnnotationText
				out[i] = parsed
				continue
			}
			out[i] = model.OptionRecord{
				Text:           opt.Label,
				Score:          meta.Score,
				AnnotationText: meta.AnnotationText,
			}
			continue
		}

		rec := *opt.Record
		if rec.Blank() {
			rec.Text = fmt.Sprintf("Option %d", i+1)
		}
		if !rec.Score.IsSet() {
			rec.Score = meta.Score
		}
		if rec.AnnotationText == "" {
			rec.AnnotationText = meta.AnnotationText
		}
		out[i] = rec
	}
	return Reconciliation{Options: out, Source: SourceLegacy}
}

func firstBlank(opts []model.OptionRecord) int {
	for i, o := range opts {
		if o.Blank() {
			return i
		}
	}
	return -1
}

func cloneOptions(opts []model.OptionRecord) []model.OptionRecord {
	if opts == nil {
		return nil
	}
	out := make([]model.OptionRecord, len(opts))
	copy(out, opts)
	return out
}
