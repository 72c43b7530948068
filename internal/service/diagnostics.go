package service

import (
	"context"
	"log/slog"

	"questionflow/internal/editor"
	"questionflow/internal/metrics"
)

// diagnosticsReporter sends editor diagnostics to the log, the metrics and
// the questionnaire's change feed
func diagnosticsReporter(questionnaireID string, logger *slog.Logger, m *metrics.Metrics, b Broadcaster) editor.Reporter {
	return editor.MultiReporter(
		editor.NewSlogReporter(logger.With("questionnaire_id", questionnaireID)),
		editor.ReporterFunc(func(_ context.Context, d editor.Diagnostic) {
			m.Diagnostic(string(d.Code), string(d.Severity))
		}),
		editor.ReporterFunc(func(_ context.Context, d editor.Diagnostic) {
			b.Broadcast(questionnaireID, EventEditorDiagnostic, d)
		}),
	)
}
