package editor

import (
	"context"
	"log/slog"
)

// Severity of a diagnostic
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Diagnostic is an integration-level event meant for the embedding
// application, not for the person editing the question.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	NodeID   string   `json:"nodeId,omitempty"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

// Reporter receives diagnostics. Implementations must not block.
type Reporter interface {
	Report(ctx context.Context, d Diagnostic)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(ctx context.Context, d Diagnostic)

func (f ReporterFunc) Report(ctx context.Context, d Diagnostic) {
	f(ctx, d)
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, Diagnostic) {}

// SlogReporter writes diagnostics as structured log records
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter creates a reporter logging to logger
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

func (r *SlogReporter) Report(ctx context.Context, d Diagnostic) {
	level := slog.LevelInfo
	switch d.Severity {
	case SeverityWarn:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	attrs := []any{"code", d.Code}
	if d.NodeID != "" {
		attrs = append(attrs, "node_id", d.NodeID)
	}
	if d.Err != nil {
		attrs = append(attrs, "error", d.Err)
	}
	r.logger.Log(ctx, level, d.Message, attrs...)
}

// MultiReporter fans a diagnostic out to every non-nil reporter
func MultiReporter(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(ctx context.Context, d Diagnostic) {
		for _, r := range rs {
			r.Report(ctx, d)
		}
	})
}
