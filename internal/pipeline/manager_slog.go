package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// logSessionLoad logs a dataset being loaded into the session
func (m *Manager) logSessionLoad(ctx context.Context, source string, rows, columns int) {
	slog.InfoContext(ctx, "dataset_loaded",
		slog.String("source", source),
		slog.Int("rows", rows),
		slog.Int("columns", columns))
}

// logStageStart logs the start of a stage invocation
func (m *Manager) logStageStart(ctx context.Context, stage StageID, state State) {
	slog.InfoContext(ctx, "stage_start",
		slog.String("stage", string(stage)),
		slog.String("state", state.String()))
}

// logStageComplete logs a committed stage
func (m *Manager) logStageComplete(ctx context.Context, report *Report, state State, duration time.Duration) {
	slog.InfoContext(ctx, "stage_complete",
		slog.String("stage", string(report.Stage)),
		slog.String("outcome", string(report.Outcome)),
		slog.String("strategy", report.Strategy),
		slog.Int("rows_before", report.RowsBefore),
		slog.Int("rows_after", report.RowsAfter),
		slog.Int("warnings", len(report.Warnings)),
		slog.String("state", state.String()),
		slog.Duration("duration", duration))
}

// logStageCancelled logs a stage the user backed out of
func (m *Manager) logStageCancelled(ctx context.Context, stage StageID) {
	slog.InfoContext(ctx, "stage_cancelled",
		slog.String("stage", string(stage)))
}

// logStageRejected logs a gate refusal or a failed invocation
func (m *Manager) logStageRejected(ctx context.Context, stage StageID, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	slog.WarnContext(ctx, "stage_rejected",
		slog.String("stage", string(stage)),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", errorMsg))
}
