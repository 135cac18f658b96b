package testutil

import (
	"errors"
	"testing"

	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
)

// AssertState verifies the manager's gate position
func AssertState(t *testing.T, m *pipeline.Manager, expected pipeline.State) {
	t.Helper()
	if got := m.State(); got != expected {
		t.Errorf("state = %v, want %v", got, expected)
	}
}

// AssertErrorType verifies err is a pipeline error of the given type
func AssertErrorType(t *testing.T, err error, expected pipeline.ErrorType) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", expected)
	}
	var pErr *pipeline.PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *pipeline.PipelineError, got %T: %v", err, err)
	}
	if pErr.Type != expected {
		t.Errorf("error type = %v, want %v (%v)", pErr.Type, expected, err)
	}
}

// AssertStageStatus verifies the recorded status of one stage
func AssertStageStatus(t *testing.T, m *pipeline.Manager, id pipeline.StageID, expected pipeline.StageStatus) {
	t.Helper()
	for _, info := range m.Stages() {
		if info.ID == id {
			if info.Status != expected {
				t.Errorf("stage %s status = %v, want %v", id, info.Status, expected)
			}
			return
		}
	}
	t.Errorf("stage %s not found", id)
}

// AssertOutcome verifies a report's outcome
func AssertOutcome(t *testing.T, report *pipeline.Report, expected pipeline.Outcome) {
	t.Helper()
	if report == nil {
		t.Fatal("report is nil")
	}
	if report.Outcome != expected {
		t.Errorf("stage %s outcome = %v, want %v", report.Stage, report.Outcome, expected)
	}
}
