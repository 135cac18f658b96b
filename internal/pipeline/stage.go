package pipeline

import (
	"context"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/taxonomy"
)

// Workspace is the private copy a stage works on. The manager commits Data
// and Taxonomy together only when the stage is satisfied.
type Workspace struct {
	Data     *dataset.Dataset
	Taxonomy taxonomy.Taxonomy
	Config   *Config
}

// Stage represents a single step of the preprocessing pipeline
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() StageID

	// Name returns the human-readable name for this stage
	Name() string

	// Execute runs the stage against the workspace. A returned error means
	// nothing is committed.
	Execute(ctx context.Context, ws *Workspace, params Params) (*Report, error)
}

// BaseStage provides common functionality for Stage implementations
type BaseStage struct {
	id   StageID
	name string
}

// NewBaseStage creates a new base stage
func NewBaseStage(id StageID, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the stage ID
func (b *BaseStage) ID() StageID {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the stage name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// report starts a report for this stage from the workspace. The manager
// overwrites RowsBefore with the count taken before Execute ran.
func (b *BaseStage) report(ws *Workspace, outcome Outcome, summary string) *Report {
	rows := ws.Data.NumRows()
	return &Report{
		Stage:      b.id,
		Outcome:    outcome,
		Summary:    summary,
		RowsBefore: rows,
		RowsAfter:  rows,
	}
}
