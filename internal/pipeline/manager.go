package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/taxonomy"
)

// Manager owns one interactive session: the raw dataset, the working
// snapshot, the column taxonomy and the stage gate
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *StageTracer

	mu       sync.RWMutex
	source   string
	raw      *dataset.Dataset
	snapshot *dataset.Dataset
	taxonomy taxonomy.Taxonomy
	state    State
	stages   map[StageID]*StageState
	history  []Report
}

// NewManager creates a session manager. A nil registry uses the default
// stages; a nil config uses NewConfig.
func NewManager(registry *Registry, config *Config) *Manager {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if config == nil {
		config = NewConfig()
	}

	stages := make(map[StageID]*StageState, len(Order))
	for _, s := range registry.List() {
		stages[s.ID()] = NewStageState(s.ID(), s.Name())
	}

	return &Manager{
		registry: registry,
		config:   config,
		stages:   stages,
	}
}

// SetTracer enables OpenTelemetry instrumentation of stage invocations
func (m *Manager) SetTracer(tracer *StageTracer) {
	m.tracer = tracer
}

// Config returns the pipeline configuration
func (m *Manager) Config() *Config {
	return m.config
}

// Load starts a new session on ds. Any previous selection and stage results
// are discarded.
func (m *Manager) Load(ctx context.Context, source string, ds *dataset.Dataset) error {
	if ds == nil {
		return NewInvalidStateError(stageLoad, "no dataset")
	}
	if ds.NumColumns() == 0 {
		return NewInvalidStateError(stageLoad, "dataset has no columns")
	}

	m.mu.Lock()
	m.source = source
	m.raw = ds.Clone()
	m.advance(stageLoad, OutcomeApplied, nil)
	m.mu.Unlock()

	m.logSessionLoad(ctx, source, ds.NumRows(), ds.NumColumns())
	return nil
}

// Loaded reports whether a dataset is available
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw != nil
}

// Source returns where the loaded dataset came from
func (m *Manager) Source() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source
}

// Columns returns the raw dataset's column names, the list the user picks
// indices from
func (m *Manager) Columns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == nil {
		return nil
	}
	return m.raw.Names()
}

// Raw returns a copy of the loaded dataset
func (m *Manager) Raw() *dataset.Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == nil {
		return nil
	}
	return m.raw.Clone()
}

// State returns the current gate position
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Complete reports whether every stage has been satisfied
func (m *Manager) Complete() bool {
	return m.State() == StateOutliersHandled
}

// Taxonomy returns a copy of the committed taxonomy
func (m *Manager) Taxonomy() taxonomy.Taxonomy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.taxonomy.Clone()
}

// Snapshot returns a copy of the committed working dataset
func (m *Manager) Snapshot() *dataset.Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil
	}
	return m.snapshot.Clone()
}

// History returns the reports of every committed or cancelled invocation
func (m *Manager) History() []Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Report(nil), m.history...)
}

// Stages returns the record of every stage in gate order
func (m *Manager) Stages() []StageInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]StageInfo, 0, len(Order))
	for _, id := range Order {
		st, ok := m.stages[id]
		if !ok {
			continue
		}
		info := st.Info()
		info.Available = m.availability(id)
		out = append(out, info)
	}
	return out
}

// Availability reports how a stage is offered right now
func (m *Manager) Availability(id StageID) Availability {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.availability(id)
}

func (m *Manager) availability(id StageID) Availability {
	if m.raw == nil || m.state < requires(id) {
		return AvailabilityLocked
	}
	if m.state >= completes(id) {
		return AvailabilityDone
	}
	return AvailabilityAvailable
}

// SelectColumns maps 1-based feature and target indices onto the loaded
// dataset's columns. A refused selection clears features and target.
func (m *Manager) SelectColumns(ctx context.Context, featureText, targetText string) (*Report, error) {
	return m.run(ctx, StageSelection, Params{FeatureText: featureText, TargetText: targetText})
}

// MissingSummary counts gaps per selected column in the current snapshot
func (m *Manager) MissingSummary() []dataprep.ColumnCount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil
	}
	return dataprep.MissingCounts(m.snapshot, m.taxonomy.Selected())
}

// HandleMissing runs the missing-value stage
func (m *Manager) HandleMissing(ctx context.Context, strategy dataprep.MissingStrategy, constant string) (*Report, error) {
	return m.run(ctx, StageMissing, Params{Missing: strategy, Constant: constant})
}

// CategoricalCandidates returns the categorical features the encoder would
// process
func (m *Manager) CategoricalCandidates() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.taxonomy.CategoricalFeatures()
}

// HandleCategoricals runs the encoding stage
func (m *Manager) HandleCategoricals(ctx context.Context, strategy dataprep.EncodingStrategy) (*Report, error) {
	return m.run(ctx, StageEncoding, Params{Encoding: strategy})
}

// ScalingCandidates returns the numeric features the scaler would process
func (m *Manager) ScalingCandidates() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.taxonomy.NumericFeatures()
}

// HandleScaling runs the scaling stage
func (m *Manager) HandleScaling(ctx context.Context, strategy dataprep.ScalingStrategy) (*Report, error) {
	return m.run(ctx, StageScaling, Params{Scaling: strategy})
}

// OutlierSummary returns the fences of every numeric column holding outliers
// in the current snapshot
func (m *Manager) OutlierSummary() []dataprep.OutlierBounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil
	}
	return dataprep.DetectOutliers(m.snapshot, m.taxonomy.Numeric, m.config.IQRFactor)
}

// HandleOutliers runs the outlier stage
func (m *Manager) HandleOutliers(ctx context.Context, strategy dataprep.OutlierStrategy) (*Report, error) {
	return m.run(ctx, StageOutliers, Params{Outliers: strategy})
}

// Run invokes a stage by ID with explicit parameters
func (m *Manager) Run(ctx context.Context, id StageID, params Params) (*Report, error) {
	return m.run(ctx, id, params)
}

// run gates, executes and commits one stage invocation. The stage works on
// clones; nothing is committed unless the outcome satisfies the stage and
// the resulting taxonomy is consistent with the resulting dataset.
func (m *Manager) run(ctx context.Context, id StageID, params Params) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewCancellationError(id, err)
	}
	stage, err := m.registry.Get(id)
	if err != nil {
		return nil, &PipelineError{Type: ErrorTypeNotFound, Stage: id, Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate(id); err != nil {
		m.logStageRejected(ctx, id, err)
		return nil, err
	}

	ws := &Workspace{Taxonomy: m.taxonomy.Clone(), Config: m.config}
	if id == StageSelection {
		ws.Data = m.raw.Clone()
		ws.Taxonomy = taxonomy.Taxonomy{}
	} else {
		ws.Data = m.snapshot.Clone()
	}

	record := m.stages[id]
	record.Start()
	m.logStageStart(ctx, id, m.state)

	var span trace.Span
	if m.tracer != nil {
		ctx, span = m.tracer.TraceStage(ctx, id, m.state)
	}
	started := time.Now()
	rowsBefore := ws.Data.NumRows()

	report, err := stage.Execute(ctx, ws, params)
	if report != nil {
		report.RowsBefore = rowsBefore
	}
	if err == nil && report != nil && report.Outcome.Satisfies() {
		if verr := ws.Taxonomy.Validate(ws.Data); verr != nil {
			err = NewInvalidStateError(id, fmt.Sprintf("inconsistent taxonomy: %v", verr))
		}
	}
	if err == nil && report == nil {
		err = NewExecutionError(id, fmt.Errorf("stage returned no report"))
	}
	duration := time.Since(started)
	if span != nil {
		m.tracer.RecordStage(ctx, span, id, report, err, duration)
	}

	if err != nil {
		record.Fail(err)
		if id == StageSelection {
			m.advance(id, OutcomeRejected, nil)
		}
		m.logStageRejected(ctx, id, err)
		return nil, err
	}

	m.advance(id, report.Outcome, ws)
	m.history = append(m.history, *report)
	if report.Outcome == OutcomeCancelled {
		record.Cancel(report.Summary)
		m.logStageCancelled(ctx, id)
		return report, nil
	}
	record.Complete(report.Summary)
	m.logStageComplete(ctx, report, m.state, duration)
	return report, nil
}

// CanRun returns the error the gate would raise for id right now, or nil
func (m *Manager) CanRun(id StageID) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gate(id)
}

// gate decides whether a stage may run in the current state
func (m *Manager) gate(id StageID) error {
	if m.raw == nil {
		return NewInvalidStateError(id, "no dataset loaded")
	}
	switch {
	case m.state < requires(id):
		return NewLockedError(id, Order[int(m.state)])
	case m.state == requires(id):
		return nil
	case m.state == completes(id) && repeatable(id):
		return nil
	default:
		return NewAlreadyDoneError(id)
	}
}

// repeatable stages may run again until the next stage has run
func repeatable(id StageID) bool {
	return id == StageSelection || id == StageMissing
}

// advance is the only writer of the gate state. A satisfied outcome commits
// the workspace and moves the state forward; a rejected selection clears the
// selection; a load starts over.
func (m *Manager) advance(id StageID, outcome Outcome, ws *Workspace) {
	switch {
	case id == stageLoad:
		m.snapshot = nil
		m.taxonomy = taxonomy.Taxonomy{}
		m.state = StateEmpty
		m.history = nil
		for _, st := range m.stages {
			st.Reset()
		}
	case outcome == OutcomeRejected && id == StageSelection:
		m.snapshot = nil
		m.taxonomy = taxonomy.Taxonomy{}
		m.state = StateEmpty
	case outcome.Satisfies():
		if ws != nil {
			m.snapshot = ws.Data
			m.taxonomy = ws.Taxonomy
		}
		if next := completes(id); next > m.state {
			m.state = next
		}
	}
}
