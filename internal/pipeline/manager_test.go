package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline/testutil"
	"github.com/sofiagarciap/preprocesador-datos/internal/taxonomy"
)

// stubStage lets a test control what a stage does to its workspace
type stubStage struct {
	pipeline.BaseStage
	run func(ws *pipeline.Workspace) (*pipeline.Report, error)
}

func newStub(id pipeline.StageID, run func(ws *pipeline.Workspace) (*pipeline.Report, error)) *stubStage {
	return &stubStage{BaseStage: pipeline.NewBaseStage(id, "stub"), run: run}
}

func (s *stubStage) Execute(ctx context.Context, ws *pipeline.Workspace, params pipeline.Params) (*pipeline.Report, error) {
	return s.run(ws)
}

func TestManagerWithoutDataset(t *testing.T) {
	ctx := context.Background()
	m := pipeline.NewManager(nil, nil)

	assert.False(t, m.Loaded())
	assert.Nil(t, m.Columns())
	assert.Nil(t, m.Snapshot())
	assert.Equal(t, pipeline.AvailabilityLocked, m.Availability(pipeline.StageSelection))

	_, err := m.SelectColumns(ctx, "1", "2")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeInvalidState)

	_, err = m.View()
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeInvalidState)

	err = m.Load(ctx, "empty", nil)
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeInvalidState)
}

func TestSelectColumns(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)
	assert.Equal(t, testutil.TitanicColumns, m.Columns())

	report, err := m.SelectColumns(ctx, "1,3", "4")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeApplied)
	testutil.AssertState(t, m, pipeline.StateColumnsSelected)

	tax := m.Taxonomy()
	assert.Equal(t, []string{"PassengerId", "Pclass"}, tax.Features)
	assert.Equal(t, "Name", tax.Target)
	assert.Contains(t, tax.Numeric, "PassengerId")
	assert.Contains(t, tax.Numeric, "Pclass")
	assert.NotContains(t, tax.Numeric, "Name")
	assert.Equal(t, []string{"Name"}, tax.Categorical)

	require.NotNil(t, m.Snapshot())
	assert.Equal(t, 7, m.Snapshot().NumRows())
}

func TestSelectColumnsRejected(t *testing.T) {
	tests := []struct {
		name     string
		features string
		target   string
		want     error
	}{
		{"target among features", "1,4", "4", taxonomy.ErrTargetInFeatures},
		{"index out of range", "15,2", "1", taxonomy.ErrIndexOutOfRange},
		{"non-numeric features", "a,b", "2", taxonomy.ErrParse},
		{"two targets", "1,2", "3, 4", taxonomy.ErrParse},
		{"index zero", "0", "2", taxonomy.ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := testutil.LoadedManager(t)

			// a valid selection first, so the reset is observable
			_, err := m.SelectColumns(ctx, "5,6", "10")
			require.NoError(t, err)

			report, err := m.SelectColumns(ctx, tt.features, tt.target)
			assert.Nil(t, report)
			testutil.AssertErrorType(t, err, pipeline.ErrorTypeValidation)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			testutil.AssertState(t, m, pipeline.StateEmpty)
			assert.True(t, m.Taxonomy().IsEmpty())
			assert.Nil(t, m.Snapshot())
			testutil.AssertStageStatus(t, m, pipeline.StageSelection, pipeline.StageStatusFailed)
		})
	}
}

func TestGateLocksLaterStages(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.HandleMissing(ctx, dataprep.MissingMean, "")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeLocked)
	assert.True(t, pipeline.IsLocked(err))

	_, err = m.HandleOutliers(ctx, dataprep.OutlierKeep)
	require.Error(t, err)
	var pErr *pipeline.PipelineError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, string(pipeline.StageSelection), pErr.Context["requires"])

	_, err = m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)

	_, err = m.HandleScaling(ctx, dataprep.ScalingMinMax)
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeLocked)
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, string(pipeline.StageMissing), pErr.Context["requires"])

	testutil.AssertState(t, m, pipeline.StateColumnsSelected)
	assert.Equal(t, pipeline.AvailabilityDone, m.Availability(pipeline.StageSelection))
	assert.Equal(t, pipeline.AvailabilityAvailable, m.Availability(pipeline.StageMissing))
	assert.Equal(t, pipeline.AvailabilityLocked, m.Availability(pipeline.StageEncoding))
}

func TestGateReentry(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)

	// selection may be redone until missing-value handling has run
	_, err = m.SelectColumns(ctx, "5,6,12", "10")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sex", "Age", "Embarked"}, m.Taxonomy().Features)

	report, err := m.HandleMissing(ctx, dataprep.MissingMean, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeApplied)
	testutil.AssertState(t, m, pipeline.StateMissingHandled)

	assert.True(t, pipeline.IsAlreadyDone(m.CanRun(pipeline.StageSelection)))
	assert.NoError(t, m.CanRun(pipeline.StageMissing))
	assert.NoError(t, m.CanRun(pipeline.StageEncoding))
	testutil.AssertErrorType(t, m.CanRun(pipeline.StageOutliers), pipeline.ErrorTypeLocked)

	_, err = m.SelectColumns(ctx, "1", "2")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeAlreadyDone)
	assert.True(t, pipeline.IsAlreadyDone(err))

	// missing-value handling may be repeated until encoding has run
	report, err = m.HandleMissing(ctx, dataprep.MissingMedian, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeNoOp)
	testutil.AssertState(t, m, pipeline.StateMissingHandled)

	_, err = m.HandleCategoricals(ctx, dataprep.EncodingLabel)
	require.NoError(t, err)
	testutil.AssertState(t, m, pipeline.StateCategoricalsHandled)

	_, err = m.HandleMissing(ctx, dataprep.MissingMean, "")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeAlreadyDone)
	_, err = m.HandleCategoricals(ctx, dataprep.EncodingOneHot)
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeAlreadyDone)
	testutil.AssertState(t, m, pipeline.StateCategoricalsHandled)
}

func TestCancelDoesNotAdvance(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)

	report, err := m.HandleMissing(ctx, dataprep.MissingCancel, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeCancelled)
	require.Len(t, report.Counts, 1)
	assert.Equal(t, dataprep.ColumnCount{Column: "Age", Count: 1}, report.Counts[0])

	testutil.AssertState(t, m, pipeline.StateColumnsSelected)
	testutil.AssertStageStatus(t, m, pipeline.StageMissing, pipeline.StageStatusCancelled)
	age, _ := m.Snapshot().Column("Age")
	assert.Equal(t, 1, age.MissingCount())

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, pipeline.OutcomeCancelled, history[1].Outcome)

	// the stage is still offered
	report, err = m.HandleMissing(ctx, dataprep.MissingMedian, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeApplied)
	testutil.AssertState(t, m, pipeline.StateMissingHandled)
}

func TestInvalidStrategyIsRefused(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)

	_, err = m.HandleMissing(ctx, dataprep.MissingStrategy(42), "")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeValidation)

	_, err = m.HandleMissing(ctx, dataprep.MissingConstant, "")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeExecution)

	testutil.AssertState(t, m, pipeline.StateColumnsSelected)
	testutil.AssertStageStatus(t, m, pipeline.StageMissing, pipeline.StageStatusFailed)
}

func TestNoOpStagesStillAdvance(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "3", "2")
	require.NoError(t, err)

	report, err := m.HandleMissing(ctx, dataprep.MissingMean, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeNoOp)

	assert.Empty(t, m.CategoricalCandidates())
	report, err = m.HandleCategoricals(ctx, dataprep.EncodingOneHot)
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeNoOp)

	assert.Equal(t, []string{"Pclass"}, m.ScalingCandidates())
	report, err = m.HandleScaling(ctx, dataprep.ScalingMinMax)
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeApplied)

	assert.Empty(t, m.OutlierSummary())
	report, err = m.HandleOutliers(ctx, dataprep.OutlierDropRows)
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeNoOp)

	assert.True(t, m.Complete())
	for _, info := range m.Stages() {
		assert.Equal(t, pipeline.StageStatusCompleted, info.Status, "stage %s", info.ID)
		assert.Equal(t, pipeline.AvailabilityDone, info.Available, "stage %s", info.ID)
	}
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)
	tax := m.Taxonomy()
	assert.Equal(t, []string{"Age", "Fare"}, tax.Numeric)
	assert.Equal(t, []string{"Sex"}, tax.Categorical)

	summary := m.MissingSummary()
	require.Len(t, summary, 1)
	assert.Equal(t, "Age", summary[0].Column)

	report, err := m.HandleMissing(ctx, dataprep.MissingMean, "")
	require.NoError(t, err)
	assert.Equal(t, "mean", report.Strategy)
	assert.Equal(t, []string{"Age"}, report.Columns)
	age := testutil.Numbers(t, m.Snapshot(), "Age")
	require.Len(t, age, 7)
	assert.InDelta(t, 35.0, age[5], 1e-9)

	assert.Equal(t, []string{"Sex"}, m.CategoricalCandidates())
	report, err = m.HandleCategoricals(ctx, dataprep.EncodingOneHot)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sex_male", "Sex_female"}, report.Columns)
	tax = m.Taxonomy()
	assert.Equal(t, []string{"Sex_male", "Sex_female", "Age"}, tax.Features)
	assert.Equal(t, []string{"Sex_male", "Sex_female"}, tax.Categorical)
	assert.False(t, m.Snapshot().Has("Sex"))

	assert.Equal(t, []string{"Age"}, m.ScalingCandidates())
	_, err = m.HandleScaling(ctx, dataprep.ScalingMinMax)
	require.NoError(t, err)
	age = testutil.Numbers(t, m.Snapshot(), "Age")
	assert.InDelta(t, 0.0, age[0], 1e-9)
	assert.InDelta(t, 1.0, age[6], 1e-9)
	assert.Equal(t,
		testutil.Numbers(t, m.Raw(), "Fare"),
		testutil.Numbers(t, m.Snapshot(), "Fare"),
		"target must not be scaled")

	flagged := m.OutlierSummary()
	require.Len(t, flagged, 2)
	assert.Equal(t, "Age", flagged[0].Column)
	assert.Equal(t, "Fare", flagged[1].Column)
	assert.Equal(t, 1, flagged[1].Count)

	report, err = m.HandleOutliers(ctx, dataprep.OutlierReplaceMedian)
	require.NoError(t, err)
	assert.Equal(t, 7, report.RowsAfter)

	fare := testutil.Numbers(t, m.Snapshot(), "Fare")
	assert.InDelta(t, 8.4583, fare[6], 1e-9)
	assert.InDelta(t, 71.2833, fare[1], 1e-9)
	for _, f := range fare {
		assert.Less(t, f, 143.0)
	}
	age = testutil.Numbers(t, m.Snapshot(), "Age")
	assert.InDelta(t, 0.40625, age[6], 1e-9)

	testutil.AssertState(t, m, pipeline.StateOutliersHandled)
	assert.True(t, m.Complete())

	view, err := m.View()
	require.NoError(t, err)
	assert.Equal(t, "titanic.csv", view.Source)
	assert.Equal(t, "Fare", view.Target())
	assert.InDelta(t, 1000.0, testutil.Numbers(t, view.Original, "Fare")[6], 1e-9)
	assert.Len(t, m.History(), 5)
}

func TestLabelEncodingRetypesColumns(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,12", "2")
	require.NoError(t, err)
	report, err := m.HandleMissing(ctx, dataprep.MissingMode, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeNoOp)

	report, err = m.HandleCategoricals(ctx, dataprep.EncodingLabel)
	require.NoError(t, err)
	assert.Equal(t, "label", report.Strategy)
	assert.Contains(t, report.Summary, "Sex {female=0, male=1}")
	assert.Contains(t, report.Summary, "Embarked {C=0, Q=1, S=2}")

	tax := m.Taxonomy()
	assert.Equal(t, []string{"Sex", "Embarked", "Survived"}, tax.Numeric)
	assert.Empty(t, tax.Categorical)
	assert.Equal(t, []string{"Sex", "Embarked"}, m.ScalingCandidates())
}

func TestDropRowsThenRepeat(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)

	report, err := m.HandleMissing(ctx, dataprep.MissingDropRows, "")
	require.NoError(t, err)
	assert.Equal(t, 7, report.RowsBefore)
	assert.Equal(t, 6, report.RowsAfter)
	assert.Equal(t, 6, m.Snapshot().NumRows())
	assert.Equal(t, 7, m.Raw().NumRows(), "raw dataset is never modified")

	report, err = m.HandleMissing(ctx, dataprep.MissingDropRows, "")
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeNoOp)
}

func TestOutlierDropCountsRows(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)
	_, err = m.HandleMissing(ctx, dataprep.MissingMean, "")
	require.NoError(t, err)
	_, err = m.HandleCategoricals(ctx, dataprep.EncodingOneHot)
	require.NoError(t, err)
	_, err = m.HandleScaling(ctx, dataprep.ScalingMinMax)
	require.NoError(t, err)

	report, err := m.HandleOutliers(ctx, dataprep.OutlierDropRows)
	require.NoError(t, err)
	testutil.AssertOutcome(t, report, pipeline.OutcomeApplied)
	assert.Equal(t, 7, report.RowsBefore)
	assert.Equal(t, m.Snapshot().NumRows(), report.RowsAfter)
	assert.Less(t, report.RowsAfter, report.RowsBefore)
	assert.Contains(t, report.Summary, fmt.Sprintf("Dropped %d rows", report.RowsBefore-report.RowsAfter))
}

func TestFailedStageCommitsNothing(t *testing.T) {
	ctx := context.Background()

	t.Run("stage error", func(t *testing.T) {
		registry := pipeline.DefaultRegistry()
		require.NoError(t, registry.Replace(newStub(pipeline.StageEncoding, func(ws *pipeline.Workspace) (*pipeline.Report, error) {
			ws.Data.FilterRows(func(int) bool { return false })
			ws.Taxonomy.Features = nil
			return nil, pipeline.NewExecutionError(pipeline.StageEncoding, errors.New("disk on fire"))
		})))

		m := pipeline.NewManager(registry, nil)
		require.NoError(t, m.Load(ctx, "titanic.csv", testutil.Titanic(t)))
		_, err := m.SelectColumns(ctx, "5,6", "10")
		require.NoError(t, err)
		_, err = m.HandleMissing(ctx, dataprep.MissingMedian, "")
		require.NoError(t, err)
		before := m.Taxonomy()

		_, err = m.HandleCategoricals(ctx, dataprep.EncodingOneHot)
		testutil.AssertErrorType(t, err, pipeline.ErrorTypeExecution)
		assert.Contains(t, err.Error(), "disk on fire")

		testutil.AssertState(t, m, pipeline.StateMissingHandled)
		assert.Equal(t, 7, m.Snapshot().NumRows())
		assert.Equal(t, before, m.Taxonomy())
		testutil.AssertStageStatus(t, m, pipeline.StageEncoding, pipeline.StageStatusFailed)
	})

	t.Run("inconsistent taxonomy", func(t *testing.T) {
		registry := pipeline.DefaultRegistry()
		require.NoError(t, registry.Replace(newStub(pipeline.StageScaling, func(ws *pipeline.Workspace) (*pipeline.Report, error) {
			cols := []*dataset.Column{}
			for _, name := range ws.Data.Names() {
				if name != ws.Taxonomy.Target {
					col, _ := ws.Data.Column(name)
					cols = append(cols, col)
				}
			}
			ds, err := dataset.FromColumns(cols...)
			if err != nil {
				return nil, err
			}
			ws.Data = ds
			return &pipeline.Report{Stage: pipeline.StageScaling, Outcome: pipeline.OutcomeApplied}, nil
		})))

		m := pipeline.NewManager(registry, nil)
		require.NoError(t, m.Load(ctx, "titanic.csv", testutil.Titanic(t)))
		_, err := m.SelectColumns(ctx, "3", "10")
		require.NoError(t, err)
		_, err = m.HandleMissing(ctx, dataprep.MissingMean, "")
		require.NoError(t, err)
		_, err = m.HandleCategoricals(ctx, dataprep.EncodingOneHot)
		require.NoError(t, err)

		_, err = m.HandleScaling(ctx, dataprep.ScalingMinMax)
		testutil.AssertErrorType(t, err, pipeline.ErrorTypeInvalidState)
		testutil.AssertState(t, m, pipeline.StateCategoricalsHandled)
		assert.True(t, m.Snapshot().Has("Fare"))
	})
}

func TestLoadResetsSession(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)
	_, err = m.HandleMissing(ctx, dataprep.MissingMean, "")
	require.NoError(t, err)

	require.NoError(t, m.Load(ctx, "again.csv", testutil.Titanic(t)))
	testutil.AssertState(t, m, pipeline.StateEmpty)
	assert.Equal(t, "again.csv", m.Source())
	assert.Nil(t, m.Snapshot())
	assert.Empty(t, m.History())
	assert.True(t, m.Taxonomy().IsEmpty())
	for _, info := range m.Stages() {
		assert.Equal(t, pipeline.StageStatusPending, info.Status)
		assert.Zero(t, info.Runs)
	}
}

func TestLoadCopiesDataset(t *testing.T) {
	ctx := context.Background()
	ds := testutil.Titanic(t)
	m := pipeline.NewManager(nil, nil)
	require.NoError(t, m.Load(ctx, "titanic.csv", ds))

	fare, _ := ds.Column("Fare")
	fare.Values[6] = dataset.Float(1)
	assert.InDelta(t, 1000.0, testutil.Numbers(t, m.Raw(), "Fare")[6], 1e-9)
}

func TestViewLockedUntilComplete(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	_, err := m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)

	_, err = m.View()
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeLocked)
}

func TestCancelledContext(t *testing.T) {
	m := testutil.LoadedManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.SelectColumns(ctx, "5,6", "10")
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeCancellation)
	assert.True(t, errors.Is(err, context.Canceled))
	testutil.AssertState(t, m, pipeline.StateEmpty)
}

func TestManagerWithTracer(t *testing.T) {
	ctx := context.Background()
	m := testutil.LoadedManager(t)

	tracer, err := pipeline.NewStageTracer(nil)
	require.NoError(t, err)
	m.SetTracer(tracer)

	_, err = m.SelectColumns(ctx, "5,6", "10")
	require.NoError(t, err)
	_, err = m.HandleMissing(ctx, dataprep.MissingStrategy(99), "")
	require.Error(t, err)
	testutil.AssertState(t, m, pipeline.StateColumnsSelected)
}
