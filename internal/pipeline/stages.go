package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
	"github.com/sofiagarciap/preprocesador-datos/internal/taxonomy"
)

// SelectionStage maps the user's column indices onto features and target
type SelectionStage struct {
	BaseStage
}

// NewSelectionStage creates the column selection stage
func NewSelectionStage() *SelectionStage {
	return &SelectionStage{BaseStage: NewBaseStage(StageSelection, StageNameSelection)}
}

// Execute implements Stage
func (s *SelectionStage) Execute(ctx context.Context, ws *Workspace, params Params) (*Report, error) {
	features, target, err := taxonomy.Select(ws.Data.Names(), params.FeatureText, params.TargetText)
	if err != nil {
		return nil, NewValidationError(s.ID(), err)
	}
	tax, err := taxonomy.Classify(ws.Data, features, target)
	if err != nil {
		return nil, NewValidationError(s.ID(), err)
	}
	ws.Taxonomy = tax

	r := s.report(ws, OutcomeApplied, fmt.Sprintf("Features: %s; target: %s", strings.Join(features, ", "), target))
	r.Columns = tax.Selected()
	return r, nil
}

// MissingStage fills or drops gaps in the selected columns
type MissingStage struct {
	BaseStage
}

// NewMissingStage creates the missing-value stage
func NewMissingStage() *MissingStage {
	return &MissingStage{BaseStage: NewBaseStage(StageMissing, StageNameMissing)}
}

// Execute implements Stage
func (s *MissingStage) Execute(ctx context.Context, ws *Workspace, params Params) (*Report, error) {
	reviewed := ws.Taxonomy.Selected()
	counts := dataprep.MissingCounts(ws.Data, reviewed)
	if len(counts) == 0 {
		return s.report(ws, OutcomeNoOp, "No missing values in the selected columns"), nil
	}
	if params.Missing == dataprep.MissingCancel {
		r := s.report(ws, OutcomeCancelled, "Missing-value handling cancelled")
		r.Counts = counts
		return r, nil
	}
	if !params.Missing.Valid() {
		return nil, NewValidationError(s.ID(), fmt.Errorf("unknown missing-value strategy %d", params.Missing))
	}

	res, err := dataprep.HandleMissing(ws.Data, columnsOf(counts), params.Missing, params.Constant)
	if err != nil {
		return nil, NewExecutionError(s.ID(), err)
	}
	ws.Taxonomy = ws.Taxonomy.Reclassify(ws.Data)

	r := s.report(ws, OutcomeApplied, "")
	r.Strategy = params.Missing.String()
	r.Counts = counts
	r.Warnings = res.Warnings
	r.RowsAfter = ws.Data.NumRows()
	for _, w := range res.Warnings {
		slog.WarnContext(ctx, "column_skipped",
			slog.String("stage", string(s.ID())),
			slog.String("strategy", r.Strategy),
			slog.String("reason", w.Error()))
	}

	if params.Missing == dataprep.MissingDropRows {
		r.Summary = fmt.Sprintf("Dropped %d rows with missing values", res.RowsDropped)
		return r, nil
	}
	filled := make([]string, 0, len(res.Fills))
	for _, f := range res.Fills {
		filled = append(filled, fmt.Sprintf("%s=%s (%d)", f.Column, f.Value, f.Filled))
		r.Columns = append(r.Columns, f.Column)
	}
	r.Summary = fmt.Sprintf("Filled with %s: %s", r.Strategy, strings.Join(filled, ", "))
	return r, nil
}

// EncodingStage encodes categorical features
type EncodingStage struct {
	BaseStage
}

// NewEncodingStage creates the categorical encoding stage
func NewEncodingStage() *EncodingStage {
	return &EncodingStage{BaseStage: NewBaseStage(StageEncoding, StageNameEncoding)}
}

// Execute implements Stage
func (s *EncodingStage) Execute(ctx context.Context, ws *Workspace, params Params) (*Report, error) {
	candidates := ws.Taxonomy.CategoricalFeatures()
	if len(candidates) == 0 {
		return s.report(ws, OutcomeNoOp, "No categorical features to encode"), nil
	}
	if params.Encoding == dataprep.EncodingCancel {
		return s.report(ws, OutcomeCancelled, "Categorical encoding cancelled"), nil
	}

	r := s.report(ws, OutcomeApplied, "")
	r.Strategy = params.Encoding.String()
	switch params.Encoding {
	case dataprep.EncodingOneHot:
		generated, err := dataprep.OneHot(ws.Data, candidates)
		if err != nil {
			return nil, NewExecutionError(s.ID(), err)
		}
		ws.Taxonomy = ws.Taxonomy.ExpandFeatures(generated)
		for _, c := range candidates {
			r.Counts = append(r.Counts, dataprep.ColumnCount{Column: c, Count: len(generated[c])})
			r.Columns = append(r.Columns, generated[c]...)
		}
		r.Summary = fmt.Sprintf("One-hot encoded %s into %d columns", strings.Join(candidates, ", "), len(r.Columns))
	case dataprep.EncodingLabel:
		mappings, err := dataprep.Label(ws.Data, candidates)
		if err != nil {
			return nil, NewExecutionError(s.ID(), err)
		}
		ws.Taxonomy = ws.Taxonomy.Retype(candidates, taxonomy.KindNumeric)
		parts := make([]string, 0, len(candidates))
		for _, c := range candidates {
			r.Counts = append(r.Counts, dataprep.ColumnCount{Column: c, Count: len(mappings[c])})
			parts = append(parts, fmt.Sprintf("%s {%s}", c, formatCodes(mappings[c])))
		}
		r.Columns = candidates
		r.Summary = "Label encoded " + strings.Join(parts, "; ")
	default:
		return nil, NewValidationError(s.ID(), fmt.Errorf("unknown encoding strategy %d", params.Encoding))
	}
	return r, nil
}

// ScalingStage rescales numeric features; the target is never touched
type ScalingStage struct {
	BaseStage
}

// NewScalingStage creates the scaling stage
func NewScalingStage() *ScalingStage {
	return &ScalingStage{BaseStage: NewBaseStage(StageScaling, StageNameScaling)}
}

// Execute implements Stage
func (s *ScalingStage) Execute(ctx context.Context, ws *Workspace, params Params) (*Report, error) {
	candidates := ws.Taxonomy.NumericFeatures()
	if len(candidates) == 0 {
		return s.report(ws, OutcomeNoOp, "No numeric features to scale"), nil
	}
	if params.Scaling == dataprep.ScalingCancel {
		return s.report(ws, OutcomeCancelled, "Scaling cancelled"), nil
	}
	if params.Scaling != dataprep.ScalingMinMax && params.Scaling != dataprep.ScalingZScore {
		return nil, NewValidationError(s.ID(), fmt.Errorf("unknown scaling strategy %d", params.Scaling))
	}

	scales, err := dataprep.Scale(ws.Data, candidates, params.Scaling)
	if err != nil {
		return nil, NewExecutionError(s.ID(), err)
	}
	r := s.report(ws, OutcomeApplied, "")
	r.Strategy = params.Scaling.String()
	var degenerate []string
	for _, sc := range scales {
		r.Columns = append(r.Columns, sc.Column)
		if sc.Degenerate {
			degenerate = append(degenerate, sc.Column)
		}
	}
	r.Summary = fmt.Sprintf("Scaled %s with %s", strings.Join(r.Columns, ", "), r.Strategy)
	if len(degenerate) > 0 {
		r.Summary += fmt.Sprintf(" (constant columns set to 0: %s)", strings.Join(degenerate, ", "))
	}
	return r, nil
}

// OutlierStage detects values outside the IQR fences of every numeric column
type OutlierStage struct {
	BaseStage
}

// NewOutlierStage creates the outlier stage
func NewOutlierStage() *OutlierStage {
	return &OutlierStage{BaseStage: NewBaseStage(StageOutliers, StageNameOutliers)}
}

// Execute implements Stage
func (s *OutlierStage) Execute(ctx context.Context, ws *Workspace, params Params) (*Report, error) {
	cfg := ws.Config
	if cfg == nil {
		cfg = NewConfig()
	}
	numeric := ws.Taxonomy.Numeric
	flagged := dataprep.DetectOutliers(ws.Data, numeric, cfg.IQRFactor)
	if len(flagged) == 0 {
		return s.report(ws, OutcomeNoOp, "No outliers detected"), nil
	}
	counts := make([]dataprep.ColumnCount, len(flagged))
	for i, b := range flagged {
		counts[i] = dataprep.ColumnCount{Column: b.Column, Count: b.Count}
	}
	if params.Outliers == dataprep.OutlierCancel {
		r := s.report(ws, OutcomeCancelled, "Outlier handling cancelled")
		r.Counts = counts
		return r, nil
	}
	if !params.Outliers.Valid() {
		return nil, NewValidationError(s.ID(), fmt.Errorf("unknown outlier strategy %d", params.Outliers))
	}

	res, err := dataprep.HandleOutliers(ws.Data, numeric, params.Outliers, cfg.IQRFactor, cfg.FilterMode)
	if err != nil {
		return nil, NewExecutionError(s.ID(), err)
	}
	r := s.report(ws, OutcomeApplied, "")
	r.Strategy = params.Outliers.String()
	r.Counts = counts
	r.Columns = columnsOf(counts)
	r.RowsAfter = ws.Data.NumRows()
	switch params.Outliers {
	case dataprep.OutlierDropRows:
		r.Summary = fmt.Sprintf("Dropped %d rows with outliers (%s filtering)", res.RowsDropped, cfg.FilterMode)
	case dataprep.OutlierReplaceMedian:
		r.Summary = fmt.Sprintf("Replaced outliers with the median in %s", strings.Join(r.Columns, ", "))
	default:
		r.Summary = "Outliers kept unchanged"
	}
	return r, nil
}

func columnsOf(counts []dataprep.ColumnCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Column
	}
	return out
}

func formatCodes(codes map[string]int) string {
	type pair struct {
		value string
		code  int
	}
	pairs := make([]pair, 0, len(codes))
	for v, c := range codes {
		pairs = append(pairs, pair{v, c})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].code < pairs[j].code })
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%d", p.value, p.code)
	}
	return strings.Join(parts, ", ")
}
