package pipeline

import (
	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
)

// StageID identifies a pipeline stage
type StageID string

// Pipeline stage identifiers
const (
	StageSelection StageID = "selection"
	StageMissing   StageID = "missing"
	StageEncoding  StageID = "encoding"
	StageScaling   StageID = "scaling"
	StageOutliers  StageID = "outliers"

	stageLoad StageID = "load"
)

// Pipeline stage names
const (
	StageNameSelection = "Column Selection"
	StageNameMissing   = "Missing Values"
	StageNameEncoding  = "Categorical Encoding"
	StageNameScaling   = "Scaling"
	StageNameOutliers  = "Outliers"
)

// Order is the fixed stage sequence enforced by the gate
var Order = []StageID{StageSelection, StageMissing, StageEncoding, StageScaling, StageOutliers}

func (id StageID) index() int {
	for i, s := range Order {
		if s == id {
			return i
		}
	}
	return -1
}

// Outcome is how a stage invocation ended
type Outcome string

const (
	// OutcomeApplied means a strategy ran and the result was committed
	OutcomeApplied Outcome = "applied"
	// OutcomeNoOp means nothing needed handling; the stage is still satisfied
	OutcomeNoOp Outcome = "no_op"
	// OutcomeCancelled means the user backed out; nothing was committed
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeRejected means the input was refused
	OutcomeRejected Outcome = "rejected"
)

// Satisfies reports whether the outcome completes its stage
func (o Outcome) Satisfies() bool {
	return o == OutcomeApplied || o == OutcomeNoOp
}

// Params carries the user's choices for one stage invocation. Each stage
// reads only its own fields.
type Params struct {
	FeatureText string
	TargetText  string

	Missing  dataprep.MissingStrategy
	Constant string

	Encoding dataprep.EncodingStrategy
	Scaling  dataprep.ScalingStrategy
	Outliers dataprep.OutlierStrategy
}

// Report is the user-facing result of a stage invocation
type Report struct {
	Stage      StageID                `json:"stage"`
	Outcome    Outcome                `json:"outcome"`
	Strategy   string                 `json:"strategy,omitempty"`
	Summary    string                 `json:"summary"`
	Counts     []dataprep.ColumnCount `json:"counts,omitempty"`
	Columns    []string               `json:"columns,omitempty"`
	Warnings   []error                `json:"-"`
	RowsBefore int                    `json:"rows_before"`
	RowsAfter  int                    `json:"rows_after"`
}
