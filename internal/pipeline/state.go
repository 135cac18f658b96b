package pipeline

import (
	"sync"
	"time"
)

// State is the position of a session in the stage gate. It only moves
// forward, except that a new load or a rejected column selection returns it
// to StateEmpty.
type State int

const (
	StateEmpty State = iota
	StateColumnsSelected
	StateMissingHandled
	StateCategoricalsHandled
	StateScaled
	StateOutliersHandled
)

var stateNames = map[State]string{
	StateEmpty:               "empty",
	StateColumnsSelected:     "columns_selected",
	StateMissingHandled:      "missing_handled",
	StateCategoricalsHandled: "categoricals_handled",
	StateScaled:              "scaled",
	StateOutliersHandled:     "outliers_handled",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// requires is the state a stage needs before it may run
func requires(id StageID) State {
	return State(id.index())
}

// completes is the state a stage moves the session to
func completes(id StageID) State {
	return State(id.index() + 1)
}

// StageStatus represents the current status of a stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusCancelled StageStatus = "cancelled"
	StageStatusFailed    StageStatus = "failed"
)

// StageState is the runtime record of one stage across a session
type StageState struct {
	mu        sync.RWMutex
	ID        StageID     `json:"id"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	Runs      int         `json:"runs"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Message   string      `json:"message"`
	Error     error       `json:"-"`
}

// NewStageState creates a pending stage record
func NewStageState(id StageID, name string) *StageState {
	return &StageState{ID: id, Name: name, Status: StageStatusPending}
}

// Start marks the stage active
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.EndTime = nil
	s.Status = StageStatusActive
	s.Runs++
}

// Complete marks the stage completed with a summary
func (s *StageState) Complete(message string) {
	s.finish(StageStatusCompleted, message, nil)
}

// Cancel records that the user backed out
func (s *StageState) Cancel(message string) {
	s.finish(StageStatusCancelled, message, nil)
}

// Fail records a rejected or failed invocation
func (s *StageState) Fail(err error) {
	s.finish(StageStatusFailed, err.Error(), err)
}

func (s *StageState) finish(status StageStatus, message string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = status
	s.Message = message
	s.Error = err
}

// Reset returns the record to pending
func (s *StageState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = StageStatusPending
	s.Runs = 0
	s.StartTime, s.EndTime = nil, nil
	s.Message = ""
	s.Error = nil
}

// StageInfo is a read-only copy of a StageState
type StageInfo struct {
	ID        StageID      `json:"id"`
	Name      string       `json:"name"`
	Status    StageStatus  `json:"status"`
	Runs      int          `json:"runs"`
	Message   string       `json:"message"`
	Available Availability `json:"availability"`
}

// Info returns a copy of the record
func (s *StageState) Info() StageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StageInfo{
		ID:      s.ID,
		Name:    s.Name,
		Status:  s.Status,
		Runs:    s.Runs,
		Message: s.Message,
	}
}

// Duration returns how long the last run took
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Availability is how a stage is offered in the menu
type Availability string

const (
	AvailabilityLocked    Availability = "locked"
	AvailabilityAvailable Availability = "available"
	AvailabilityDone      Availability = "done"
)
