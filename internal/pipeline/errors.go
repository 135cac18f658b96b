package pipeline

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of pipeline error
type ErrorType string

const (
	ErrorTypeLocked       ErrorType = "locked"
	ErrorTypeAlreadyDone  ErrorType = "already_done"
	ErrorTypeInvalidState ErrorType = "invalid_state"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// PipelineError represents a stage-gate or stage-execution error
type PipelineError struct {
	Type    ErrorType              `json:"type"`
	Stage   StageID                `json:"stage,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewLockedError reports a stage whose predecessor has not completed
func NewLockedError(stage, missing StageID) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeLocked,
		Stage:   stage,
		Message: fmt.Sprintf("complete %s first", missing),
		Context: map[string]interface{}{
			"requires": string(missing),
		},
	}
}

// NewAlreadyDoneError reports a stage that can no longer be re-entered
func NewAlreadyDoneError(stage StageID) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeAlreadyDone,
		Stage:   stage,
		Message: "stage already completed",
	}
}

// NewInvalidStateError reports an operation the session cannot serve now
func NewInvalidStateError(stage StageID, message string) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeInvalidState,
		Stage:   stage,
		Message: message,
	}
}

// NewValidationError reports user input that was refused
func NewValidationError(stage StageID, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeValidation,
		Stage:   stage,
		Message: "invalid input",
		Cause:   cause,
	}
}

// NewExecutionError reports a stage that failed while running
func NewExecutionError(stage StageID, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: "stage execution failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a context cancelled before the stage ran
func NewCancellationError(stage StageID, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeCancellation,
		Stage:   stage,
		Message: "session was cancelled",
		Cause:   cause,
	}
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Type
	}
	return ErrorTypeExecution
}

// IsLocked reports whether err is a gate refusal for an incomplete predecessor
func IsLocked(err error) bool {
	return GetErrorType(err) == ErrorTypeLocked
}

// IsAlreadyDone reports whether err is a gate refusal for a completed stage
func IsAlreadyDone(err error) bool {
	return GetErrorType(err) == ErrorTypeAlreadyDone
}

// WrapError wraps an error with stage context
func WrapError(err error, stage StageID, message string) *PipelineError {
	if err == nil {
		return nil
	}

	var pErr *PipelineError
	if errors.As(err, &pErr) {
		if pErr.Stage == "" {
			pErr.Stage = stage
		}
		if message != "" {
			pErr.Message = fmt.Sprintf("%s: %s", message, pErr.Message)
		}
		return pErr
	}

	return &PipelineError{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: message,
		Cause:   err,
	}
}
