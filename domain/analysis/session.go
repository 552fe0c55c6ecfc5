package analysis

import (
	"time"

	"goanalytics/domain/core"
)

// SessionState represents the lifecycle state of an analysis session
type SessionState string

const (
	SessionStateIdle      SessionState = "idle"
	SessionStateRunning   SessionState = "running"
	SessionStateSucceeded SessionState = "succeeded"
	SessionStateFailed    SessionState = "failed"
	SessionStateCancelled SessionState = "cancelled"
)

// IsTerminal reports whether the state is one of the settled outcomes
func (s SessionState) IsTerminal() bool {
	return s == SessionStateSucceeded || s == SessionStateFailed || s == SessionStateCancelled
}

// CancelledMessage is the error message recorded for user cancellations
const CancelledMessage = "cancelled by user"

// Session is the live unit of work. Values handed out by the orchestrator are
// snapshots; mutating them does not affect orchestrator state.
type Session struct {
	ID             core.SessionID  `json:"id"`
	MethodID       string          `json:"method_id"`
	DatasetName    string          `json:"dataset_name"`
	State          SessionState    `json:"state"`
	Parameters     ParameterSet    `json:"parameters"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	SettledAt      *time.Time      `json:"settled_at,omitempty"`
	Token          core.TokenID    `json:"token,omitempty"`
	Result         *AnalysisResult `json:"result,omitempty"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	ElapsedMillis  int64           `json:"elapsed_millis"`
}

// Outcome is the terminal disposition recorded in history
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// HistoryEntry records one settled session
type HistoryEntry struct {
	MethodDisplayName string    `json:"method_display_name"`
	DatasetName       string    `json:"dataset_name"`
	StartedAt         time.Time `json:"started_at"`
	SettledAt         time.Time `json:"settled_at"`
	DurationMillis    int64     `json:"duration_millis"`
	Outcome           Outcome   `json:"outcome"`
}

// EventKind classifies a notification for the presentation layer
type EventKind string

const (
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
	EventCancelled EventKind = "cancelled"
)

// Notification tells the presentation layer that a session settled.
// Rendering it is entirely the receiver's concern.
type Notification struct {
	Kind              EventKind      `json:"kind"`
	SessionID         core.SessionID `json:"session_id"`
	MethodDisplayName string         `json:"method_display_name"`
	DurationMillis    int64          `json:"duration_millis"`
	Message           string         `json:"message,omitempty"`
}
