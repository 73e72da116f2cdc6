package live

import (
	"encoding/json"
	"time"

	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/solver"
)

// EventType is the "type" field of every serialised event.
type EventType string

const (
	EventLog      EventType = "log"
	EventStep     EventType = "step"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one item of an attempt's stream: any number of log and step
// events, then at most one complete or error event.
type Event interface {
	Type() EventType
}

// LogEvent is advisory.
type LogEvent struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// StepEvent reports one accepted guess.
type StepEvent struct {
	Guess     string       `json:"guess"`
	Pattern   game.Pattern `json:"pattern"`
	Remaining int          `json:"remaining"`
	Degraded  bool         `json:"degraded"`
}

// CompleteEvent ends a solved or failed attempt.
type CompleteEvent struct {
	Success bool                 `json:"success"`
	Answer  string               `json:"answer,omitempty"`
	Steps   []solver.GuessResult `json:"steps"`
	Reason  string               `json:"reason,omitempty"`
}

// ErrorEvent ends an aborted attempt.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (LogEvent) Type() EventType      { return EventLog }
func (StepEvent) Type() EventType     { return EventStep }
func (CompleteEvent) Type() EventType { return EventComplete }
func (ErrorEvent) Type() EventType    { return EventError }

func (e LogEvent) MarshalJSON() ([]byte, error) {
	type plain LogEvent
	return json.Marshal(struct {
		Type EventType `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e StepEvent) MarshalJSON() ([]byte, error) {
	type plain StepEvent
	return json.Marshal(struct {
		Type EventType `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e CompleteEvent) MarshalJSON() ([]byte, error) {
	type plain CompleteEvent
	if e.Steps == nil {
		e.Steps = []solver.GuessResult{}
	}
	return json.Marshal(struct {
		Type EventType `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e ErrorEvent) MarshalJSON() ([]byte, error) {
	type plain ErrorEvent
	return json.Marshal(struct {
		Type EventType `json:"type"`
		plain
	}{e.Type(), plain(e)})
}
