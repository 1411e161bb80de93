package assistant

import (
	"sync"
	"time"
)

// State is a step of a single assistant run.
type State int

const (
	StateIdle State = iota
	StateListening
	StateKeywordDetected
	StateRecordingCommand
	StateTranscribing
	StateGenerating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateListening:
		return "LISTENING"
	case StateKeywordDetected:
		return "KEYWORD_DETECTED"
	case StateRecordingCommand:
		return "RECORDING_COMMAND"
	case StateTranscribing:
		return "TRANSCRIBING"
	case StateGenerating:
		return "GENERATING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// StateChange represents a state transition event.
type StateChange struct {
	From      State
	To        State
	Timestamp time.Time
	Reason    string
}

var validTransitions = map[State][]State{
	StateIdle:             {StateListening},
	StateListening:        {StateKeywordDetected},
	StateKeywordDetected:  {StateRecordingCommand},
	StateRecordingCommand: {StateTranscribing},
	StateTranscribing:     {StateGenerating},
	StateGenerating:       {StateDone},
}

// InvalidTransitionError represents an invalid state transition attempt
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return "invalid state transition from " + e.From.String() + " to " + e.To.String()
}

type stateMachine struct {
	mu       sync.RWMutex
	current  State
	now      func() time.Time
	listener func(StateChange)
}

func newStateMachine(now func() time.Time, listener func(StateChange)) *stateMachine {
	if now == nil {
		now = time.Now
	}
	return &stateMachine{
		current:  StateIdle,
		now:      now,
		listener: listener,
	}
}

func (sm *stateMachine) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// transitionValid reports whether from may move to to. Failed is reachable
// from every state that has not already finished.
func transitionValid(from, to State) bool {
	if to == StateFailed {
		return from != StateDone && from != StateFailed
	}

	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (sm *stateMachine) Transition(to State, reason string) error {
	sm.mu.Lock()
	from := sm.current
	if !transitionValid(from, to) {
		sm.mu.Unlock()
		return &InvalidTransitionError{From: from, To: to}
	}
	sm.current = to
	listener := sm.listener
	sm.mu.Unlock()

	if listener != nil {
		listener(StateChange{
			From:      from,
			To:        to,
			Timestamp: sm.now(),
			Reason:    reason,
		})
	}
	return nil
}
