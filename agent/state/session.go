package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
)

// SessionState is the per-conversation context object: the resolved
// identity, the reasoning-loop phase, the step budget, and the observations
// of the current question. It is ephemeral and never persisted; concurrent
// sessions each own their own instance and share nothing mutable.
type SessionState struct {
	SessionID  string
	Email      string
	CustomerID int64

	MaxSteps  int
	StepsUsed int
	Phase     Phase

	// Steps holds the tool calls and observations of the question being
	// answered right now; reset on each new question.
	Steps []contractx.StepRecord

	validationStreak int

	StartedAt time.Time
}

type Phase string

const (
	PhasePlanning  Phase = "planning"
	PhaseActing    Phase = "acting"
	PhaseObserving Phase = "observing"
	PhaseAnswering Phase = "answering"
	PhaseAborted   Phase = "aborted"
)

var (
	ErrInvalidSession    = errors.New("session id is empty")
	ErrInvalidTransition = errors.New("invalid phase transition")
)

func NewSessionState(sessionID, email string, customerID int64, maxSteps int, now time.Time) (*SessionState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer id must be positive", contractx.ErrValidation)
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("%w: max steps must be positive", contractx.ErrValidation)
	}
	return &SessionState{
		SessionID:  strings.TrimSpace(sessionID),
		Email:      strings.TrimSpace(email),
		CustomerID: customerID,
		MaxSteps:   maxSteps,
		Phase:      PhasePlanning,
		StartedAt:  now.UTC(),
	}, nil
}

// BeginQuestion resets the loop state for a new user question.
func (s *SessionState) BeginQuestion() {
	s.StepsUsed = 0
	s.Phase = PhasePlanning
	s.Steps = nil
	s.validationStreak = 0
}

// ConsumeStep reserves one reasoning step. It returns false once the budget
// is exhausted; the caller must then abort.
func (s *SessionState) ConsumeStep() bool {
	if s.StepsUsed >= s.MaxSteps {
		return false
	}
	s.StepsUsed++
	return true
}

// Transition moves the loop to the next phase, rejecting moves the state
// machine does not allow. Terminal phases accept no transitions.
func (s *SessionState) Transition(next Phase) error {
	if s.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, s.Phase)
	}
	allowed := map[Phase][]Phase{
		PhasePlanning:  {PhaseActing, PhaseAnswering, PhaseAborted},
		PhaseActing:    {PhaseObserving, PhaseAborted},
		PhaseObserving: {PhasePlanning, PhaseAborted},
	}
	for _, p := range allowed[s.Phase] {
		if p == next {
			s.Phase = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Phase, next)
}

func (s *SessionState) Terminal() bool {
	return s.Phase == PhaseAnswering || s.Phase == PhaseAborted
}

func (s *SessionState) Abort() {
	s.Phase = PhaseAborted
}

// RecordStep folds a completed tool call into the question's history.
func (s *SessionState) RecordStep(rec contractx.StepRecord) {
	s.Steps = append(s.Steps, rec)
}

// NoteValidationFailure tracks consecutive bad-argument observations and
// returns the current streak, so the loop can abort a planner that never
// corrects itself.
func (s *SessionState) NoteValidationFailure() int {
	s.validationStreak++
	return s.validationStreak
}

func (s *SessionState) ResetValidationStreak() {
	s.validationStreak = 0
}
