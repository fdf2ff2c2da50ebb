package support

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/state"
)

// Ask runs the bounded reasoning loop for one question: plan, act, observe,
// until the planner answers or the step budget runs out. Exactly one tool
// call is outstanding at a time and every tool failure becomes an
// observation rather than a crash.
func (s *Session) Ask(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}

	st := s.state
	st.BeginQuestion()

	for {
		// The loop is cancellable between steps; an in-flight tool call is
		// not interrupted.
		if err := ctx.Err(); err != nil {
			st.Abort()
			return "", err
		}

		if !st.ConsumeStep() {
			st.Abort()
			return "", fmt.Errorf("%w: no answer after %d steps", contractx.ErrBudgetExhausted, st.MaxSteps)
		}

		decision, err := s.agent.planner.Decide(ctx, contractx.PlannerRequest{
			Question: message,
			Steps:    st.Steps,
		})
		if err != nil {
			st.Abort()
			return "", err
		}

		if decision.ToolCall == nil {
			answer := strings.TrimSpace(decision.Answer)
			if answer == "" {
				st.Abort()
				return "", fmt.Errorf("%w: planner returned neither tool call nor answer", contractx.ErrSchemaViolation)
			}
			if err := st.Transition(statex.PhaseAnswering); err != nil {
				return "", err
			}
			return answer, nil
		}

		if err := st.Transition(statex.PhaseActing); err != nil {
			return "", err
		}

		result, toolErr := s.invokeTool(ctx, *decision.ToolCall)

		if err := st.Transition(statex.PhaseObserving); err != nil {
			return "", err
		}
		st.RecordStep(contractx.StepRecord{
			Request: *decision.ToolCall,
			Result:  result,
		})

		if isValidationFailure(toolErr) {
			if streak := st.NoteValidationFailure(); streak >= s.agent.maxValidationFailures {
				st.Abort()
				return "", fmt.Errorf("%w: %d consecutive invalid tool calls", contractx.ErrBudgetExhausted, streak)
			}
		} else {
			st.ResetValidationStreak()
		}

		if err := st.Transition(statex.PhasePlanning); err != nil {
			return "", err
		}
	}
}

// invokeTool executes one tool call, retrying once (by default) when the
// failure is transient. A failed retry still consumes only this step; the
// error is folded into the returned observation.
func (s *Session) invokeTool(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	result, err := s.executor(ctx, req.Tool, req.Args)
	for attempt := 0; attempt < s.agent.transientRetries && isTransient(err); attempt++ {
		log.Debug().
			Str("session_id", s.state.SessionID).
			Str("tool", req.Tool).
			Int("attempt", attempt+1).
			Msg("retrying transient tool failure")
		result, err = s.executor(ctx, req.Tool, req.Args)
	}

	if err != nil {
		log.Debug().
			Str("session_id", s.state.SessionID).
			Str("tool", req.Tool).
			Err(err).
			Msg("tool call failed")
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}, err
	}
	return result, nil
}

func isTransient(err error) bool {
	return errors.Is(err, contractx.ErrUpstreamUnavailable) ||
		errors.Is(err, contractx.ErrSearchUnavailable)
}

func isValidationFailure(err error) bool {
	return errors.Is(err, contractx.ErrValidation) ||
		errors.Is(err, contractx.ErrInvalidRange)
}
