// Package support implements the customer-support agent: a session entry
// point plus a bounded planner loop over the fixed toolset.
package support

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/state"
	toolx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/tool"
)

type Config struct {
	MaxSteps              int `envconfig:"MAX_STEPS" split_words:"true" default:"8"`
	MaxValidationFailures int `envconfig:"MAX_VALIDATION_FAILURES" split_words:"true" default:"3"`
	TransientRetries      int `envconfig:"TRANSIENT_RETRIES" split_words:"true" default:"1"`
}

// IdentityResolver maps an email to the internal customer id once per
// session.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (int64, error)
}

type Agent struct {
	resolver IdentityResolver
	planner  contractx.Planner
	deps     toolx.Deps

	maxSteps              int
	maxValidationFailures int
	transientRetries      int

	now func() time.Time
}

func New(resolver IdentityResolver, planner contractx.Planner, deps toolx.Deps, cfg Config) (*Agent, error) {
	if resolver == nil {
		return nil, errors.New("identity resolver is required")
	}
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if deps.Store == nil {
		return nil, errors.New("store gateway is required")
	}
	if deps.Shipping == nil {
		return nil, errors.New("shipping client is required")
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 8
	}
	maxValidationFailures := cfg.MaxValidationFailures
	if maxValidationFailures <= 0 {
		maxValidationFailures = 3
	}
	transientRetries := cfg.TransientRetries
	if transientRetries < 0 {
		transientRetries = 0
	}

	return &Agent{
		resolver:              resolver,
		planner:               planner,
		deps:                  deps,
		maxSteps:              maxSteps,
		maxValidationFailures: maxValidationFailures,
		transientRetries:      transientRetries,
		now:                   time.Now,
	}, nil
}

// Session is one conversation. It owns its identity and step counter;
// concurrent sessions share nothing but the read-only store.
type Session struct {
	agent    *Agent
	state    *statex.SessionState
	executor toolx.Executor
}

// StartSession resolves the email to a customer id and binds it into a
// fresh executor. Resolution failure is fatal: no tools run without an
// identity.
func (a *Agent) StartSession(ctx context.Context, email string) (*Session, error) {
	customerID, err := a.resolver.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	st, err := statex.NewSessionState(uuid.NewString(), email, customerID, a.maxSteps, a.now())
	if err != nil {
		return nil, err
	}

	return &Session{
		agent:    a,
		state:    st,
		executor: toolx.NewExecutor(a.deps, customerID),
	}, nil
}

func (s *Session) ID() string {
	return s.state.SessionID
}

func (s *Session) CustomerID() int64 {
	return s.state.CustomerID
}
