package architecturecreator

import (
	"context"
	"sync"
	"time"

	apperrors "solution-creator/internal/common/errors"
	"solution-creator/internal/common/logger"

	"github.com/google/uuid"
)

// Controller runs the submission lifecycle of one widget session:
// Idle -> Pending -> Settled(outcome) -> Pending -> ...
//
// The phase is checked and set under mu; the webhook call runs outside it.
type Controller struct {
	mu sync.Mutex

	sessionID string
	config    *Config
	store     *Store
	submitter Submitter
	guard     Guard
	observer  Observer
	logger    logger.Logger
	now       func() time.Time
	newID     func() string

	phase        Phase
	outcome      *Outcome
	submissionID string
}

type ControllerOption func(*Controller)

func WithSessionID(id string) ControllerOption {
	return func(c *Controller) { c.sessionID = id }
}

func WithStore(s *Store) ControllerOption {
	return func(c *Controller) { c.store = s }
}

func WithGuard(g Guard) ControllerOption {
	return func(c *Controller) { c.guard = g }
}

func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

func WithLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(fn func() string) ControllerOption {
	return func(c *Controller) { c.newID = fn }
}

func NewController(config *Config, submitter Submitter, opts ...ControllerOption) *Controller {
	c := &Controller{
		config:    config,
		submitter: submitter,
		phase:     PhaseIdle,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sessionID == "" {
		c.sessionID = c.newID()
	}
	if c.store == nil {
		c.store = NewStore()
	}
	if c.guard == nil {
		c.guard = NewLocalGuard()
	}
	if c.observer == nil {
		c.observer = Observers{}
	}
	if c.logger == nil {
		c.logger = logger.NewNoOpLogger()
	}
	return c
}

func (c *Controller) SessionID() string { return c.sessionID }

func (c *Controller) Store() *Store { return c.store }

// Set updates one form field.
func (c *Controller) Set(field, value string) error {
	return c.store.Set(field, value)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	st := State{Phase: c.phase, SubmissionID: c.submissionID}
	if c.outcome != nil {
		o := *c.outcome
		st.Outcome = &o
		st.Message = o.Message()
	}
	return st
}

// Submit validates the form and, if valid, performs one webhook call.
//
// A submit while Pending returns ErrSubmissionInFlight and the unchanged
// state. An incomplete form returns *InvalidFormError without a transition.
// Webhook failures are not errors: they settle the controller with a Failure
// outcome. ctx cancellation does not stop the call once it has started.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.phase == PhasePending {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, apperrors.ErrSubmissionInFlight
	}

	form := c.store.Snapshot()
	if errs := ValidateForm(form); len(errs) > 0 {
		st := c.stateLocked()
		c.mu.Unlock()
		if vo, ok := c.observer.(ValidationObserver); ok {
			vo.OnValidationFailed(ctx, c.sessionID, errs)
		}
		return st, &InvalidFormError{Errors: errs}
	}

	release, ok, err := c.guard.Acquire(ctx, c.sessionID)
	if err != nil {
		st := c.stateLocked()
		c.mu.Unlock()
		c.logger.Error("in-flight guard unavailable", map[string]interface{}{
			"sessionId": c.sessionID,
			"error":     err,
		})
		return st, apperrors.NewGuardUnavailableError(err)
	}
	if !ok {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, apperrors.ErrSubmissionInFlight
	}

	from := c.phase
	c.phase = PhasePending
	c.outcome = nil
	c.submissionID = c.newID()
	submissionID := c.submissionID
	started := c.now()
	c.mu.Unlock()

	c.observer.OnTransition(ctx, Event{
		SessionID:    c.sessionID,
		SubmissionID: submissionID,
		From:         from,
		To:           PhasePending,
		At:           started,
	})

	payload := BuildPayload(form, BuildContext{
		PortalID:   c.config.PortalID,
		WebhookURL: c.config.WebhookURL,
	})
	settlement := c.submitter.Execute(context.WithoutCancel(ctx), submissionID, payload)
	release()

	settled := c.now()
	outcome := settlement.Outcome

	c.mu.Lock()
	c.phase = PhaseSettled
	c.outcome = &outcome
	if outcome.Kind == OutcomeSuccess {
		c.store.Reset()
	}
	st := c.stateLocked()
	c.mu.Unlock()

	ev := Event{
		SessionID:    c.sessionID,
		SubmissionID: submissionID,
		From:         PhasePending,
		To:           PhaseSettled,
		Outcome:      outcome.Label(),
		StatusCode:   settlement.StatusCode,
		Duration:     settled.Sub(started),
		At:           settled,
	}
	if settlement.Err != nil {
		ev.Reason = string(apperrors.CodeOf(settlement.Err))
	}
	c.observer.OnTransition(ctx, ev)

	return st, nil
}
