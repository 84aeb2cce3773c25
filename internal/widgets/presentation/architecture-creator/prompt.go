package architecturecreator

import (
	"context"
	"errors"
	"fmt"

	"solution-creator/internal/common/prompt"
	"solution-creator/internal/common/validation"
	"solution-creator/pkg/registry"
)

const maxPromptRounds = 3

// PromptSession fills the form from a terminal and submits it once.
type PromptSession struct {
	driver   prompt.Driver
	ctrl     *Controller
	registry *registry.FieldRegistry
}

func NewPromptSession(driver prompt.Driver, ctrl *Controller, reg *registry.FieldRegistry) *PromptSession {
	return &PromptSession{driver: driver, ctrl: ctrl, registry: reg}
}

// Run prompts every field in registry order, re-asks fields the form
// validation rejects, submits, and reports the outcome.
func (p *PromptSession) Run(ctx context.Context) (State, error) {
	if err := p.driver.Info(ctx, p.ctrl.config.Title); err != nil {
		return State{}, err
	}

	pending := p.registry.Fields
	for round := 0; ; round++ {
		for _, f := range pending {
			value, err := p.ask(ctx, f)
			if err != nil {
				return p.ctrl.State(), err
			}
			if err := p.ctrl.Set(f.Name, value); err != nil {
				return p.ctrl.State(), err
			}
		}

		errs := ValidateForm(p.ctrl.Store().Snapshot())
		if len(errs) == 0 {
			break
		}
		if round+1 >= maxPromptRounds {
			return p.ctrl.State(), &InvalidFormError{Errors: errs}
		}
		pending = p.fieldsFor(errs)
		for _, e := range errs {
			_ = p.driver.Info(ctx, fmt.Sprintf("  %s", e.Error()))
		}
	}

	_ = p.driver.Info(ctx, "Creating Your Presentation...")
	st, err := p.ctrl.Submit(ctx)
	if err != nil {
		return st, err
	}

	_ = p.driver.Info(ctx, st.Message)
	if st.Outcome != nil && st.Outcome.Kind == OutcomeSuccess {
		_ = p.driver.Info(ctx, fmt.Sprintf("Open Your Presentation: %s", st.Outcome.PresentationURL))
		_ = p.driver.Info(ctx, fmt.Sprintf("Presentation ID: %s", st.Outcome.PresentationID))
	}
	return st, nil
}

func (p *PromptSession) ask(ctx context.Context, f registry.Field) (string, error) {
	current, _ := p.ctrl.Store().Get(f.Name)
	help := f.Placeholder

	switch f.Kind {
	case registry.KindSelect:
		labels := make([]string, 0, len(f.Options)+1)
		values := make([]string, 0, len(f.Options)+1)
		if !f.Required {
			labels = append(labels, f.EmptyOption)
			values = append(values, "")
		}
		for _, o := range f.Options {
			labels = append(labels, o.Label)
			values = append(values, o.Value)
		}
		idx, err := p.driver.Select(ctx, prompt.SelectConfig{
			Message:      f.Label,
			Options:      labels,
			DefaultIndex: prompt.IndexOf(values, current),
			Help:         help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(values) {
			return "", fmt.Errorf("no option selected for %s", f.Name)
		}
		return values[idx], nil

	case registry.KindTextarea:
		return p.driver.TextArea(ctx, prompt.TextAreaConfig{
			Message:   f.Label,
			Default:   current,
			Help:      help,
			Validator: fieldValidator(f.Name),
		})

	default:
		return p.driver.Input(ctx, prompt.InputConfig{
			Message:   f.Label,
			Default:   current,
			Help:      help,
			Validator: fieldValidator(f.Name),
		})
	}
}

func (p *PromptSession) fieldsFor(errs []validation.ValidationError) []registry.Field {
	var out []registry.Field
	seen := make(map[string]bool)
	for _, e := range errs {
		if seen[e.Field] {
			continue
		}
		seen[e.Field] = true
		if f, ok := p.registry.Field(e.Field); ok {
			out = append(out, f)
		}
	}
	return out
}

// fieldValidator checks one value with the same rules Submit applies.
func fieldValidator(name string) func(string) error {
	return func(value string) error {
		var form FormData
		if ptr := form.field(name); ptr != nil {
			*ptr = value
		}
		for _, e := range ValidateForm(form) {
			if e.Field == name {
				return errors.New(e.Message)
			}
		}
		return nil
	}
}

// ExitCode maps a settled state to a process exit status.
func ExitCode(st State) int {
	if st.Outcome == nil || st.Outcome.Kind == OutcomeFailure {
		return 1
	}
	return 0
}
