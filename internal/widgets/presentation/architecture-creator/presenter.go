package architecturecreator

import (
	"embed"
	"fmt"
	"io/fs"
	"net/url"

	"solution-creator/internal/common/validation"
	"solution-creator/pkg/registry"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed assets/*
var assets embed.FS

const widgetTemplate = "widget.html"

// DefaultRegistry returns the embedded field definitions.
func DefaultRegistry() (*registry.FieldRegistry, error) {
	data, err := assets.ReadFile("assets/fields.yaml")
	if err != nil {
		return nil, err
	}
	return validatedRegistry(registry.Parse(data))
}

// LoadFieldRegistry reads path, or the embedded definitions when path is "".
func LoadFieldRegistry(path string) (*registry.FieldRegistry, error) {
	if path == "" {
		return DefaultRegistry()
	}
	return validatedRegistry(registry.LoadRegistry(path))
}

func validatedRegistry(reg *registry.FieldRegistry, err error) (*registry.FieldRegistry, error) {
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(FieldNames...); err != nil {
		return nil, fmt.Errorf("field registry: %w", err)
	}
	return reg, nil
}

// View is everything the widget markup depends on.
type View struct {
	State  State
	Form   FormData
	Errors []validation.ValidationError
	Action string
}

type fieldView struct {
	registry.Field
	Value   string
	Error   string
	Options []optionView
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type presentationView struct {
	ID  string
	URL string
}

type Presenter struct {
	config   *Config
	registry *registry.FieldRegistry
	tpl      *pongo2.Template
	policy   *bluemonday.Policy
}

func NewPresenter(config *Config, reg *registry.FieldRegistry) (*Presenter, error) {
	if reg == nil {
		var err error
		if reg, err = LoadFieldRegistry(config.FieldsPath); err != nil {
			return nil, err
		}
	}

	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("architecture-creator", pongo2.NewFSLoader(sub))
	tpl, err := set.FromFile(widgetTemplate)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", widgetTemplate, err)
	}

	p := &Presenter{config: config, registry: reg, tpl: tpl}
	if config.SanitizeDescription {
		p.policy = bluemonday.UGCPolicy()
	}
	return p, nil
}

func (p *Presenter) Registry() *registry.FieldRegistry { return p.registry }

// Render produces the widget markup for v. It has no side effects.
func (p *Presenter) Render(v View) (string, error) {
	action := v.Action
	if action == "" {
		action = "submit"
	}

	ctx := pongo2.Context{
		"title":       p.title(),
		"description": p.description(),
		"action":      action,
		"pending":     v.State.Pending(),
		"fields":      p.fieldViews(v),
	}

	if !v.State.Pending() && v.State.Outcome != nil {
		ctx["message"] = v.State.Message
		ctx["outcome"] = v.State.Outcome.Label()
		if v.State.Outcome.Kind == OutcomeSuccess {
			pv := presentationView{ID: v.State.Outcome.PresentationID}
			// only web links are offered for opening
			if safeLink(v.State.Outcome.PresentationURL) {
				pv.URL = v.State.Outcome.PresentationURL
			}
			ctx["presentation"] = pv
		}
	}

	out, err := p.tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render widget: %w", err)
	}
	return out, nil
}

func (p *Presenter) title() string {
	if p.config.Title != "" {
		return p.config.Title
	}
	return p.registry.SettingDefault("title")
}

// description is trusted HTML unless sanitizing is switched on.
func (p *Presenter) description() string {
	if p.policy != nil {
		return p.policy.Sanitize(p.config.Description)
	}
	return p.config.Description
}

func (p *Presenter) fieldViews(v View) []fieldView {
	values := v.Form.Values()
	errs := make(map[string]string)
	for _, e := range v.Errors {
		if _, seen := errs[e.Field]; !seen {
			errs[e.Field] = e.Message
		}
	}

	views := make([]fieldView, 0, len(p.registry.Fields))
	for _, f := range p.registry.Fields {
		fv := fieldView{
			Field: f,
			Value: values[f.Name],
			Error: errs[f.Name],
		}
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{
				Value:    o.Value,
				Label:    o.Label,
				Selected: o.Value == values[f.Name],
			})
		}
		views = append(views, fv)
	}
	return views
}

func safeLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
