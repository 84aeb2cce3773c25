// pkg/registry/schema.go
package registry

// Input kinds a field may declare.
const (
	KindEmail    = "email"
	KindText     = "text"
	KindSelect   = "select"
	KindTextarea = "textarea"
	KindURL      = "url"
)

// FieldRegistry describes a form module: its meta, the settings the host
// page can supply, and the ordered input fields.
type FieldRegistry struct {
	Version  string     `yaml:"version"`
	Module   ModuleMeta `yaml:"module"`
	Settings []Setting  `yaml:"settings"`
	Fields   []Field    `yaml:"fields"`
}

type ModuleMeta struct {
	Label string `yaml:"label"`
	Help  string `yaml:"help"`
}

type Setting struct {
	Name    string `yaml:"name"`
	Label   string `yaml:"label"`
	Kind    string `yaml:"kind"` // text | richtext
	Default string `yaml:"default"`
	Help    string `yaml:"help,omitempty"`
}

type Field struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Kind        string   `yaml:"kind"`
	Required    bool     `yaml:"required"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Rows        int      `yaml:"rows,omitempty"`
	EmptyOption string   `yaml:"emptyOption,omitempty"`
	Options     []Option `yaml:"options,omitempty"`
}

type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// OptionValues returns the allowed values of a select field.
func (f Field) OptionValues() []string {
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return values
}

// OptionLabel maps a select value to its display label, or returns value.
func (f Field) OptionLabel(value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
