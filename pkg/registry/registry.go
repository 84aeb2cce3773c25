// pkg/registry/registry.go
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

func LoadRegistry(path string) (*FieldRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a registry document. It does not validate it.
func Parse(data []byte) (*FieldRegistry, error) {
	var reg FieldRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Validate checks field definitions. When known is non-empty every field name
// must appear in it.
func (r *FieldRegistry) Validate(known ...string) error {
	if len(r.Fields) == 0 {
		return fmt.Errorf("registry declares no fields")
	}

	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}

	seen := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with label %q has no name", f.Label)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		if len(allowed) > 0 && !allowed[f.Name] {
			return fmt.Errorf("unknown field %q", f.Name)
		}

		switch f.Kind {
		case KindEmail, KindText, KindTextarea, KindURL:
		case KindSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("select field %q has no options", f.Name)
			}
		default:
			return fmt.Errorf("field %q has unsupported kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// Field looks up a field definition by name.
func (r *FieldRegistry) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns field names in declaration order.
func (r *FieldRegistry) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// SettingDefault returns the declared default of a setting, or "".
func (r *FieldRegistry) SettingDefault(name string) string {
	for _, s := range r.Settings {
		if s.Name == name {
			return s.Default
		}
	}
	return ""
}

// SetAttribute updates one presentation attribute of a field.
func (r *FieldRegistry) SetAttribute(name, attr, value string) error {
	for i := range r.Fields {
		if r.Fields[i].Name != name {
			continue
		}
		f := &r.Fields[i]
		switch attr {
		case "label":
			f.Label = value
		case "placeholder":
			f.Placeholder = value
		case "emptyOption":
			f.EmptyOption = value
		case "rows":
			rows, err := strconv.Atoi(value)
			if err != nil || rows < 1 {
				return fmt.Errorf("invalid rows value %q", value)
			}
			f.Rows = rows
		default:
			return fmt.Errorf("unknown attribute: %s", attr)
		}
		return nil
	}
	return fmt.Errorf("field %s not found", name)
}

// SaveRegistry writes reg as YAML, creating the parent directory if needed.
func SaveRegistry(reg *FieldRegistry, path string) error {
	data, err := yaml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
