// cmd/tools/fields-registry/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"solution-creator/pkg/registry"

	sac "solution-creator/internal/widgets/presentation/architecture-creator"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Export command flags
	exportPath := exportCmd.String("path", "configs/fields.yaml", "Where to write the built-in field definitions")

	// Update command flags
	updatePath := updateCmd.String("path", "configs/fields.yaml", "Path to registry file")
	name := updateCmd.String("name", "", "Field name (e.g., customerName)")
	attr := updateCmd.String("attr", "", "Attribute to update (label, placeholder, emptyOption, rows)")
	value := updateCmd.String("value", "", "New value for the attribute")

	// Validate command flags
	validatePath := validateCmd.String("path", "configs/fields.yaml", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportRegistry(*exportPath); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote field definitions to %s\n", *exportPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *name == "" || *attr == "" {
			fmt.Println("Error: name and attr are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateField(*updatePath, *name, *attr, *value); err != nil {
			fmt.Printf("Error updating field: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated field %s, %s to %q\n", *name, *attr, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := sac.LoadFieldRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d fields.\n", len(reg.Fields))

	case "help":
		fallthrough
	default:
		help()
	}
}

func exportRegistry(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	reg, err := sac.DefaultRegistry()
	if err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func updateField(path, name, attr, value string) error {
	reg, err := sac.LoadFieldRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.SetAttribute(name, attr, value); err != nil {
		return err
	}
	// the edited document must still load in the widget
	if err := reg.Validate(sac.FieldNames...); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func help() {
	fmt.Print(`
Usage: fields-registry <command> [flags]

Commands:
  export   Write the built-in field definitions to a file for editing
  update   Change a field's label, placeholder, emptyOption or rows
  validate Check a field definitions file
  help     Show this help message

Examples:
  fields-registry export -path configs/fields.yaml
  fields-registry update -path configs/fields.yaml -name customerName -attr label -value "Account Name"
  fields-registry validate -path configs/fields.yaml

Point widget.fields_path at the file to use it.
` + "\n")
}
