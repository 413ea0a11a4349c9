// Package catalog describes how the questionnaire is laid out: sections, the
// input type of every field and the native input constraints (min, max, step,
// required) rendered into the HTML form.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/parisxmas/windowspec/internal/models"
)

//go:embed window.toml
var windowTOML []byte

const (
	TypeNumber     = "number"
	TypeSelect     = "select"
	TypeCheckboxes = "checkboxes"
	TypeText       = "text"
	TypeFile       = "file"
)

// FieldDefinition carries the presentation properties of one form field.
// Label and Placeholder are message IDs resolved by the locale package.
type FieldDefinition struct {
	Name        models.Field `toml:"name"`
	Label       string       `toml:"label"`
	Type        string       `toml:"type"`
	Required    bool         `toml:"required"`
	Placeholder string       `toml:"placeholder"`
	Min         string       `toml:"min"`
	Max         string       `toml:"max"`
	Step        string       `toml:"step"`
	MaxLength   int          `toml:"maxlength"`
	Accept      string       `toml:"accept"`
	Wide        bool         `toml:"wide"`
}

// Options returns the option values for select and checkbox fields.
func (f FieldDefinition) Options() []string {
	return models.Options(f.Name)
}

type Section struct {
	ID     string            `toml:"id"`
	Title  string            `toml:"title"`
	Icon   string            `toml:"icon"`
	Fields []FieldDefinition `toml:"fields"`
}

type Catalog struct {
	Sections []Section `toml:"sections"`
}

// Load parses the embedded window catalog and validates it against the
// Submission model.
func Load() (*Catalog, error) {
	return Parse(windowTOML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Field looks up a field definition by name.
func (c *Catalog) Field(name models.Field) (FieldDefinition, bool) {
	for _, s := range c.Sections {
		for _, f := range s.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FieldDefinition{}, false
}

// Validate checks that every model field appears exactly once and that input
// types agree with the model (enum fields are selects, the safety set is a
// checkbox group).
func (c *Catalog) Validate() error {
	if len(c.Sections) == 0 {
		return errors.New("catalog has no sections")
	}
	known := map[models.Field]bool{}
	for _, f := range models.Fields() {
		known[f] = false
	}
	for _, s := range c.Sections {
		for _, f := range s.Fields {
			seen, ok := known[f.Name]
			if !ok {
				return fmt.Errorf("section %s: unknown field %q", s.ID, f.Name)
			}
			if seen {
				return fmt.Errorf("section %s: duplicate field %q", s.ID, f.Name)
			}
			known[f.Name] = true

			switch {
			case models.IsEnum(f.Name) && f.Type != TypeSelect:
				return fmt.Errorf("field %s: enum must be a %s, got %q", f.Name, TypeSelect, f.Type)
			case f.Name == models.FieldSafetyRequirements && f.Type != TypeCheckboxes:
				return fmt.Errorf("field %s: must be %s, got %q", f.Name, TypeCheckboxes, f.Type)
			case f.Name == models.FieldPhoto && f.Type != TypeFile:
				return fmt.Errorf("field %s: must be %s, got %q", f.Name, TypeFile, f.Type)
			case f.Name == models.FieldClimaticRequirements && f.MaxLength != models.MaxClimaticRequirementsLength:
				return fmt.Errorf("field %s: maxlength must be %d, got %d", f.Name, models.MaxClimaticRequirementsLength, f.MaxLength)
			}
		}
	}
	for name, seen := range known {
		if !seen {
			return fmt.Errorf("field %q missing from catalog", name)
		}
	}
	return nil
}
