package catalog

import (
	"strings"
	"testing"

	"github.com/parisxmas/windowspec/internal/models"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(c.Sections))
	}

	w, ok := c.Field(models.FieldWidth)
	if !ok {
		t.Fatal("width missing")
	}
	if w.Min != "600" || w.Max != "3000" || !w.Required {
		t.Errorf("unexpected width constraints: %+v", w)
	}

	g, _ := c.Field(models.FieldSolarCoefficient)
	if g.Step != "0.1" {
		t.Errorf("expected step 0.1, got %q", g.Step)
	}

	cr, _ := c.Field(models.FieldClimaticRequirements)
	if cr.MaxLength != models.MaxClimaticRequirementsLength {
		t.Errorf("expected climatic maxlength %d, got %d", models.MaxClimaticRequirementsLength, cr.MaxLength)
	}

	th, _ := c.Field(models.FieldThickness)
	if got := strings.Join(th.Options(), ","); got != "4,6,8,10,12" {
		t.Errorf("unexpected thickness options %s", got)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": `
[[sections]]
id = "x"
  [[sections.fields]]
  name = "colour"
  type = "text"
`,
		"enum as text": `
[[sections]]
id = "x"
  [[sections.fields]]
  name = "glassType"
  type = "text"
`,
		"missing fields": `
[[sections]]
id = "x"
  [[sections.fields]]
  name = "width"
  type = "number"
`,
		"empty": ``,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
