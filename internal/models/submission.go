package models

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidOption = errors.New("value is not one of the field options")
	ErrUnknownSafety = errors.New("unknown safety requirement")
	ErrTooLong       = errors.New("value is too long")
)

// MaxClimaticRequirementsLength bounds the only free-text field, in runes. The
// whole submission has to fit in a navigation cookie.
const MaxClimaticRequirementsLength = 500

// Field names a single editable Submission field. The values double as the
// JSON keys and the HTML input names.
type Field string

const (
	FieldWidth                Field = "width"
	FieldHeight               Field = "height"
	FieldThickness            Field = "thickness"
	FieldChambers             Field = "chambers"
	FieldLightTransmittance   Field = "lightTransmittance"
	FieldLightReflection      Field = "lightReflection"
	FieldUVRetention          Field = "uvRetention"
	FieldSolarCoefficient     Field = "solarCoefficient"
	FieldGlassType            Field = "glassType"
	FieldTintingMethod        Field = "tintingMethod"
	FieldTintColor            Field = "tintColor"
	FieldPurpose              Field = "purpose"
	FieldSafetyRequirements   Field = "safetyRequirements"
	FieldProfileType          Field = "profileType"
	FieldInstallationLocation Field = "installationLocation"
	FieldClimaticRequirements Field = "climaticRequirements"
	FieldPhoto                Field = "photo"
)

const (
	SafetyImpact = "impact"
	SafetyFire   = "fire"
	SafetySound  = "sound"
)

var fieldOrder = []Field{
	FieldWidth, FieldHeight, FieldThickness, FieldChambers,
	FieldLightTransmittance, FieldLightReflection, FieldUVRetention, FieldSolarCoefficient,
	FieldGlassType, FieldTintingMethod, FieldTintColor,
	FieldPurpose, FieldSafetyRequirements,
	FieldProfileType, FieldInstallationLocation, FieldClimaticRequirements,
	FieldPhoto,
}

// Enum option lists, in display order. The first entry is not necessarily the
// default; see NewSubmission.
var options = map[Field][]string{
	FieldThickness:            {"4", "6", "8", "10", "12"},
	FieldChambers:             {"one", "two", "three"},
	FieldGlassType:            {"tempered", "triplex", "multifunctional", "energy-saving"},
	FieldTintingMethod:        {"film", "spraying", "built-in"},
	FieldTintColor:            {"bronze", "gray", "green", "blue", "mirror"},
	FieldPurpose:              {"facades", "panoramic", "office", "balconies", "roof"},
	FieldSafetyRequirements:   {SafetyImpact, SafetyFire, SafetySound},
	FieldProfileType:          {"pvc", "aluminum", "wood"},
	FieldInstallationLocation: {"indoor", "outdoor"},
}

// Fields returns every Submission field in form order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Options returns the declared option values of an enum field, or nil for
// free-form fields.
func Options(f Field) []string {
	opts := options[f]
	if opts == nil {
		return nil
	}
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// IsEnum reports whether f only accepts its declared options.
func IsEnum(f Field) bool {
	_, ok := options[f]
	return ok && f != FieldSafetyRequirements
}

// IsScalar reports whether f holds a single string value settable with With.
func IsScalar(f Field) bool {
	var s Submission
	return s.ref(f) != nil
}

// IsOption reports whether v is a declared option of f.
func IsOption(f Field, v string) bool {
	return isOption(f, v)
}

func isOption(f Field, v string) bool {
	for _, o := range options[f] {
		if o == v {
			return true
		}
	}
	return false
}

// Submission is the transient form record of one questionnaire. Values are
// never persisted. Methods never mutate the receiver: every edit returns a new
// snapshot so earlier snapshots stay valid.
type Submission struct {
	Width                string   `json:"width"`
	Height               string   `json:"height"`
	Thickness            string   `json:"thickness"`
	Chambers             string   `json:"chambers"`
	LightTransmittance   string   `json:"lightTransmittance"`
	LightReflection      string   `json:"lightReflection"`
	UVRetention          string   `json:"uvRetention"`
	SolarCoefficient     string   `json:"solarCoefficient"`
	GlassType            string   `json:"glassType"`
	TintingMethod        string   `json:"tintingMethod"`
	TintColor            string   `json:"tintColor"`
	Purpose              string   `json:"purpose"`
	SafetyRequirements   []string `json:"safetyRequirements"`
	ProfileType          string   `json:"profileType"`
	InstallationLocation string   `json:"installationLocation"`
	ClimaticRequirements string   `json:"climaticRequirements"`
	Photo                *Photo   `json:"photo"`
}

// NewSubmission returns a Submission with every select pre-populated.
func NewSubmission() Submission {
	return Submission{
		Thickness:            "4",
		Chambers:             "one",
		LightTransmittance:   "50",
		UVRetention:          "99",
		SolarCoefficient:     "0.4",
		GlassType:            "tempered",
		TintingMethod:        "film",
		TintColor:            "gray",
		Purpose:              "facades",
		SafetyRequirements:   []string{},
		ProfileType:          "pvc",
		InstallationLocation: "indoor",
	}
}

func (s Submission) clone() Submission {
	out := s
	out.SafetyRequirements = make([]string, len(s.SafetyRequirements))
	copy(out.SafetyRequirements, s.SafetyRequirements)
	if s.Photo != nil {
		p := *s.Photo
		out.Photo = &p
	}
	return out
}

func (s *Submission) ref(f Field) *string {
	switch f {
	case FieldWidth:
		return &s.Width
	case FieldHeight:
		return &s.Height
	case FieldThickness:
		return &s.Thickness
	case FieldChambers:
		return &s.Chambers
	case FieldLightTransmittance:
		return &s.LightTransmittance
	case FieldLightReflection:
		return &s.LightReflection
	case FieldUVRetention:
		return &s.UVRetention
	case FieldSolarCoefficient:
		return &s.SolarCoefficient
	case FieldGlassType:
		return &s.GlassType
	case FieldTintingMethod:
		return &s.TintingMethod
	case FieldTintColor:
		return &s.TintColor
	case FieldPurpose:
		return &s.Purpose
	case FieldProfileType:
		return &s.ProfileType
	case FieldInstallationLocation:
		return &s.InstallationLocation
	case FieldClimaticRequirements:
		return &s.ClimaticRequirements
	}
	return nil
}

// Get returns the value of a scalar field.
func (s Submission) Get(f Field) (string, bool) {
	p := s.ref(f)
	if p == nil {
		return "", false
	}
	return *p, true
}

// With returns a copy of s with exactly one scalar field replaced. Enum fields
// only accept their declared options. Numeric fields are not range checked:
// min/max are input hints only.
func (s Submission) With(f Field, value string) (Submission, error) {
	out := s.clone()
	p := out.ref(f)
	if p == nil {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if IsEnum(f) && !isOption(f, value) {
		return s, fmt.Errorf("%w: %s=%q", ErrInvalidOption, f, value)
	}
	if f == FieldClimaticRequirements && utf8.RuneCountInString(value) > MaxClimaticRequirementsLength {
		return s, fmt.Errorf("%w: %s exceeds %d characters", ErrTooLong, f, MaxClimaticRequirementsLength)
	}
	*p = value
	return out, nil
}

// HasSafety reports whether tag is in the safety requirement set.
func (s Submission) HasSafety(tag string) bool {
	for _, r := range s.SafetyRequirements {
		if r == tag {
			return true
		}
	}
	return false
}

// WithSafety returns a copy of s with tag added (checked) or removed. Adding a
// tag already present is a no-op, so the set never holds duplicates.
func (s Submission) WithSafety(tag string, checked bool) (Submission, error) {
	if !isOption(FieldSafetyRequirements, tag) {
		return s, fmt.Errorf("%w: %q", ErrUnknownSafety, tag)
	}
	out := s.clone()
	if checked {
		if !s.HasSafety(tag) {
			out.SafetyRequirements = append(out.SafetyRequirements, tag)
		}
		return out, nil
	}
	reqs := make([]string, 0, len(out.SafetyRequirements))
	for _, r := range out.SafetyRequirements {
		if r != tag {
			reqs = append(reqs, r)
		}
	}
	out.SafetyRequirements = reqs
	return out, nil
}

// ToggleSafety flips membership of tag.
func (s Submission) ToggleSafety(tag string) (Submission, error) {
	return s.WithSafety(tag, !s.HasSafety(tag))
}

// WithPhoto returns a copy of s referencing p. A nil p clears the photo.
func (s Submission) WithPhoto(p *Photo) Submission {
	out := s.clone()
	if p == nil {
		out.Photo = nil
		return out
	}
	cp := *p
	out.Photo = &cp
	return out
}
