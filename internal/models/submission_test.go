package models

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewSubmissionDefaults(t *testing.T) {
	s := NewSubmission()
	for _, f := range Fields() {
		if !IsEnum(f) {
			continue
		}
		v, ok := s.Get(f)
		if !ok {
			t.Fatalf("enum field %s has no scalar value", f)
		}
		if !isOption(f, v) {
			t.Errorf("default %s=%q is not a declared option", f, v)
		}
	}
	if len(s.SafetyRequirements) != 0 {
		t.Errorf("expected empty safety set, got %v", s.SafetyRequirements)
	}
	if s.Photo != nil {
		t.Error("expected no photo by default")
	}
}

func TestWithChangesExactlyOneField(t *testing.T) {
	edits := []struct {
		field Field
		value string
	}{
		{FieldWidth, "1200"},
		{FieldHeight, "1500"},
		{FieldThickness, "6"},
		{FieldChambers, "three"},
		{FieldLightTransmittance, "30"},
		{FieldLightReflection, "12"},
		{FieldUVRetention, "80"},
		{FieldSolarCoefficient, "0.5"},
		{FieldGlassType, "triplex"},
		{FieldTintingMethod, "built-in"},
		{FieldTintColor, "mirror"},
		{FieldPurpose, "roof"},
		{FieldProfileType, "wood"},
		{FieldInstallationLocation, "outdoor"},
		{FieldClimaticRequirements, "-40C winters"},
	}

	for _, e := range edits {
		before := NewSubmission()
		after, err := before.With(e.field, e.value)
		if err != nil {
			t.Fatalf("With(%s): %v", e.field, err)
		}
		if got, _ := after.Get(e.field); got != e.value {
			t.Errorf("%s: expected %q, got %q", e.field, e.value, got)
		}
		for _, other := range Fields() {
			if other == e.field {
				continue
			}
			b, okb := before.Get(other)
			a, oka := after.Get(other)
			if okb != oka || a != b {
				t.Errorf("editing %s changed %s: %q -> %q", e.field, other, b, a)
			}
		}
		if !reflect.DeepEqual(before.SafetyRequirements, after.SafetyRequirements) {
			t.Errorf("editing %s changed safety requirements", e.field)
		}
	}
}

func TestWithLeavesPriorSnapshot(t *testing.T) {
	s0 := NewSubmission()
	s1, err := s0.With(FieldWidth, "1200")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := s1.WithSafety(SafetyFire, true)
	if err != nil {
		t.Fatal(err)
	}
	if s0.Width != "" || s1.Width != "1200" {
		t.Fatalf("prior snapshots were mutated: %q %q", s0.Width, s1.Width)
	}
	if len(s1.SafetyRequirements) != 0 {
		t.Fatalf("safety toggle leaked into prior snapshot: %v", s1.SafetyRequirements)
	}
	if !s2.HasSafety(SafetyFire) {
		t.Fatal("expected fire in new snapshot")
	}
}

func TestWithRejectsInvalid(t *testing.T) {
	s := NewSubmission()

	got, err := s.With(FieldGlassType, "plexiglass")
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if got.GlassType != "tempered" {
		t.Errorf("rejected edit changed value to %q", got.GlassType)
	}

	if _, err := s.With("colour", "red"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if _, err := s.With(FieldSafetyRequirements, "fire"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("safety requirements must go through WithSafety, got %v", err)
	}
}

func TestWithAcceptsOutOfRangeNumbers(t *testing.T) {
	s, err := NewSubmission().With(FieldWidth, "99999")
	if err != nil {
		t.Fatalf("numeric hints must not be enforced: %v", err)
	}
	if s.Width != "99999" {
		t.Fatalf("expected 99999, got %q", s.Width)
	}
}

func TestSafetyRoundTrip(t *testing.T) {
	base, _ := NewSubmission().WithSafety(SafetySound, true)

	for _, tag := range []string{SafetyImpact, SafetyFire} {
		added, err := base.WithSafety(tag, true)
		if err != nil {
			t.Fatal(err)
		}
		if len(added.SafetyRequirements) != len(base.SafetyRequirements)+1 {
			t.Fatalf("add %s: expected one more tag, got %v", tag, added.SafetyRequirements)
		}
		removed, err := added.WithSafety(tag, false)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(removed.SafetyRequirements, base.SafetyRequirements) {
			t.Errorf("round trip %s: expected %v, got %v", tag, base.SafetyRequirements, removed.SafetyRequirements)
		}
	}
}

func TestSafetyNoDuplicates(t *testing.T) {
	s := NewSubmission()
	for i := 0; i < 3; i++ {
		var err error
		s, err = s.WithSafety(SafetyImpact, true)
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(s.SafetyRequirements) != 1 {
		t.Fatalf("expected one tag, got %v", s.SafetyRequirements)
	}
}

func TestToggleSafety(t *testing.T) {
	s := NewSubmission()
	on, err := s.ToggleSafety(SafetyFire)
	if err != nil {
		t.Fatal(err)
	}
	if !on.HasSafety(SafetyFire) {
		t.Fatal("expected fire after first toggle")
	}
	off, _ := on.ToggleSafety(SafetyFire)
	if off.HasSafety(SafetyFire) || len(off.SafetyRequirements) != 0 {
		t.Fatalf("expected empty set after second toggle, got %v", off.SafetyRequirements)
	}
	if _, err := s.ToggleSafety("bulletproof"); !errors.Is(err, ErrUnknownSafety) {
		t.Errorf("expected ErrUnknownSafety, got %v", err)
	}
}

func TestWithPhotoCopies(t *testing.T) {
	p := &Photo{PreviewID: "a", FileName: "w.png"}
	s := NewSubmission().WithPhoto(p)
	p.FileName = "changed.png"
	if s.Photo.FileName != "w.png" {
		t.Fatal("photo reference aliases caller value")
	}
	if cleared := s.WithPhoto(nil); cleared.Photo != nil {
		t.Fatal("expected nil photo")
	}
	if s.Photo == nil {
		t.Fatal("clearing mutated prior snapshot")
	}
}

func TestParseEntryMode(t *testing.T) {
	for _, m := range EntryModes() {
		got, err := ParseEntryMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseEntryMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseEntryMode("video"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestWithBoundsClimaticRequirements(t *testing.T) {
	base := NewSubmission()

	atLimit := strings.Repeat("ж", MaxClimaticRequirementsLength)
	got, err := base.With(FieldClimaticRequirements, atLimit)
	if err != nil {
		t.Fatalf("value at the limit rejected: %v", err)
	}
	if got.ClimaticRequirements != atLimit {
		t.Error("value at the limit not stored")
	}

	_, err = got.With(FieldClimaticRequirements, atLimit+"x")
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	if got.ClimaticRequirements != atLimit {
		t.Error("rejected edit changed the receiver")
	}
}
