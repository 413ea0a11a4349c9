package models

import "fmt"

// EntryMode is the coarse flow chosen on the landing screen. It is carried to
// the questionnaire but does not change which fields are rendered.
type EntryMode string

const (
	ModeParameters EntryMode = "parameters"
	ModePhoto      EntryMode = "photo"
	ModeBoth       EntryMode = "both"
)

// EntryModes lists the landing choices in display order.
func EntryModes() []EntryMode {
	return []EntryMode{ModeParameters, ModePhoto, ModeBoth}
}

func (m EntryMode) Valid() bool {
	switch m {
	case ModeParameters, ModePhoto, ModeBoth:
		return true
	}
	return false
}

func ParseEntryMode(s string) (EntryMode, error) {
	m := EntryMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid entry mode %q", s)
	}
	return m, nil
}
