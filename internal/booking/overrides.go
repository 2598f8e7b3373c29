package booking

import (
	"encoding/json"
	"fmt"
	"os"
)

// Overrides are the admin-disabled dates and time slots, loaded once per
// session. Dates are keyed "MonthName-day" ("January-15"); slot overrides
// map the same key to formatted start times ("18:00").
type Overrides struct {
	Dates map[string]bool
	Slots map[string]map[string]bool
}

// OverrideStore loads the persisted admin overrides. Overrides are authored
// in the admin back-office; this flow only reads them.
type OverrideStore interface {
	Load() (Overrides, error)
}

// EmptyOverrides returns an override set with nothing disabled.
func EmptyOverrides() Overrides {
	return Overrides{
		Dates: map[string]bool{},
		Slots: map[string]map[string]bool{},
	}
}

// DateDisabled reports whether the whole date is admin-disabled.
func (o Overrides) DateDisabled(key string) bool {
	return o.Dates[key]
}

// SlotDisabled reports whether the slot's formatted start time is
// admin-disabled on the given date key.
func (o Overrides) SlotDisabled(key, startTime string) bool {
	return o.Slots[key][startTime]
}

// FileOverrideStore reads overrides from a JSON file with the same shape the
// web clients persist: {"disabledDates": [...], "disabledTimeSlots": {...}}.
type FileOverrideStore struct {
	Path string
}

func NewFileOverrideStore(path string) *FileOverrideStore {
	return &FileOverrideStore{Path: path}
}

type overridesFile struct {
	DisabledDates     []string            `json:"disabledDates"`
	DisabledTimeSlots map[string][]string `json:"disabledTimeSlots"`
}

func (s *FileOverrideStore) Load() (Overrides, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptyOverrides(), nil
		}
		return EmptyOverrides(), fmt.Errorf("error reading overrides file %s: %w", s.Path, err)
	}

	var raw overridesFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return EmptyOverrides(), fmt.Errorf("error parsing overrides file %s: %w", s.Path, err)
	}

	overrides := EmptyOverrides()
	for _, key := range raw.DisabledDates {
		overrides.Dates[key] = true
	}
	for key, labels := range raw.DisabledTimeSlots {
		set := make(map[string]bool, len(labels))
		for _, label := range labels {
			set[label] = true
		}
		overrides.Slots[key] = set
	}
	return overrides, nil
}

// StaticOverrideStore serves a fixed override set, handy for sessions that
// received the overrides out of band.
type StaticOverrideStore struct {
	Overrides Overrides
}

func (s *StaticOverrideStore) Load() (Overrides, error) {
	if s.Overrides.Dates == nil && s.Overrides.Slots == nil {
		return EmptyOverrides(), nil
	}
	return s.Overrides, nil
}
