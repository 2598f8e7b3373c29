package booking

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileOverrideStoreLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	data := `{
		"disabledDates": ["January-15", "February-2"],
		"disabledTimeSlots": {"January-20": ["18:00", "21:00"]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	overrides, err := NewFileOverrideStore(path).Load()
	require.NoError(t, err)

	require.True(t, overrides.DateDisabled("January-15"))
	require.True(t, overrides.DateDisabled("February-2"))
	require.False(t, overrides.DateDisabled("January-16"))

	require.True(t, overrides.SlotDisabled("January-20", "18:00"))
	require.True(t, overrides.SlotDisabled("January-20", "21:00"))
	require.False(t, overrides.SlotDisabled("January-20", "19:30"))
	require.False(t, overrides.SlotDisabled("January-21", "18:00"))
}

func TestFileOverrideStoreMissingFile(t *testing.T) {
	store := NewFileOverrideStore(filepath.Join(t.TempDir(), "nope.json"))
	overrides, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, overrides.Dates)
	require.Empty(t, overrides.Slots)
}

func TestFileOverrideStoreBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileOverrideStore(path).Load()
	require.Error(t, err)
}
