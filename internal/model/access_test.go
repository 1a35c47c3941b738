package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLevel_Meets(t *testing.T) {
	tests := []struct {
		name     string
		level    AccessLevel
		required AccessLevel
		want     bool
	}{
		{"read only meets read only", AccessReadOnly, AccessReadOnly, true},
		{"read only below read write", AccessReadOnly, AccessReadWrite, false},
		{"read only below full access", AccessReadOnly, AccessFullAccess, false},
		{"read write meets read only", AccessReadWrite, AccessReadOnly, true},
		{"read write meets read write", AccessReadWrite, AccessReadWrite, true},
		{"read write below full access", AccessReadWrite, AccessFullAccess, false},
		{"full access meets read only", AccessFullAccess, AccessReadOnly, true},
		{"full access meets read write", AccessFullAccess, AccessReadWrite, true},
		{"full access meets full access", AccessFullAccess, AccessFullAccess, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Meets(tt.required))
		})
	}
}

func TestParseAccessLevel(t *testing.T) {
	for _, name := range []string{"READ_ONLY", "READ_WRITE", "FULL_ACCESS"} {
		level, err := ParseAccessLevel(name)
		require.NoError(t, err)
		assert.Equal(t, name, level.String())
	}

	_, err := ParseAccessLevel("SUPER_ACCESS")
	assert.Error(t, err)

	_, err = ParseAccessLevel("read_only")
	assert.Error(t, err, "parsing is case sensitive")
}

func TestAccessLevel_UnmarshalText(t *testing.T) {
	var level AccessLevel
	require.NoError(t, level.UnmarshalText([]byte("FULL_ACCESS")))
	assert.Equal(t, AccessFullAccess, level)

	assert.Error(t, level.UnmarshalText([]byte("PARTIAL")))
}
