package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndPolicy(t *testing.T) {
	for in, want := range map[string]EndPolicy{
		"":            EndGuarded,
		"guarded":     EndGuarded,
		" Permissive": EndPermissive,
	} {
		got, err := ParseEndPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEndPolicy("lenient")
	assert.Error(t, err)
}

func TestNewControllerDefaultsToGuarded(t *testing.T) {
	assert.Equal(t, EndGuarded, NewController(nil, "", nil).EndPolicy())
}

func TestOutcomeText(t *testing.T) {
	text, err := LogFull.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "violation_log_full", string(text))
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
