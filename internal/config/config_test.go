package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	r, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 1000, r.MaxFrames)
	require.Equal(t, 0, r.MaxSteps)
	require.False(t, r.DisableColor)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HINTON_MAX_FRAMES", "42")
	t.Setenv("HINTON_DISABLE_COLOR", "true")

	r, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 42, r.MaxFrames)
	require.True(t, r.DisableColor)
}
