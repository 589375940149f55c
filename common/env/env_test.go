package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	t.Setenv("TEST_ENV_DURATION", "7")
	require.Equal(t, 7*time.Second, Duration("TEST_ENV_DURATION", time.Second))

	t.Setenv("TEST_ENV_DURATION", "1500ms")
	require.Equal(t, 1500*time.Millisecond, Duration("TEST_ENV_DURATION", time.Second))

	t.Setenv("TEST_ENV_DURATION", "soon")
	require.Equal(t, time.Second, Duration("TEST_ENV_DURATION", time.Second))
}

func TestStringSlice(t *testing.T) {
	t.Setenv("TEST_ENV_SLICE", " a, ,b ,c")
	require.Equal(t, []string{"a", "b", "c"}, StringSlice("TEST_ENV_SLICE", nil))

	t.Setenv("TEST_ENV_SLICE", " , ")
	require.Equal(t, []string{"x"}, StringSlice("TEST_ENV_SLICE", []string{"x"}))
}

func TestIntAndBoolFallbacks(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "abc")
	require.Equal(t, 3, Int("TEST_ENV_INT", 3))

	t.Setenv("TEST_ENV_BOOL", "TRUE")
	require.True(t, Bool("TEST_ENV_BOOL", false))

	require.Equal(t, 0.5, Float64("TEST_ENV_FLOAT_UNSET", 0.5))
}
