package audioengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_PinsSpecLiterals(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.StartRetryCount)
	assert.Equal(t, 100*time.Millisecond, cfg.StartRetryInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.DefaultDeviceDebounce)
	assert.Equal(t, 48000, cfg.ManualSampleRate)
	assert.Equal(t, 3072, cfg.ManualMaxFrameCount)
	assert.True(t, cfg.InitialInputFollowMode)
}

func TestLoadConfig_NoFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ManualSampleRate, cfg.ManualSampleRate)
}

func TestLoadConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/audioengine.yaml")
	require.Error(t, err)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindInitFailure, engErr.Kind)
}
