package audioengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	assert.True(t, s.InputFollowMode)
	assert.True(t, s.OutputAvailable)
	assert.True(t, s.InputAvailable)
	assert.False(t, s.IsAnyEnabled())
	assert.False(t, s.IsAnyRunning())
}

func TestIsInputEnabled_RestartEngineMuteOverrides(t *testing.T) {
	s := State{InputEnabled: true, MuteMode: MuteModeRestartEngine, InputMuted: true}
	assert.False(t, s.IsInputEnabled())

	s.InputMuted = false
	assert.True(t, s.IsInputEnabled())
}

func TestIsInputEnabled_PersistentMode(t *testing.T) {
	s := State{InputEnabledPersistentMode: true}
	assert.True(t, s.IsInputEnabled())
}

func TestIsOutputEnabled_FollowsInputWhenLinked(t *testing.T) {
	s := State{
		InputEnabled:           true,
		InputFollowMode:        true,
		VoiceProcessingEnabled: true,
	}
	require.True(t, s.IsOutputInputLinked())
	assert.True(t, s.IsOutputEnabled(), "output_enabled itself stays false but the predicate raises")
	assert.False(t, s.OutputEnabled)
}

func TestIsOutputEnabled_NotLinkedUsesOwnFlag(t *testing.T) {
	s := State{InputEnabled: true, InputFollowMode: false}
	assert.False(t, s.IsOutputEnabled())
}

func TestValidate_RejectsRunningWithoutEnabled(t *testing.T) {
	s := State{InputRunning: true}
	err := s.Validate()
	require.Error(t, err)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, ErrInputRunningNotEnabled, engErr.Code)

	s = State{OutputRunning: true}
	err = s.Validate()
	require.Error(t, err)
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, ErrOutputRunningNotEnabled, engErr.Code)
}

func TestValidate_AcceptsConsistentState(t *testing.T) {
	s := State{InputEnabled: true, InputRunning: true, OutputEnabled: true, OutputRunning: true}
	assert.NoError(t, s.Validate())
}

func TestDeviceSentinels(t *testing.T) {
	s := State{}
	assert.True(t, s.IsOutputDefaultDevice())
	assert.True(t, s.IsInputDefaultDevice())

	s.OutputDeviceID = 7
	assert.False(t, s.IsOutputDefaultDevice())
}
