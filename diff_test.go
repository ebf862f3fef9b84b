package audioengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasNoChanges(t *testing.T) {
	s := State{InputEnabled: true}
	u := newStateUpdate(s, s)
	assert.True(t, u.HasNoChanges())

	u = newStateUpdate(s, State{InputEnabled: true, OutputEnabled: true})
	assert.False(t, u.HasNoChanges())
}

func TestDidEnableDisableOutput(t *testing.T) {
	u := newStateUpdate(State{}, State{OutputEnabled: true})
	assert.True(t, u.DidEnableOutput())
	assert.False(t, u.DidDisableOutput())

	u = newStateUpdate(State{OutputEnabled: true}, State{})
	assert.False(t, u.DidEnableOutput())
	assert.True(t, u.DidDisableOutput())
}

func TestIsEngineRecreateRequired_DeviceIDChange(t *testing.T) {
	u := newStateUpdate(State{OutputDeviceID: DefaultDeviceID}, State{OutputDeviceID: 3})
	assert.True(t, u.IsEngineRecreateRequired())
}

func TestIsEngineRecreateRequired_DefaultDeviceCounterBump(t *testing.T) {
	prev := State{OutputDeviceID: DefaultDeviceID, DefaultOutputDeviceUpdateCount: 1}
	next := State{OutputDeviceID: DefaultDeviceID, DefaultOutputDeviceUpdateCount: 2}
	u := newStateUpdate(prev, next)
	assert.True(t, u.IsEngineRecreateRequired(), "default-device counter bump must reach the recreate predicate")
}

func TestIsEngineRecreateRequired_NonDefaultCounterBumpIsIgnored(t *testing.T) {
	prev := State{OutputDeviceID: 5, DefaultOutputDeviceUpdateCount: 1}
	next := State{OutputDeviceID: 5, DefaultOutputDeviceUpdateCount: 2}
	u := newStateUpdate(prev, next)
	assert.False(t, u.IsEngineRecreateRequired())
}

func TestIsEngineRecreateRequired_DroppingInputOnlyWhileOutputEnabledStays(t *testing.T) {
	prev := State{InputEnabled: true, OutputEnabled: true}
	next := State{OutputEnabled: true}
	u := newStateUpdate(prev, next)
	assert.True(t, u.IsEngineRecreateRequired())
}

func TestDidEnableManualAndDeviceRenderingMode(t *testing.T) {
	u := newStateUpdate(State{RenderMode: RenderModeDevice}, State{RenderMode: RenderModeManual})
	assert.True(t, u.DidEnableManualRenderingMode())
	assert.False(t, u.DidEnableDeviceRenderingMode())

	u = newStateUpdate(State{RenderMode: RenderModeManual}, State{RenderMode: RenderModeDevice})
	assert.False(t, u.DidEnableManualRenderingMode())
	assert.True(t, u.DidEnableDeviceRenderingMode())
}

func TestDidUpdateAudioGraph_MuteModeChangeAloneDoesNotTrigger(t *testing.T) {
	prev := State{OutputEnabled: true, MuteMode: MuteModeVoiceProcessing}
	next := State{OutputEnabled: true, MuteMode: MuteModeInputMixer}
	u := newStateUpdate(prev, next)
	assert.False(t, u.DidUpdateAudioGraph(), "a mute-mode switch alone must not force an audio graph rewire")
	assert.False(t, u.IsEngineRestartRequired(), "and must not force an engine restart")
}

func TestDidUpdateAudioGraph_EnabledFlipTriggers(t *testing.T) {
	u := newStateUpdate(State{}, State{OutputEnabled: true})
	assert.True(t, u.DidUpdateAudioGraph())
	assert.True(t, u.IsEngineRestartRequired())
}

func TestIsEngineRestartRequired_RestartEngineMuteModeFlipsInputEnabled(t *testing.T) {
	prev := State{InputEnabled: true, MuteMode: MuteModeRestartEngine, InputMuted: false}
	next := State{InputEnabled: true, MuteMode: MuteModeRestartEngine, InputMuted: true}
	u := newStateUpdate(prev, next)
	assert.True(t, u.DidUpdateAudioGraph(), "RestartEngine mute mode makes input_muted flip IsInputEnabled itself")
	assert.True(t, u.IsEngineRestartRequired())
}

func TestBeginEndInterruption(t *testing.T) {
	u := newStateUpdate(State{}, State{IsInterrupted: true})
	assert.True(t, u.DidBeginInterruption())
	assert.False(t, u.DidEndInterruption())
}
