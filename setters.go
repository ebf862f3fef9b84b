package audioengine

import (
	"time"

	engnode "github.com/shaban/audioengine/avaudio/engine"
	"github.com/shaban/audioengine/devices"
)

// Init is a no-op readiness marker: construction already starts the control goroutine and
// the device watcher, so there is nothing left to do here beyond giving callers the
// conventional WebRTC-style lifecycle call spec.md §6 names.
func (e *Engine) Init() error { return nil }

// InitPlayout/InitRecording mirror Init for the output/input side specifically; both sides
// are already ready to be enabled the moment New returns.
func (e *Engine) InitPlayout() error   { return nil }
func (e *Engine) InitRecording() error { return nil }

// StartPlayout enables and runs the output side.
func (e *Engine) StartPlayout() error {
	return e.ModifyEngineState(func(s State) State {
		s.OutputEnabled = true
		s.OutputRunning = true
		return s
	})
}

// StopPlayout disables the output side.
func (e *Engine) StopPlayout() error {
	return e.ModifyEngineState(func(s State) State {
		s.OutputEnabled = false
		s.OutputRunning = false
		return s
	})
}

// StartRecording enables and runs the input side.
func (e *Engine) StartRecording() error {
	return e.ModifyEngineState(func(s State) State {
		s.InputEnabled = true
		s.InputRunning = true
		return s
	})
}

// StopRecording disables the input side.
func (e *Engine) StopRecording() error {
	return e.ModifyEngineState(func(s State) State {
		s.InputEnabled = false
		s.InputRunning = false
		return s
	})
}

// InitAndStartRecording combines InitRecording and StartRecording for callers that don't
// need the two-step form.
func (e *Engine) InitAndStartRecording() error {
	if err := e.InitRecording(); err != nil {
		return err
	}
	return e.StartRecording()
}

// SetManualRenderingMode switches render_mode between Device and Manual. The applier
// dispatch in modifyEngineStateLocked handles the shutdown-then-startup sequencing.
func (e *Engine) SetManualRenderingMode(manual bool) error {
	return e.ModifyEngineState(func(s State) State {
		if manual {
			s.RenderMode = RenderModeManual
		} else {
			s.RenderMode = RenderModeDevice
		}
		return s
	})
}

func (e *Engine) RenderMode() RenderMode { return e.GetEngineState().RenderMode }

// SetMuteMode selects the mechanism input_muted takes effect through.
func (e *Engine) SetMuteMode(mode MuteMode) error {
	return e.ModifyEngineState(func(s State) State {
		s.MuteMode = mode
		return s
	})
}

func (e *Engine) MuteMode() MuteMode { return e.GetEngineState().MuteMode }

// SetMicrophoneMute sets input_muted, whose effect depends on the current MuteMode (spec §8
// scenario B/C).
func (e *Engine) SetMicrophoneMute(muted bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.InputMuted = muted
		return s
	})
}

func (e *Engine) MicrophoneMuted() bool { return e.GetEngineState().InputMuted }

// SetInputFollowMode toggles whether output is implicitly enabled while input is enabled and
// voice processing is on.
func (e *Engine) SetInputFollowMode(follow bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.InputFollowMode = follow
		return s
	})
}

func (e *Engine) InputFollowMode() bool { return e.GetEngineState().InputFollowMode }

// SetInputEnabledPersistentMode keeps input enabled across what would otherwise be a
// disabling transition (mobile "always listening" use case).
func (e *Engine) SetInputEnabledPersistentMode(persistent bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.InputEnabledPersistentMode = persistent
		return s
	})
}

func (e *Engine) InputEnabledPersistentMode() bool {
	return e.GetEngineState().InputEnabledPersistentMode
}

// SetVoiceProcessingEnabled toggles the platform echo-cancellation/noise-suppression stack
// on the input node.
func (e *Engine) SetVoiceProcessingEnabled(enabled bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.VoiceProcessingEnabled = enabled
		return s
	})
}

func (e *Engine) VoiceProcessingEnabled() bool { return e.GetEngineState().VoiceProcessingEnabled }

// SetVoiceProcessingBypassed bypasses voice processing without disabling the node.
func (e *Engine) SetVoiceProcessingBypassed(bypassed bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.VoiceProcessingBypassed = bypassed
		return s
	})
}

func (e *Engine) VoiceProcessingBypassed() bool {
	return e.GetEngineState().VoiceProcessingBypassed
}

// SetVoiceProcessingAGCEnabled toggles automatic gain control within voice processing.
func (e *Engine) SetVoiceProcessingAGCEnabled(enabled bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.VoiceProcessingAGCEnabled = enabled
		return s
	})
}

func (e *Engine) VoiceProcessingAGCEnabled() bool {
	return e.GetEngineState().VoiceProcessingAGCEnabled
}

// SetAdvancedDucking and SetDuckingLevel configure how aggressively other audio is ducked
// while the voice-processed talker is speaking.
func (e *Engine) SetAdvancedDucking(enabled bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.AdvancedDucking = enabled
		return s
	})
}

func (e *Engine) AdvancedDucking() bool { return e.GetEngineState().AdvancedDucking }

func (e *Engine) SetDuckingLevel(level int) error {
	return e.ModifyEngineState(func(s State) State {
		s.DuckingLevel = level
		return s
	})
}

func (e *Engine) DuckingLevel() int { return e.GetEngineState().DuckingLevel }

// SetPlaybackDevice and SetRecordingDevice select a device by ID, or DefaultDeviceID to track
// the OS default.
func (e *Engine) SetPlaybackDevice(deviceID int) error {
	return e.ModifyEngineState(func(s State) State {
		s.OutputDeviceID = deviceID
		return s
	})
}

func (e *Engine) PlaybackDevice() int { return e.GetEngineState().OutputDeviceID }

func (e *Engine) SetRecordingDevice(deviceID int) error {
	return e.ModifyEngineState(func(s State) State {
		s.InputDeviceID = deviceID
		return s
	})
}

func (e *Engine) RecordingDevice() int { return e.GetEngineState().InputDeviceID }

func (e *Engine) PlayoutDeviceUpdateCount() int {
	return e.GetEngineState().DefaultOutputDeviceUpdateCount
}

func (e *Engine) RecordingDeviceUpdateCount() int {
	return e.GetEngineState().DefaultInputDeviceUpdateCount
}

// OutputAvailable and InputAvailable expose whether the platform currently reports a usable
// route at all (original_source supplement; see SPEC_FULL.md §3.1).
func (e *Engine) OutputAvailable() bool { return e.GetEngineState().OutputAvailable }
func (e *Engine) InputAvailable() bool  { return e.GetEngineState().InputAvailable }

// EngineAvailability bundles the output/input availability head-check the original source
// queries before even attempting a hardware-format query (original_source supplement; see
// SPEC_FULL.md §3.1).
type EngineAvailability struct {
	OutputAvailable bool
	InputAvailable  bool
}

func (e *Engine) EngineAvailability() EngineAvailability {
	s := e.GetEngineState()
	return EngineAvailability{OutputAvailable: s.OutputAvailable, InputAvailable: s.InputAvailable}
}

// SetEngineAvailability updates both availability flags in one transition; the device-mode
// applier's enableOutputSide/enableInputSide guards reject the side immediately if it is
// unavailable rather than proceeding to query hardware.
func (e *Engine) SetEngineAvailability(a EngineAvailability) error {
	return e.ModifyEngineState(func(s State) State {
		s.OutputAvailable = a.OutputAvailable
		s.InputAvailable = a.InputAvailable
		return s
	})
}

// ActiveAudioLayer reports which platform audio layer backs the engine. This module only ever
// drives CoreAudio through avaudio/engine, so there is nothing to detect at runtime; it is kept
// as a stable API point the way original_source exposes the equivalent getter.
func (e *Engine) ActiveAudioLayer() string { return "CoreAudio, manual detection disabled" }

// PlayoutDelay returns a fixed estimate of output latency derived from the manual-mode chunk
// size, since a real hardware delay query has no cgo export in this module (approximation,
// see DESIGN.md).
func (e *Engine) PlayoutDelay() time.Duration {
	sampleRate := e.cfg.ManualSampleRate
	framesPerChunk := sampleRate / 100
	return time.Duration(framesPerChunk) * time.Second / time.Duration(sampleRate)
}

// ADMPlayoutSampleRate/ADMRecordingSampleRate report the sample rates negotiated on the
// WebRTC side of the buffer, independent of the hardware rate.
func (e *Engine) ADMPlayoutSampleRate() int   { return e.GetEngineState().ADMPlayoutSampleRate }
func (e *Engine) ADMRecordingSampleRate() int { return e.GetEngineState().ADMRecordingSampleRate }

// SpeakerVolume/SetSpeakerVolume and MicrophoneVolume/SetMicrophoneVolume give the public
// surface a volume knob beyond the mute/voice-processing controls spec.md names explicitly
// (original_source supplement). Left/right address avaudio/engine's per-bus mixer control
// (nodes.go's SetMixerVolumeForBus/GetMixerVolumeForBus), which is the only API in this tree
// that actually distinguishes buses rather than setting one mixer-wide level.
func (e *Engine) SetSpeakerVolume(left, right float32) error {
	return e.submit(func() error {
		if e.device.eng == nil || e.device.mainMixerPtr == nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "no active output mixer", nil)
		}
		if err := e.device.eng.SetMixerVolumeForBus(e.device.mainMixerPtr, left, 0); err != nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to set left speaker volume", err)
		}
		if err := e.device.eng.SetMixerVolumeForBus(e.device.mainMixerPtr, right, 1); err != nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to set right speaker volume", err)
		}
		return nil
	})
}

func (e *Engine) SpeakerVolume() (left, right float32, err error) {
	err = e.submit(func() error {
		if e.device.eng == nil || e.device.mainMixerPtr == nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "no active output mixer", nil)
		}
		var innerErr error
		left, innerErr = e.device.eng.GetMixerVolumeForBus(e.device.mainMixerPtr, 0)
		if innerErr != nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to read left speaker volume", innerErr)
		}
		right, innerErr = e.device.eng.GetMixerVolumeForBus(e.device.mainMixerPtr, 1)
		if innerErr != nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to read right speaker volume", innerErr)
		}
		return nil
	})
	return left, right, err
}

func (e *Engine) SetMicrophoneVolume(left, right float32) error {
	return e.submit(func() error {
		if e.device.eng == nil || e.device.inputMixerPtr == nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "no active input mixer", nil)
		}
		if err := e.device.eng.SetMixerVolumeForBus(e.device.inputMixerPtr, left, 0); err != nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to set left microphone volume", err)
		}
		if err := e.device.eng.SetMixerVolumeForBus(e.device.inputMixerPtr, right, 1); err != nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to set right microphone volume", err)
		}
		return nil
	})
}

func (e *Engine) MicrophoneVolume() (left, right float32, err error) {
	err = e.submit(func() error {
		if e.device.eng == nil || e.device.inputMixerPtr == nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "no active input mixer", nil)
		}
		var innerErr error
		left, innerErr = e.device.eng.GetMixerVolumeForBus(e.device.inputMixerPtr, 0)
		if innerErr != nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to read left microphone volume", innerErr)
		}
		right, innerErr = e.device.eng.GetMixerVolumeForBus(e.device.inputMixerPtr, 1)
		if innerErr != nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to read right microphone volume", innerErr)
		}
		return nil
	})
	return left, right, err
}

// OutputSignalLevel/InputSignalLevel report the RMS level avaudio/engine's InstallTap/
// Tap.GetMetrics last measured on the corresponding side's diagnostic tap, installed for the lifetime of that
// side's enable window (device_applier.go's enableOutputSide/enableInputSide).
func (e *Engine) OutputSignalLevel() (float64, error) {
	var metrics *engnode.TapMetrics
	err := e.submit(func() error {
		if e.device.outputTap == nil {
			return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "no output diagnostic tap installed", nil)
		}
		var innerErr error
		metrics, innerErr = e.device.outputTap.GetMetrics()
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	return metrics.RMS, nil
}

func (e *Engine) InputSignalLevel() (float64, error) {
	var metrics *engnode.TapMetrics
	err := e.submit(func() error {
		if e.device.inputTap == nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "no input diagnostic tap installed", nil)
		}
		var innerErr error
		metrics, innerErr = e.device.inputTap.GetMetrics()
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	return metrics.RMS, nil
}

// PlayoutDevices and RecordingDevices enumerate devices with a synthetic leading "default"
// slot, matching spec.md §6's "device enumeration calls that return a leading default slot
// followed by concrete devices".
func (e *Engine) PlayoutDevices() (devices.AudioDevices, error) {
	all, err := devices.GetAudio()
	if err != nil {
		return nil, &EngineError{Kind: KindDeviceUnavailable, Code: ErrPlayoutDeviceUnavailable, Message: "failed to enumerate playout devices", Err: err}
	}
	return withDefaultSlot(all.Outputs()), nil
}

func (e *Engine) RecordingDevices() (devices.AudioDevices, error) {
	all, err := devices.GetAudio()
	if err != nil {
		return nil, &EngineError{Kind: KindDeviceUnavailable, Code: ErrRecordingDeviceUnavailable, Message: "failed to enumerate recording devices", Err: err}
	}
	return withDefaultSlot(all.Inputs()), nil
}

func withDefaultSlot(list devices.AudioDevices) devices.AudioDevices {
	def := devices.AudioDevice{
		Device:    devices.Device{Name: "Default", UID: "default", IsOnline: true},
		DeviceID:  DefaultDeviceID,
	}
	return append(devices.AudioDevices{def}, list...)
}
