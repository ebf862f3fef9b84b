package audioengine

// RenderMode selects whether the engine is clocked by a real hardware device or by a
// caller-driven render loop.
type RenderMode int

const (
	RenderModeDevice RenderMode = iota
	RenderModeManual
)

func (m RenderMode) String() string {
	if m == RenderModeManual {
		return "manual"
	}
	return "device"
}

// MuteMode selects the mechanism by which input_muted takes effect.
type MuteMode int

const (
	MuteModeVoiceProcessing MuteMode = iota
	MuteModeRestartEngine
	MuteModeInputMixer
)

func (m MuteMode) String() string {
	switch m {
	case MuteModeRestartEngine:
		return "restart-engine"
	case MuteModeInputMixer:
		return "input-mixer"
	default:
		return "voice-processing"
	}
}

// DefaultDeviceID is the sentinel meaning "whatever the OS currently names the default".
const DefaultDeviceID = 0

// State is the plain-data record of every externally settable knob plus the counters the
// device-change watcher bumps. It is copyable and comparable with ==; every field must stay
// a comparable type for that to hold.
type State struct {
	InputEnabled  bool
	InputRunning  bool
	OutputEnabled bool
	OutputRunning bool

	InputFollowMode            bool
	InputEnabledPersistentMode bool

	InputMuted    bool
	IsInterrupted bool

	RenderMode RenderMode
	MuteMode   MuteMode

	VoiceProcessingEnabled    bool
	VoiceProcessingBypassed   bool
	VoiceProcessingAGCEnabled bool

	AdvancedDucking bool
	DuckingLevel    int

	OutputDeviceID int
	InputDeviceID  int

	DefaultOutputDeviceUpdateCount int
	DefaultInputDeviceUpdateCount  int

	// OutputAvailable/InputAvailable reflect whether the platform currently reports a usable
	// route at all, distinct from "no device selected" (original_source supplement, see
	// SPEC_FULL.md §3.1).
	OutputAvailable bool
	InputAvailable  bool

	// Negotiated WebRTC-side sample rates, distinct from the hardware rate (supplement).
	ADMPlayoutSampleRate   int
	ADMRecordingSampleRate int
}

// DefaultState returns the zero-value state with the defaults spec.md §3.1 names explicitly
// (input_follow_mode, output_available and input_available default true; everything else
// defaults false/zero).
func DefaultState() State {
	return State{
		InputFollowMode: true,
		OutputAvailable: true,
		InputAvailable:  true,
	}
}

// IsOutputInputLinked ≡ input_follow_mode ∧ voice_processing_enabled.
func (s State) IsOutputInputLinked() bool {
	return s.InputFollowMode && s.VoiceProcessingEnabled
}

// IsInputEnabled ≡ ¬(mute_mode = RestartEngine ∧ input_muted) ∧ (input_enabled ∨ input_enabled_persistent_mode).
func (s State) IsInputEnabled() bool {
	if s.MuteMode == MuteModeRestartEngine && s.InputMuted {
		return false
	}
	return s.InputEnabled || s.InputEnabledPersistentMode
}

// IsOutputEnabled ≡ IsOutputInputLinked ? (IsInputEnabled ∨ output_enabled) : output_enabled.
func (s State) IsOutputEnabled() bool {
	if s.IsOutputInputLinked() {
		return s.IsInputEnabled() || s.OutputEnabled
	}
	return s.OutputEnabled
}

// IsInputRunning ≡ ¬(mute_mode = RestartEngine ∧ input_muted) ∧ input_running.
func (s State) IsInputRunning() bool {
	if s.MuteMode == MuteModeRestartEngine && s.InputMuted {
		return false
	}
	return s.InputRunning
}

// IsOutputRunning mirrors IsOutputEnabled using the running flags/predicate.
func (s State) IsOutputRunning() bool {
	if s.IsOutputInputLinked() {
		return s.IsInputRunning() || s.OutputRunning
	}
	return s.OutputRunning
}

func (s State) IsAnyEnabled() bool  { return s.IsInputEnabled() || s.IsOutputEnabled() }
func (s State) IsAnyRunning() bool  { return s.IsInputRunning() || s.IsOutputRunning() }
func (s State) IsAllEnabled() bool  { return s.IsInputEnabled() && s.IsOutputEnabled() }
func (s State) IsAllRunning() bool  { return s.IsInputRunning() && s.IsOutputRunning() }

// IsOutputDefaultDevice / IsInputDefaultDevice check the sentinel selection.
func (s State) IsOutputDefaultDevice() bool { return s.OutputDeviceID == DefaultDeviceID }
func (s State) IsInputDefaultDevice() bool  { return s.InputDeviceID == DefaultDeviceID }

// Validate enforces the "running implies enabled" invariant without mutating anything. It is
// called by ModifyEngineState before any applier runs.
func (s State) Validate() error {
	if s.InputRunning && !s.InputEnabled {
		return &EngineError{Kind: StateTransitionRejected, Code: ErrInputRunningNotEnabled, Message: "input_running without input_enabled"}
	}
	if s.OutputRunning && !s.OutputEnabled {
		return &EngineError{Kind: StateTransitionRejected, Code: ErrOutputRunningNotEnabled, Message: "output_running without output_enabled"}
	}
	return nil
}
