package audioengine

// StateUpdate is the {prev, next} diff pair ModifyEngineState builds before dispatching to
// an applier. All predicates are computed on demand, never cached, mirroring State's own
// derived-predicate discipline.
type StateUpdate struct {
	Prev State
	Next State
}

func newStateUpdate(prev, next State) StateUpdate {
	return StateUpdate{Prev: prev, Next: next}
}

// HasNoChanges reports whether prev == next, the no-op fast path.
func (u StateUpdate) HasNoChanges() bool { return u.Prev == u.Next }

func (u StateUpdate) DidEnableOutput() bool {
	return !u.Prev.IsOutputEnabled() && u.Next.IsOutputEnabled()
}
func (u StateUpdate) DidDisableOutput() bool {
	return u.Prev.IsOutputEnabled() && !u.Next.IsOutputEnabled()
}
func (u StateUpdate) DidEnableInput() bool {
	return !u.Prev.IsInputEnabled() && u.Next.IsInputEnabled()
}
func (u StateUpdate) DidDisableInput() bool {
	return u.Prev.IsInputEnabled() && !u.Next.IsInputEnabled()
}
func (u StateUpdate) DidAnyEnable() bool  { return u.DidEnableOutput() || u.DidEnableInput() }
func (u StateUpdate) DidAnyDisable() bool { return u.DidDisableOutput() || u.DidDisableInput() }

func (u StateUpdate) DidBeginInterruption() bool {
	return !u.Prev.IsInterrupted && u.Next.IsInterrupted
}
func (u StateUpdate) DidEndInterruption() bool {
	return u.Prev.IsInterrupted && !u.Next.IsInterrupted
}

// DidUpdateAudioGraph reports whether either side's enabled/disabled predicate flipped.
// Mute-mode switches, device selection, and persistent-mode toggles take effect without this
// predicate firing; IsEngineRecreateRequired covers device selection separately, and step 13 of
// applyDeviceMode applies mute-mode changes in place without a restart.
func (u StateUpdate) DidUpdateAudioGraph() bool {
	return u.Prev.IsInputEnabled() != u.Next.IsInputEnabled() ||
		u.Prev.IsOutputEnabled() != u.Next.IsOutputEnabled()
}

func (u StateUpdate) DidUpdateVoiceProcessingEnabled() bool {
	return u.Prev.VoiceProcessingEnabled != u.Next.VoiceProcessingEnabled
}
func (u StateUpdate) DidUpdateOutputDevice() bool { return u.Prev.OutputDeviceID != u.Next.OutputDeviceID }
func (u StateUpdate) DidUpdateInputDevice() bool  { return u.Prev.InputDeviceID != u.Next.InputDeviceID }
func (u StateUpdate) DidUpdateDefaultOutputDevice() bool {
	return u.Prev.DefaultOutputDeviceUpdateCount != u.Next.DefaultOutputDeviceUpdateCount
}
func (u StateUpdate) DidUpdateDefaultInputDevice() bool {
	return u.Prev.DefaultInputDeviceUpdateCount != u.Next.DefaultInputDeviceUpdateCount
}

// IsEngineRestartRequired ≡ DidUpdateAudioGraph ∨ DidUpdateVoiceProcessingEnabled — engine
// must be stopped, graph re-wired, engine restarted, same engine object.
func (u StateUpdate) IsEngineRestartRequired() bool {
	return u.DidUpdateAudioGraph() || u.DidUpdateVoiceProcessingEnabled()
}

// IsEngineRecreateRequired — engine object must be discarded and rebuilt.
func (u StateUpdate) IsEngineRecreateRequired() bool {
	if u.DidUpdateInputDevice() || u.DidUpdateOutputDevice() {
		return true
	}
	if u.Next.IsOutputDefaultDevice() && u.DidUpdateDefaultOutputDevice() {
		return true
	}
	if u.Next.IsInputDefaultDevice() && u.DidUpdateDefaultInputDevice() {
		return true
	}
	// "output+input both enabled" -> "output only enabled": the platform node graph cannot
	// reliably drop input-side nodes in-place.
	if u.Prev.IsInputEnabled() && u.Prev.IsOutputEnabled() &&
		!u.Next.IsInputEnabled() && u.Next.IsOutputEnabled() {
		return true
	}
	return false
}

func (u StateUpdate) DidEnableManualRenderingMode() bool {
	return u.Prev.RenderMode != RenderModeManual && u.Next.RenderMode == RenderModeManual
}
func (u StateUpdate) DidEnableDeviceRenderingMode() bool {
	return u.Prev.RenderMode != RenderModeDevice && u.Next.RenderMode == RenderModeDevice
}
