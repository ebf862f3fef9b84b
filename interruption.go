package audioengine

// NotifyInterruptionBegin tells the engine the audio session has been interrupted (a phone
// call, another app taking the output device, etc. in the originating platform's terms). The
// device-mode applier's step 1 stops the hardware engine the moment IsInterrupted flips true.
func (e *Engine) NotifyInterruptionBegin() error {
	return e.ModifyEngineState(func(s State) State {
		s.IsInterrupted = true
		return s
	})
}

// NotifyInterruptionEnd tells the engine the interruption is over. shouldResume is accepted
// for API parity with the originating platform's callback signature but intentionally
// ignored (see DESIGN.md's Open Questions) — resumption is always attempted, and the caller
// observes success or failure through the normal engine-start error path.
func (e *Engine) NotifyInterruptionEnd(shouldResume bool) error {
	return e.ModifyEngineState(func(s State) State {
		s.IsInterrupted = false
		return s
	})
}
