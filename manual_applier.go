package audioengine

import (
	engnode "github.com/shaban/audioengine/avaudio/engine"
	"github.com/shaban/audioengine/avaudio/format"
	"github.com/shaban/audioengine/avaudio/sourcenode"
)

// applyManualMode walks the 10-step manual-rendering pipeline spec.md §4.3 documents: create
// a dedicated engine object in AVAudioEngineManualRenderingMode at a fixed Int16/mono format,
// connect its main mixer straight to its output node, and hand off to the render thread once
// something is enabled. There is no device selection, no voice processing, and no hardware
// start/stop retry loop here — those are device-mode concerns.
func (e *Engine) applyManualMode(diff StateUpdate) error {
	next := diff.Next
	wasRunning := e.manual.eng != nil && e.manual.render != nil

	// Step 1: stop the render thread/buffers and notify on any -> none running.
	if wasRunning && !next.IsAnyRunning() {
		e.stopRenderLoop()
		e.manual.eng.Stop()
		e.buffer.StopPlayout()
		e.buffer.StopRecording()
		if err := e.observer.OnEngineDidStop(e.manual.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			return newObserverRejected(err)
		}
	}

	// Step 2: create the manual engine object on none -> any enabled.
	if next.IsAnyEnabled() && e.manual.eng == nil {
		eng, err := engnode.New(engnode.DefaultAudioSpec())
		if err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to create manual engine", Err: err}
		}
		sampleRate := e.cfg.ManualSampleRate
		maxFrames := e.cfg.ManualMaxFrameCount
		if err := eng.EnableManualRenderingMode(float64(sampleRate), 1, maxFrames); err != nil {
			eng.Destroy()
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to enable manual rendering mode", Err: err}
		}
		e.manual.eng = eng
		e.manual.sampleRate = sampleRate
		e.manual.maxFrameCount = maxFrames

		if err := e.observer.OnEngineDidCreate(eng.Ptr()); err != nil {
			eng.DisableManualRenderingMode()
			eng.Destroy()
			e.manual.eng = nil
			return newObserverRejected(err)
		}
	}

	// Step 3: stop buffers for the sides that are disabled.
	if !next.IsOutputEnabled() && e.buffer.IsPlaying() {
		e.buffer.StopPlayout()
	}
	if !next.IsInputEnabled() && e.buffer.IsRecording() {
		e.buffer.StopRecording()
	}

	// Step 4: OnEngineWillEnable.
	if diff.DidAnyEnable() {
		if err := e.observer.OnEngineWillEnable(e.manual.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			return newObserverRejected(err)
		}
	}

	pcmFormat := pcmbufferFormat(e.manual.sampleRate)

	// Step 5: output buffer configuration, no start yet.
	if next.IsOutputEnabled() && !e.buffer.IsPlaying() {
		e.buffer.SetPlayoutFormat(pcmFormat)
		e.buffer.ResetPlayout()
	}

	// Step 6: input buffer configuration, plus the pull-source/mixer/output graph wiring
	// (once), fired through OnEngineWillConnectInput with a null source node and the main
	// mixer as the nominal destination. That is the exact callback/argument shape spec.md
	// §4.3 step 6 and §8's Scenario A sequence name for manual-mode cold start, even though
	// the wiring being performed — main mixer straight into the output node — reads like an
	// output connection: manual mode has no separate input node to attach, so this is the
	// only connect callback it ever fires.
	if next.IsInputEnabled() && !e.buffer.IsRecording() {
		e.buffer.SetRecordingFormat(pcmFormat)
		e.buffer.ResetRecording()
	}

	if next.IsAnyEnabled() && e.manual.eng != nil && e.manual.sourceNode == nil {
		manualFormat, err := format.NewInt16Mono(float64(e.manual.sampleRate))
		if err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to derive manual render format", Err: err}
		}

		mainMixerPtr, err := e.manual.eng.MainMixerNode()
		if err != nil || mainMixerPtr == nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "manual main mixer unavailable", Err: err}
		}
		outputPtr, err := e.manual.eng.OutputNode()
		if err != nil || outputPtr == nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "manual output node unavailable", Err: err}
		}

		src, err := sourcenode.NewPullSource(manualFormat, func(frameCount int) ([]int16, error) {
			return e.buffer.GetPlayoutData(frameCount), nil
		})
		if err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to create manual source node", Err: err}
		}
		srcPtr, err := src.GetNodePtr()
		if err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to get manual source node pointer", Err: err}
		}
		if err := e.manual.eng.Attach(srcPtr); err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to attach manual source node", Err: err}
		}
		if err := e.manual.eng.ConnectWithFormat(srcPtr, mainMixerPtr, 0, 0, manualFormat.GetFormatPtr()); err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to connect manual source to main mixer", Err: err}
		}
		if err := e.manual.eng.ConnectWithFormat(mainMixerPtr, outputPtr, 0, 0, manualFormat.GetFormatPtr()); err != nil {
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to connect manual main mixer to output", Err: err}
		}
		e.manual.sourceNode = src

		ctx := &ConnectContext{InputMixer: mainMixerPtr, Format: manualFormat.GetFormatPtr()}
		if err := e.observer.OnEngineWillConnectInput(e.manual.eng.Ptr(), nil, mainMixerPtr, ctx); err != nil {
			return newObserverRejected(err)
		}
	}

	// Step 7: OnEngineDidDisable.
	if diff.DidAnyDisable() {
		if err := e.observer.OnEngineDidDisable(e.manual.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			return newObserverRejected(err)
		}
	}

	// Step 8: start buffers for newly-enabled sides.
	if next.IsOutputEnabled() && !e.buffer.IsPlaying() {
		e.buffer.StartPlayout()
	}
	if next.IsInputEnabled() && !e.buffer.IsRecording() {
		e.buffer.StartRecording()
	}

	// Step 9: allocate the render buffer, fire OnEngineWillStart, start the manual engine,
	// and spawn the render thread on none -> any running.
	if next.IsAnyRunning() && !wasRunning {
		e.manual.render = make([]int16, e.manual.maxFrameCount)

		if err := e.observer.OnEngineWillStart(e.manual.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			e.manual.render = nil
			return newObserverRejected(err)
		}
		if err := e.manual.eng.Start(); err != nil {
			e.manual.render = nil
			return &EngineError{Kind: KindManualRenderingFailure, Code: ErrManualRenderingFailure, Message: "failed to start manual engine", Err: err}
		}

		e.startRenderLoop(next)
	}

	// Step 10: release the engine object once nothing is enabled at all.
	if !next.IsAnyEnabled() && e.manual.eng != nil {
		if err := e.observer.OnEngineWillRelease(e.manual.eng.Ptr()); err != nil {
			return newObserverRejected(err)
		}
		e.manual.eng.Stop()
		e.manual.eng.DisableManualRenderingMode()
		e.manual.eng.Destroy()
		e.manual.eng = nil
		e.manual.sourceNode = nil
		e.manual.render = nil
	}

	return nil
}
