package audioengine

import (
	"time"
	"unsafe"

	engnode "github.com/shaban/audioengine/avaudio/engine"
	"github.com/shaban/audioengine/avaudio/node"
	"github.com/shaban/audioengine/avaudio/format"
	"github.com/shaban/audioengine/avaudio/sinknode"
	"github.com/shaban/audioengine/avaudio/sourcenode"
	"github.com/shaban/audioengine/avaudio/voiceproc"
	"github.com/shaban/audioengine/devices"
	"github.com/shaban/audioengine/internal/pcmbuffer"
	"github.com/shaban/audioengine/internal/pcmconvert"
)

func pcmbufferFormat(sampleRate int) pcmbuffer.Format {
	return pcmbuffer.Format{SampleRate: sampleRate, Channels: 1}
}

// applyDeviceMode walks the fixed 20-step pipeline spec.md §4.2 documents. Steps are ordered
// and must not be reordered. A rollback stack of compensating actions is built as steps
// succeed; any step error unwinds it in reverse and returns the first error.
func (e *Engine) applyDeviceMode(diff StateUpdate) error {
	var rollback []func()
	push := func(fn func()) { rollback = append(rollback, fn) }
	unwind := func() {
		for i := len(rollback) - 1; i >= 0; i-- {
			rollback[i]()
		}
	}

	next := diff.Next
	restartRequired := diff.IsEngineRestartRequired()
	recreateRequired := diff.IsEngineRecreateRequired()
	hadEngine := e.device.eng != nil
	wasRunning := hadEngine && e.device.eng.IsRunning()

	// Step 1: stop engine.
	if wasRunning && (!next.IsAnyRunning() || restartRequired || diff.DidBeginInterruption() || recreateRequired) {
		e.device.configChangeListener = false
		e.device.eng.Stop()
		if err := e.observer.OnEngineDidStop(e.device.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			unwind()
			return newObserverRejected(err)
		}
	}

	// Step 2: release engine object if recreate required.
	if hadEngine && recreateRequired {
		if err := e.observer.OnEngineWillRelease(e.device.eng.Ptr()); err != nil {
			unwind()
			return newObserverRejected(err)
		}
		e.teardownGraphPointers()
		e.device.eng.Destroy()
		e.device.eng = nil
		hadEngine = false
	}

	// Step 3: create engine object.
	if next.IsAnyEnabled() && (!hadEngine || recreateRequired) {
		eng, err := engnode.New(engnode.DefaultAudioSpec())
		if err != nil {
			unwind()
			return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "failed to create engine", Err: err}
		}
		e.device.eng = eng
		push(func() { eng.Destroy(); e.device.eng = nil })
		if err := e.observer.OnEngineDidCreate(eng.Ptr()); err != nil {
			unwind()
			return newObserverRejected(err)
		}
	}

	// Step 4/5: stop playout/recording buffers.
	if !next.IsOutputEnabled() && e.buffer.IsPlaying() {
		e.buffer.StopPlayout()
	}
	if !next.IsInputEnabled() && e.buffer.IsRecording() {
		e.buffer.StopRecording()
	}

	// Step 6: OnEngineWillEnable.
	if diff.DidAnyEnable() {
		if err := e.observer.OnEngineWillEnable(e.device.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			unwind()
			return newObserverRejected(err)
		}
	}

	// Step 7: configure voice processing on the input node.
	if next.IsInputEnabled() {
		if inputPtr, err := e.device.eng.InputNode(); err == nil && inputPtr != nil {
			e.device.inputNodePtr = inputPtr
			current, _ := voiceproc.IsEnabled(inputPtr)
			if current != next.VoiceProcessingEnabled {
				if err := voiceproc.SetEnabled(inputPtr, next.VoiceProcessingEnabled); err != nil {
					unwind()
					return &EngineError{Kind: KindVoiceProcessingFailure, Code: ErrVoiceProcessingFailure, Message: "failed to set voice processing", Err: err}
				}
				if next.VoiceProcessingEnabled {
					if next.MuteMode == MuteModeRestartEngine {
						_ = voiceproc.SetMuted(inputPtr, false)
					}
					e.startSpeechActivityPoll(inputPtr)
				}
			}
		}
	}

	// Step 8: enable output side.
	if diff.DidEnableOutput() || recreateRequired {
		if err := e.enableOutputSide(next, push); err != nil {
			unwind()
			return err
		}
	}

	// Step 9: disable output side.
	if diff.DidDisableOutput() {
		e.disableOutputSide()
	}

	// Step 10: enable input side.
	if diff.DidEnableInput() || recreateRequired {
		if err := e.enableInputSide(next, push); err != nil {
			unwind()
			return err
		}
	}

	// Step 11: disable input side.
	if diff.DidDisableInput() {
		e.disableInputSide()
	}

	// Step 12: OnEngineDidDisable.
	if diff.DidAnyDisable() {
		if err := e.observer.OnEngineDidDisable(e.device.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			unwind()
			return newObserverRejected(err)
		}
	}

	// Step 13: runtime mute updates (no graph rewire).
	if next.IsInputEnabled() && e.device.inputNodePtr != nil {
		switch next.MuteMode {
		case MuteModeVoiceProcessing:
			_ = voiceproc.SetMuted(e.device.inputNodePtr, next.InputMuted)
		case MuteModeInputMixer:
			vol := float32(1.0)
			if next.InputMuted {
				vol = 0.0
			}
			_ = node.SetMixerVolume(e.device.inputMixerPtr, vol, 0)
		case MuteModeRestartEngine:
			// folded into IsInputEnabled already; nothing to do here.
		}
	}

	// Step 14: advanced ducking.
	if next.IsInputEnabled() && next.VoiceProcessingEnabled && e.device.inputNodePtr != nil {
		_ = voiceproc.SetAdvancedDucking(e.device.inputNodePtr, next.AdvancedDucking, next.DuckingLevel)
	}

	// Step 15: VP bypass and AGC toggles.
	if e.device.inputNodePtr != nil {
		_ = voiceproc.SetBypassed(e.device.inputNodePtr, next.VoiceProcessingBypassed)
		_ = voiceproc.SetAGCEnabled(e.device.inputNodePtr, next.VoiceProcessingAGCEnabled)
	}

	// Step 16: device selection (desktop only).
	if diff.DidAnyEnable() || recreateRequired {
		available, _ := devices.GetAudio()
		if !next.IsOutputDefaultDevice() && e.device.outputNodePtr != nil {
			if dev := resolveDeviceByID(available, next.OutputDeviceID); dev != nil {
				_ = node.SetDeviceID(e.device.outputNodePtr, dev.DeviceID, false)
			}
		}
		if !next.IsInputDefaultDevice() && e.device.inputNodePtr != nil {
			if dev := resolveDeviceByID(available, next.InputDeviceID); dev != nil {
				_ = node.SetDeviceID(e.device.inputNodePtr, dev.DeviceID, true)
			}
		}
	}

	// Step 17/18: start playout/recording buffers.
	if next.IsOutputEnabled() && !e.buffer.IsPlaying() {
		e.buffer.ResetPlayout()
		e.buffer.StartPlayout()
	}
	if next.IsInputEnabled() && !e.buffer.IsRecording() {
		e.buffer.ResetRecording()
		e.buffer.StartRecording()
	}

	// Step 19: start engine.
	if next.IsAnyRunning() && (!wasRunning || diff.DidEndInterruption() || restartRequired || recreateRequired) {
		if err := e.observer.OnEngineWillStart(e.device.eng.Ptr(), next.IsOutputEnabled(), next.IsInputEnabled()); err != nil {
			unwind()
			return newObserverRejected(err)
		}

		e.device.eng.Prepare()
		time.Sleep(e.cfg.PrepareSettleDelay)

		var startErr error
		for attempt := 0; attempt < e.cfg.StartRetryCount; attempt++ {
			startErr = e.device.eng.Start()
			if startErr == nil {
				break
			}
			time.Sleep(e.cfg.StartRetryInterval)
		}
		if startErr != nil {
			e.logDiagnosticDump()
			unwind()
			return newStartFailure(startErr)
		}
		e.device.configChangeListener = true
	}

	// Step 20: release engine object when no side enabled.
	if !next.IsAnyEnabled() && e.device.eng != nil {
		if err := e.observer.OnEngineWillRelease(e.device.eng.Ptr()); err != nil {
			unwind()
			return newObserverRejected(err)
		}
		e.teardownGraphPointers()
		e.device.eng.Destroy()
		e.device.eng = nil
	}

	return nil
}

func (e *Engine) enableOutputSide(next State, push func(func())) error {
	if !next.OutputAvailable {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "output side marked unavailable", nil)
	}

	outputPtr, err := e.device.eng.OutputNode()
	if err != nil || outputPtr == nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "output node unavailable", err)
	}
	e.device.outputNodePtr = outputPtr

	sampleRate, channels, err := node.QueryFormatForBus(outputPtr, 0, false)
	if err != nil || sampleRate == 0 || channels == 0 {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "playout device not available", err)
	}

	floatFormat, err := format.NewMono(sampleRate)
	if err != nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to derive output format", err)
	}

	e.buffer.SetPlayoutFormat(pcmbufferFormat(int(sampleRate)))
	e.buffer.ResetPlayout()

	mainMixerPtr, err := e.device.eng.MainMixerNode()
	if err != nil || mainMixerPtr == nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "main mixer unavailable", err)
	}
	e.device.mainMixerPtr = mainMixerPtr

	src, err := sourcenode.NewPullSource(floatFormat, func(frameCount int) ([]int16, error) {
		return e.buffer.GetPlayoutData(frameCount), nil
	})
	if err != nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to create output source node", err)
	}
	e.device.sourceNode = src

	srcPtr, err := src.GetNodePtr()
	if err != nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to get source node pointer", err)
	}

	if err := e.device.eng.Attach(srcPtr); err != nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to attach source node", err)
	}
	e.device.outputAttached = true
	push(func() { _ = e.device.eng.Detach(srcPtr); e.device.outputAttached = false })

	if err := e.device.eng.ConnectWithFormat(srcPtr, mainMixerPtr, 0, 0, floatFormat.GetFormatPtr()); err != nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to connect source to main mixer", err)
	}
	if err := e.device.eng.ConnectWithFormat(mainMixerPtr, outputPtr, 0, 0, floatFormat.GetFormatPtr()); err != nil {
		return newDeviceUnavailable(ErrPlayoutDeviceUnavailable, "failed to connect main mixer to output", err)
	}

	ctx := &ConnectContext{SourceNode: mainMixerPtr, OutputMixer: mainMixerPtr, Format: floatFormat.GetFormatPtr()}
	if err := e.observer.OnEngineWillConnectOutput(e.device.eng.Ptr(), mainMixerPtr, outputPtr, ctx); err != nil {
		return newObserverRejected(err)
	}

	if tap, err := engnode.InstallTap(e.device.eng.Ptr(), mainMixerPtr, 0); err == nil {
		e.device.outputTap = tap
	} else {
		e.logger.Warn("failed to install output diagnostic tap", "error", err)
	}

	e.startOutputPump()
	return nil
}

func (e *Engine) disableOutputSide() {
	e.stopOutputPump()
	if e.device.outputTap != nil {
		_ = e.device.outputTap.Remove()
		e.device.outputTap = nil
	}
	if e.device.sourceNode != nil && e.device.outputAttached {
		if srcPtr, err := e.device.sourceNode.GetNodePtr(); err == nil {
			if derr := e.device.eng.Detach(srcPtr); derr != nil {
				e.logger.Warn("detach of output source node failed, likely already detached", "error", derr)
			}
		}
		e.device.outputAttached = false
		e.device.sourceNode = nil
	}
}

// startOutputPump launches a goroutine that drives the output source node's pull callback on
// a fixed cadence, draining playout PCM queued via QueuePlayout into the graph. This is this
// module's approximation of the graph calling the source node's render block itself, which has
// no real C-to-Go callback export (see DESIGN.md); mirrors startCapturePump's shape.
func (e *Engine) startOutputPump() {
	stop := make(chan struct{})
	e.device.outputPump = stop
	src := e.device.sourceNode

	e.device.outputPumpWG.Add(1)
	go func() {
		defer e.device.outputPumpWG.Done()
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := src.Pull(480); err != nil {
					e.logger.Warn("output pump pull failed", "error", err)
				}
			}
		}
	}()
}

func (e *Engine) stopOutputPump() {
	if e.device.outputPump != nil {
		close(e.device.outputPump)
		e.device.outputPumpWG.Wait()
		e.device.outputPump = nil
	}
}

func (e *Engine) enableInputSide(next State, push func(func())) error {
	if !next.InputAvailable {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "input side marked unavailable", nil)
	}

	inputPtr, err := e.device.eng.InputNode()
	if err != nil || inputPtr == nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "input node unavailable", err)
	}
	e.device.inputNodePtr = inputPtr

	sampleRate, channels, err := node.QueryFormatForBus(inputPtr, 0, true)
	if err != nil || sampleRate == 0 || channels == 0 {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "recording device not available", err)
	}

	inputMixerPtr, err := e.device.eng.CreateMixerNode()
	if err != nil || inputMixerPtr == nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to create input mixer", err)
	}
	if err := e.device.eng.Attach(inputMixerPtr); err != nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to attach input mixer", err)
	}
	e.device.inputMixerPtr = inputMixerPtr
	push(func() { _ = e.device.eng.Detach(inputMixerPtr) })

	inputFormat, err := format.NewMono(sampleRate)
	if err != nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to derive input format", err)
	}

	e.buffer.SetRecordingFormat(pcmbufferFormat(int(sampleRate)))
	e.buffer.ResetRecording()

	e.device.converter = pcmconvert.New(4096)

	sink, err := sinknode.New(1)
	if err != nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to create sink node", err)
	}
	e.device.sinkNode = sink
	sinkPtr, err := sink.GetNodePtr()
	if err != nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to get sink node pointer", err)
	}

	ctx := &ConnectContext{SourceNode: inputPtr, InputMixer: inputMixerPtr, Format: inputFormat.GetFormatPtr()}
	if err := e.observer.OnEngineWillConnectInput(e.device.eng.Ptr(), inputPtr, inputMixerPtr, ctx); err != nil {
		return newObserverRejected(err)
	}

	if !ctx.Connected {
		if err := e.device.eng.ConnectWithFormat(inputPtr, inputMixerPtr, 0, 0, inputFormat.GetFormatPtr()); err != nil {
			return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to connect input node to input mixer", err)
		}
	}

	if err := e.device.eng.Attach(sinkPtr); err != nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to attach sink node", err)
	}
	e.device.inputAttached = true
	push(func() { _ = e.device.eng.Detach(sinkPtr); e.device.inputAttached = false })

	if err := e.device.eng.ConnectWithFormat(inputMixerPtr, sinkPtr, 0, 0, inputFormat.GetFormatPtr()); err != nil {
		return newDeviceUnavailable(ErrRecordingDeviceUnavailable, "failed to connect input mixer to sink", err)
	}

	if tap, err := engnode.InstallTap(e.device.eng.Ptr(), inputPtr, 0); err == nil {
		e.device.inputTap = tap
	} else {
		e.logger.Warn("failed to install input diagnostic tap", "error", err)
	}

	e.startCapturePump()
	return nil
}

func (e *Engine) disableInputSide() {
	if e.device.inputNodePtr != nil {
		_ = voiceproc.SetMuted(e.device.inputNodePtr, false)
	}
	e.stopSpeechActivityPoll()
	e.stopCapturePump()
	if e.device.inputTap != nil {
		_ = e.device.inputTap.Remove()
		e.device.inputTap = nil
	}

	if e.device.inputMixerPtr != nil {
		if derr := e.device.eng.Detach(e.device.inputMixerPtr); derr != nil {
			e.logger.Warn("detach of input mixer failed, likely already detached", "error", derr)
		}
		e.device.inputMixerPtr = nil
	}
	if e.device.sinkNode != nil && e.device.inputAttached {
		if sinkPtr, err := e.device.sinkNode.GetNodePtr(); err == nil {
			if derr := e.device.eng.Detach(sinkPtr); derr != nil {
				e.logger.Warn("detach of sink node failed, likely already detached", "error", derr)
			}
		}
		e.device.inputAttached = false
	}
	if e.device.converter != nil {
		e.device.converter.Dispose()
		e.device.converter = nil
	}
	e.device.sinkNode = nil
}

// startCapturePump launches a goroutine that pulls captured samples from the sink node,
// runs them through the Float32->Int16 converter, and delivers them to the buffer. This is
// this module's approximation of the sink node's receiver block, which has no real
// C-to-Go callback export (see DESIGN.md).
func (e *Engine) startCapturePump() {
	stop := make(chan struct{})
	e.device.capturePump = stop
	sink := e.device.sinkNode
	converter := e.device.converter

	e.device.capturePumpWG.Add(1)
	go func() {
		defer e.device.capturePumpWG.Done()
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				floatSamples, err := sink.PullCaptured(480)
				if err != nil || len(floatSamples) == 0 {
					continue
				}
				int16Samples := converter.Convert(floatSamples)
				_ = e.buffer.DeliverRecordedData(int16Samples, time.Now())
			}
		}
	}()
}

func (e *Engine) stopCapturePump() {
	if e.device.capturePump != nil {
		close(e.device.capturePump)
		e.device.capturePumpWG.Wait()
		e.device.capturePump = nil
	}
}

func (e *Engine) teardownGraphPointers() {
	e.disableOutputSide()
	e.disableInputSide()
	e.device.outputNodePtr = nil
	e.device.inputNodePtr = nil
	e.device.mainMixerPtr = nil
}

// startSpeechActivityPoll launches a goroutine polling voiceproc.PollSpeechActive and
// forwarding transitions to the observer. It is this module's approximation of a muted-
// speech-activity listener, which has no real push-callback export (see DESIGN.md).
func (e *Engine) startSpeechActivityPoll(inputPtr unsafe.Pointer) {
	e.stopSpeechActivityPoll()

	stop := make(chan struct{})
	e.device.speechPollStop = stop
	e.device.speechPollWG.Add(1)
	go func() {
		defer e.device.speechPollWG.Done()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		var last bool
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				active, err := voiceproc.PollSpeechActive(inputPtr)
				if err != nil {
					continue
				}
				if active != last {
					last = active
					e.observer.OnSpeechActivityEvent(active)
				}
			}
		}
	}()
}

func (e *Engine) stopSpeechActivityPoll() {
	if e.device.speechPollStop != nil {
		close(e.device.speechPollStop)
		e.device.speechPollWG.Wait()
		e.device.speechPollStop = nil
	}
}

// logDiagnosticDump dumps both sides' node graphs through avaudio/engine's introspection
// helpers (InspectNode/LogNodeInfo) rather than the plain node.LogInfo wrapper, so a failed
// start retry leaves enough detail behind to diagnose a format mismatch or dangling connection.
func (e *Engine) logDiagnosticDump() {
	if e.device.eng == nil {
		return
	}
	if e.device.outputNodePtr != nil {
		_ = e.device.eng.LogNodeInfo(e.device.outputNodePtr)
		if info, err := e.device.eng.InspectNode(e.device.outputNodePtr); err == nil {
			e.logger.Error("output node state", "input_count", info.InputCount, "output_count", info.OutputCount, "attached", info.IsAttached)
		}
	}
	if e.device.inputNodePtr != nil {
		_ = e.device.eng.LogNodeInfo(e.device.inputNodePtr)
		if info, err := e.device.eng.InspectNode(e.device.inputNodePtr); err == nil {
			e.logger.Error("input node state", "input_count", info.InputCount, "output_count", info.OutputCount, "attached", info.IsAttached)
		}
	}
	e.logger.Error("engine start failed after retries, dumped node graph")
}

func resolveDeviceByID(list devices.AudioDevices, id int) *devices.AudioDevice {
	if id == DefaultDeviceID {
		return nil
	}
	return list.ByDeviceID(id)
}
