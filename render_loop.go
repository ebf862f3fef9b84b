package audioengine

import (
	"time"

	engnode "github.com/shaban/audioengine/avaudio/engine"
)

// startRenderLoop spawns the dedicated goroutine spec.md §4.4 describes: a fixed-size chunk
// (sample_rate/100 frames, i.e. 10ms) is pulled through the manual engine's render block on
// an absolute-deadline cadence, and whatever frames the input side produced are handed to the
// buffer with a capture timestamp. The loop runs until stopRenderLoop closes manual.quit.
func (e *Engine) startRenderLoop(state State) {
	e.manual.quit = make(chan struct{})
	eng := e.manual.eng
	framesPerChunk := e.manual.sampleRate / 100
	chunkDuration := time.Duration(framesPerChunk) * time.Second / time.Duration(e.manual.sampleRate)
	outputEnabled := state.IsOutputEnabled()
	inputEnabled := state.IsInputEnabled()

	quit := e.manual.quit
	render := e.manual.render
	src := e.manual.sourceNode

	e.manual.wg.Add(1)
	go func() {
		defer e.manual.wg.Done()
		deadline := time.Now()
		for {
			select {
			case <-quit:
				return
			default:
			}

			// The attached pull source's native render-block export doesn't exist in this
			// tree (see DESIGN.md), so playout is drained here by driving the source node's
			// pull callback directly, the same single path device mode's output pump uses.
			// Nothing else may call buffer.GetPlayoutData for playout; it is a single-
			// consumption queue and this is its one drain site in manual mode.
			if outputEnabled {
				if _, err := src.Pull(framesPerChunk); err != nil {
					e.logger.Error("manual output pull failed", "error", err)
				}
			}

			status, err := eng.RenderManual(framesPerChunk, render[:cap(render)])
			if err != nil {
				e.logger.Error("manual render failed", "error", err)
				return
			}
			if status != engnode.ManualRenderingSuccess && status != engnode.ManualRenderingInsufficientDataFromInputNode {
				e.logger.Error("manual render returned non-success status", "status", int(status))
			}

			if inputEnabled {
				captured := make([]int16, framesPerChunk)
				copy(captured, render[:framesPerChunk])
				_ = e.buffer.DeliverRecordedData(captured, time.Now())
			}

			deadline = deadline.Add(chunkDuration)
			if sleep := time.Until(deadline); sleep > 0 {
				time.Sleep(sleep)
			} else {
				deadline = time.Now()
			}
		}
	}()
}

func (e *Engine) stopRenderLoop() {
	if e.manual.quit != nil {
		close(e.manual.quit)
		e.manual.wg.Wait()
		e.manual.quit = nil
	}
}
