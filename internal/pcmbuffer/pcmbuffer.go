// Package pcmbuffer implements the PCM ring buffer and its 10 ms chunker that spec.md names
// as an external collaborator (AudioDeviceBuffer / FineAudioBuffer) and leaves as an
// interface. This module owns a concrete implementation: a small, mutex-protected
// producer/consumer buffer good enough to exercise the render loop and the device-mode
// applier's buffer lifecycle calls without pulling in a dedicated ring-buffer dependency —
// none of the retrieval pack's examples reach for one for this purpose, so plain
// sync.Mutex-guarded slices are the grounded choice (see DESIGN.md).
package pcmbuffer

import (
	"errors"
	"sync"
	"time"
)

// Format describes the PCM layout the buffer is currently configured for.
type Format struct {
	SampleRate int
	Channels   int
}

// CapturedChunk is one delivery of recorded audio plus its capture timestamp.
type CapturedChunk struct {
	Samples   []int16
	CapturedAt time.Time
}

// Buffer is the concrete AudioDeviceBuffer/FineAudioBuffer stand-in: playout samples flow
// in via QueuePlayout and out via GetPlayoutData (pulled by the render loop or the
// device-mode applier's source-node pump) and recorded samples flow in via DeliverRecordedData (pushed by the sink-node
// capture pump), each side independently start/stop-able.
type Buffer struct {
	mu sync.Mutex

	playoutFormat   Format
	recordingFormat Format

	playing   bool
	recording bool

	playoutQueue [][]int16
	recorded     []CapturedChunk
}

// New returns an empty buffer with no configured format; SetPlayoutFormat/
// SetRecordingFormat must be called before Start{Playout,Recording}.
func New() *Buffer {
	return &Buffer{}
}

// SetPlayoutFormat reconfigures the playout side. Spec §4.2 step 8 calls this, then
// ResetPlayout, whenever the output side is (re)enabled.
func (b *Buffer) SetPlayoutFormat(f Format) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playoutFormat = f
}

// SetRecordingFormat is the input-side counterpart of SetPlayoutFormat.
func (b *Buffer) SetRecordingFormat(f Format) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordingFormat = f
}

// ResetPlayout discards any queued playout audio without touching the playing flag.
func (b *Buffer) ResetPlayout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playoutQueue = nil
}

// ResetRecording discards any buffered recorded audio without touching the recording flag.
func (b *Buffer) ResetRecording() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recorded = nil
}

// StartPlayout sets the playing flag. The applier calls this only after the graph has been
// wired so that GetPlayoutData calls have somewhere to pull real audio from.
func (b *Buffer) StartPlayout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = true
}

// StopPlayout clears the playing flag. Invariant (spec §3.1): IsOutputEnabled(committed) must
// equal this flag immediately after every successful ModifyEngineState.
func (b *Buffer) StopPlayout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = false
}

// StartRecording is the input-side counterpart of StartPlayout.
func (b *Buffer) StartRecording() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recording = true
}

// StopRecording is the input-side counterpart of StopPlayout.
func (b *Buffer) StopRecording() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recording = false
}

// IsPlaying reports the current playing flag.
func (b *Buffer) IsPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// IsRecording reports the current recording flag.
func (b *Buffer) IsRecording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// QueuePlayout enqueues a chunk of Int16 samples the WebRTC-side playout pipeline has
// produced. In a real binding this arrives from the language adapter; nothing inside this
// module calls it outside the tests (the render loop and source-node pump call
// GetPlayoutData).
func (b *Buffer) QueuePlayout(samples []int16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]int16, len(samples))
	copy(cp, samples)
	b.playoutQueue = append(b.playoutQueue, cp)
}

// GetPlayoutData pulls up to frameCount Int16 samples of playout audio for the render loop
// or the device-mode source node's pump to push into the graph. Always returns frameCount
// samples, never an error: when the queue is underrun the remainder is zero-filled here,
// matching FineAudioBuffer's "keep the pipeline ticking" contract.
func (b *Buffer) GetPlayoutData(frameCount int) []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int16, frameCount)
	filled := 0
	for filled < frameCount && len(b.playoutQueue) > 0 {
		chunk := b.playoutQueue[0]
		n := frameCount - filled
		if n > len(chunk) {
			n = len(chunk)
		}
		copy(out[filled:filled+n], chunk[:n])
		filled += n
		if n == len(chunk) {
			b.playoutQueue = b.playoutQueue[1:]
		} else {
			b.playoutQueue[0] = chunk[n:]
		}
	}
	return out
}

// DeliverRecordedData pushes a chunk of captured Int16 samples plus its capture timestamp.
// The sink-node capture pump and the render loop (manual mode) are the only internal
// callers; a real binding would also expose this to the language adapter for the WebRTC
// recording pipeline to drain.
func (b *Buffer) DeliverRecordedData(samples []int16, capturedAt time.Time) error {
	if len(samples) == 0 {
		return errors.New("no samples to deliver")
	}
	cp := make([]int16, len(samples))
	copy(cp, samples)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.recorded = append(b.recorded, CapturedChunk{Samples: cp, CapturedAt: capturedAt})
	return nil
}

// DrainRecorded removes and returns every buffered recorded chunk since the last drain,
// exposed for tests asserting render-loop pacing (spec §8 property 7).
func (b *Buffer) DrainRecorded() []CapturedChunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.recorded
	b.recorded = nil
	return out
}
