package sourcenode

import (
	"errors"

	"github.com/shaban/audioengine/avaudio/format"
)

// PullFunc supplies frameCount Int16 mono samples on demand. It is called from the
// device-mode applier's pump goroutine or the manual-mode render loop, never from the real
// audio render thread, since this
// module has no working AVAudioSourceNode render-block export; see DESIGN.md.
type PullFunc func(frameCount int) ([]int16, error)

// NewPullSource creates a source node backed by a Go pull function instead of the
// Objective-C tone generator. audioFormat should be the engine-internal float output
// format the device-mode applier derived from the hardware's output node.
func NewPullSource(audioFormat *format.Format, pull PullFunc) (*SourceNode, error) {
	if pull == nil {
		return nil, errors.New("pull func is nil")
	}

	node, err := NewWithFormat(audioFormat, false)
	if err != nil {
		return nil, err
	}
	node.pull = pull
	return node, nil
}

// Pull reads frameCount Int16 samples from the underlying PullFunc. It is the Go-side
// counterpart of GenerateBuffer for nodes created via NewPullSource: GetPlayoutData feeds
// this node instead of the tone generator feeding GenerateBuffer.
func (s *SourceNode) Pull(frameCount int) ([]int16, error) {
	if s == nil || s.ptr == nil {
		return nil, errors.New("source node is nil or destroyed")
	}
	if s.pull == nil {
		return nil, errors.New("source node was not created with NewPullSource")
	}
	return s.pull(frameCount)
}
