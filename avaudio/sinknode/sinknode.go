// Package sinknode provides a capture counterpart to avaudio/sourcenode: an AVAudioSinkNode
// wrapper whose receiver block is approximated, the same way sourcenode's pull-based
// generation approximates a render block, by a Go-side pull against the native buffer
// instead of a real C-to-Go receiver callback (see DESIGN.md).
package sinknode

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework AVFoundation -framework AudioToolbox -framework Foundation
#include "native/sinknode.m"
#include <stdlib.h>

AudioSinkNodeResult audiosinknode_new(int channelCount);
AudioSinkNodeResult audiosinknode_get_node(void* wrapper);
const char* audiosinknode_pull_captured(void* wrapper, float* buffer, int frameCount, int* framesWritten);
const char* audiosinknode_destroy(void* wrapper);
*/
import "C"
import (
	"errors"
	"unsafe"
)

// SinkNode represents a 1:1 mapping to AVAudioSinkNode used as the capture endpoint of the
// input mixer.
type SinkNode struct {
	ptr          unsafe.Pointer
	channelCount int
}

// New creates a new AVAudioSinkNode for the given channel count (1 for this module's mono
// capture path).
func New(channelCount int) (*SinkNode, error) {
	if channelCount <= 0 {
		return nil, errors.New("channel count must be positive")
	}

	result := C.audiosinknode_new(C.int(channelCount))
	if result.error != nil {
		return nil, errors.New(C.GoString(result.error))
	}
	if result.result == nil {
		return nil, errors.New("failed to create AVAudioSinkNode")
	}

	return &SinkNode{ptr: unsafe.Pointer(result.result), channelCount: channelCount}, nil
}

// GetNodePtr returns the underlying AVAudioNode pointer for attach/connect calls.
func (s *SinkNode) GetNodePtr() (unsafe.Pointer, error) {
	if s == nil || s.ptr == nil {
		return nil, errors.New("sink node is nil or destroyed")
	}
	result := C.audiosinknode_get_node(s.ptr)
	if result.error != nil {
		return nil, errors.New(C.GoString(result.error))
	}
	return unsafe.Pointer(result.result), nil
}

// PullCaptured drains up to frameCount float32 samples the native receiver block has
// buffered since the last pull. It returns the number of frames actually available, which
// may be less than frameCount. The device-mode applier's capture pump calls this, runs the
// Float32->Int16 converter over the result, and forwards it to FineAudioBuffer.
func (s *SinkNode) PullCaptured(frameCount int) ([]float32, error) {
	if s == nil || s.ptr == nil {
		return nil, errors.New("sink node is nil or destroyed")
	}
	if frameCount <= 0 {
		return nil, errors.New("frame count must be positive")
	}

	buffer := make([]float32, frameCount)
	var framesWritten C.int
	errStr := C.audiosinknode_pull_captured(s.ptr, (*C.float)(unsafe.Pointer(&buffer[0])), C.int(frameCount), &framesWritten)
	if errStr != nil {
		return nil, errors.New(C.GoString(errStr))
	}
	return buffer[:int(framesWritten)], nil
}

// Destroy tears down the sink node and frees native resources.
func (s *SinkNode) Destroy() error {
	if s == nil || s.ptr == nil {
		return errors.New("sink node is nil or already destroyed")
	}
	errStr := C.audiosinknode_destroy(s.ptr)
	s.ptr = nil
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}
