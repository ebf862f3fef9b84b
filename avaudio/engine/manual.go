package engine

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -L../../ -lmacaudio -Wl,-rpath,/Users/shaban/Code/macaudio
#include "../../native/macaudio.h"

const char* audioengine_enable_manual_rendering_mode(AudioEngine* wrapper, double sampleRate, int channelCount, int maxFrameCount);
const char* audioengine_disable_manual_rendering_mode(AudioEngine* wrapper);
bool audioengine_is_manual_rendering_mode(AudioEngine* wrapper);
int audioengine_render_manual(AudioEngine* wrapper, int frameCount, void* outputBuffer, int bufferCapacityFrames);
*/
import "C"
import (
	"errors"
	"unsafe"
)

// ManualRenderingStatus mirrors AVAudioEngineManualRenderingStatus: the return value of a
// single pull against the manual-rendering block.
type ManualRenderingStatus int

const (
	ManualRenderingError ManualRenderingStatus = -1
	ManualRenderingSuccess ManualRenderingStatus = 0
	ManualRenderingInsufficientDataFromInputNode ManualRenderingStatus = 1
	ManualRenderingCannotDoInCurrentContext ManualRenderingStatus = 2
)

// EnableManualRenderingMode switches the engine from the normal device-clocked rendering
// mode into realtime manual rendering: nothing pulls audio from this engine until a caller
// explicitly calls RenderManual. The manual format is built natively from sampleRate and
// channelCount (no Format value is passed in); maxFrameCount bounds the largest single pull.
func (e *Engine) EnableManualRenderingMode(sampleRate float64, channelCount int, maxFrameCount int) error {
	if e == nil || e.ptr == nil {
		return errors.New("engine is nil")
	}
	if maxFrameCount <= 0 {
		return errors.New("max frame count must be positive")
	}

	errStr := C.audioengine_enable_manual_rendering_mode(e.ptr, C.double(sampleRate), C.int(channelCount), C.int(maxFrameCount))
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// DisableManualRenderingMode reverts the engine to device-clocked rendering.
func (e *Engine) DisableManualRenderingMode() error {
	if e == nil || e.ptr == nil {
		return errors.New("engine is nil")
	}

	errStr := C.audioengine_disable_manual_rendering_mode(e.ptr)
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// IsManualRenderingMode reports whether the engine is currently in manual rendering mode.
func (e *Engine) IsManualRenderingMode() bool {
	if e == nil || e.ptr == nil {
		return false
	}
	return bool(C.audioengine_is_manual_rendering_mode(e.ptr))
}

// RenderManual pulls frameCount frames through the manual-rendering block into out, which
// must be sized at least frameCount samples (Int16, mono, interleaved). It returns the
// status the native render call reported; the number of frames produced is not returned.
func (e *Engine) RenderManual(frameCount int, out []int16) (ManualRenderingStatus, error) {
	if e == nil || e.ptr == nil {
		return ManualRenderingError, errors.New("engine is nil")
	}
	if frameCount <= 0 || frameCount > len(out) {
		return ManualRenderingError, errors.New("frameCount exceeds output buffer capacity")
	}

	status := C.audioengine_render_manual(e.ptr, C.int(frameCount), unsafe.Pointer(&out[0]), C.int(len(out)))
	return ManualRenderingStatus(status), nil
}
