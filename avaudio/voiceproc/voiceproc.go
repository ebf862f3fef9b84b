// Package voiceproc wraps the voice-processing (echo cancellation, noise suppression,
// optional AGC) unit AVAudioInputNode exposes on its voice-processing-capable input.
// It toggles the platform feature; it never implements DSP itself.
package voiceproc

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework AVFoundation -framework AudioToolbox -framework Foundation
#include "native/voiceproc.m"
#include <stdlib.h>

const char* voiceproc_set_enabled(void* inputNodePtr, bool enabled);
const char* voiceproc_is_enabled(void* inputNodePtr, bool* result);
const char* voiceproc_set_bypassed(void* inputNodePtr, bool bypassed);
const char* voiceproc_set_agc_enabled(void* inputNodePtr, bool enabled);
const char* voiceproc_set_muted(void* inputNodePtr, bool muted);
const char* voiceproc_set_advanced_ducking(void* inputNodePtr, bool enabled, int level);
const char* voiceproc_poll_speech_active(void* inputNodePtr, bool* result);
*/
import "C"
import (
	"errors"
	"unsafe"
)

// SetEnabled turns the input node's built-in voice processing on or off. This is the
// platform's own echo-cancellation/noise-suppression stage; no DSP is performed in Go.
func SetEnabled(inputNodePtr unsafe.Pointer, enabled bool) error {
	if inputNodePtr == nil {
		return errors.New("input node pointer is nil")
	}
	errStr := C.voiceproc_set_enabled(inputNodePtr, C.bool(enabled))
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// IsEnabled reports the current voice-processing flag on the input node.
func IsEnabled(inputNodePtr unsafe.Pointer) (bool, error) {
	if inputNodePtr == nil {
		return false, errors.New("input node pointer is nil")
	}
	var result C.bool
	errStr := C.voiceproc_is_enabled(inputNodePtr, &result)
	if errStr != nil {
		return false, errors.New(C.GoString(errStr))
	}
	return bool(result), nil
}

// SetBypassed bypasses the voice-processing unit while leaving it attached, so toggling it
// back on does not require tearing down the node graph.
func SetBypassed(inputNodePtr unsafe.Pointer, bypassed bool) error {
	if inputNodePtr == nil {
		return errors.New("input node pointer is nil")
	}
	errStr := C.voiceproc_set_bypassed(inputNodePtr, C.bool(bypassed))
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// SetAGCEnabled toggles the voice-processing unit's automatic gain control stage.
func SetAGCEnabled(inputNodePtr unsafe.Pointer, enabled bool) error {
	if inputNodePtr == nil {
		return errors.New("input node pointer is nil")
	}
	errStr := C.voiceproc_set_agc_enabled(inputNodePtr, C.bool(enabled))
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// SetMuted mutes the voice-processing input directly on the unit, distinct from an
// input-mixer volume mute: this is the `mute_mode = VoiceProcessing` strategy.
func SetMuted(inputNodePtr unsafe.Pointer, muted bool) error {
	if inputNodePtr == nil {
		return errors.New("input node pointer is nil")
	}
	errStr := C.voiceproc_set_muted(inputNodePtr, C.bool(muted))
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// SetAdvancedDucking configures the "other audio ducking" behavior voice processing applies
// to the rest of the system while this app is capturing speech. level is platform-defined,
// typically 0-2 (default/min/max).
func SetAdvancedDucking(inputNodePtr unsafe.Pointer, enabled bool, level int) error {
	if inputNodePtr == nil {
		return errors.New("input node pointer is nil")
	}
	errStr := C.voiceproc_set_advanced_ducking(inputNodePtr, C.bool(enabled), C.int(level))
	if errStr != nil {
		return errors.New(C.GoString(errStr))
	}
	return nil
}

// PollSpeechActive reports whether the voice-processing unit currently believes the muted
// talker is speaking. It is a poll, not a push callback: the device-mode applier calls this
// from a small ticker goroutine after enabling voice processing and forwards transitions to
// the observer's OnSpeechActivityEvent, mirroring this package's tap-style polling idiom
// rather than wiring a real AVAudioVoiceProcessingInputNode delegate.
func PollSpeechActive(inputNodePtr unsafe.Pointer) (bool, error) {
	if inputNodePtr == nil {
		return false, errors.New("input node pointer is nil")
	}
	var result C.bool
	errStr := C.voiceproc_poll_speech_active(inputNodePtr, &result)
	if errStr != nil {
		return false, errors.New(C.GoString(errStr))
	}
	return bool(result), nil
}
