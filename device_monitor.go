package audioengine

import (
	"context"
	"time"

	"github.com/shaban/audioengine/devices"
)

// watchDevices runs spec.md §4.5's polling loop: adaptively spaced calls to
// devices.GetDeviceCounts, backing off towards DeviceWatcherMaxInterval while the counts are
// stable and snapping back to DeviceWatcherMinInterval the instant something changes. A
// changed device count triggers both an immediate re-enumeration (onDeviceListChanged) and the
// debounced default-device bump (onDefaultDeviceChanged). Both debouncers are triggered on
// every change; IsOutputDefaultDevice/IsInputDefaultDevice in the committed state decide,
// when each one fires, whether its side's counter is bumped.
func (e *Engine) watchDevices(ctx context.Context) {
	interval := e.cfg.DeviceWatcherMinInterval
	lastAudio, lastMIDI, _ := devices.GetDeviceCounts()

	for {
		select {
		case <-ctx.Done():
			e.debounceOut.Stop()
			e.debounceIn.Stop()
			return
		case <-time.After(interval):
		}

		audioCount, midiCount, err := devices.GetDeviceCounts()
		if err != nil {
			interval = e.cfg.DeviceWatcherMaxInterval
			continue
		}

		if audioCount == lastAudio && midiCount == lastMIDI {
			interval += interval / 2
			if interval > e.cfg.DeviceWatcherMaxInterval {
				interval = e.cfg.DeviceWatcherMaxInterval
			}
			continue
		}

		lastAudio, lastMIDI = audioCount, midiCount
		interval = e.cfg.DeviceWatcherMinInterval
		e.onDeviceListChanged()
		e.onDefaultDeviceChanged()
	}
}

// onDeviceListChanged re-enumerates devices once per detected change, notifies the observer
// exactly once, and resets any explicitly-selected (non-default) device ID that no longer
// appears in the enumeration back to DefaultDeviceID. spec.md §4.5 and Scenario E: unplugging a
// selected device must not leave the engine pointed at a dead device ID indefinitely. Both the
// observer callback and the re-enumeration are posted through submit so they run on the control
// goroutine rather than this watcher goroutine, matching §5's rule that OS-callback-originated
// work must hop onto the control thread before touching engine state or observer callbacks.
func (e *Engine) onDeviceListChanged() {
	_ = e.submit(func() error {
		e.observer.OnDevicesUpdated()

		available, err := devices.GetAudio()
		if err != nil {
			e.logger.Warn("device re-enumeration failed after a detected change", "error", err)
			return nil
		}

		return e.modifyEngineStateLocked(func(s State) State {
			if !s.IsOutputDefaultDevice() && available.ByDeviceID(s.OutputDeviceID) == nil {
				s.OutputDeviceID = DefaultDeviceID
			}
			if !s.IsInputDefaultDevice() && available.ByDeviceID(s.InputDeviceID) == nil {
				s.InputDeviceID = DefaultDeviceID
			}
			return s
		})
	})
}

// onDefaultDeviceChanged debounces a burst of device-list notifications into a single
// default-device counter bump per side, matching spec.md §5's "SetNotAlive + replace" note on
// the debouncer.
func (e *Engine) onDefaultDeviceChanged() {
	e.debounceOut.Trigger(func() {
		_ = e.ModifyEngineState(func(s State) State {
			if s.IsOutputDefaultDevice() {
				s.DefaultOutputDeviceUpdateCount++
			}
			return s
		})
	})
	e.debounceIn.Trigger(func() {
		_ = e.ModifyEngineState(func(s State) State {
			if s.IsInputDefaultDevice() {
				s.DefaultInputDeviceUpdateCount++
			}
			return s
		})
	})
}

// startDeviceWatcher launches the background watcher goroutine; Terminate cancels it through
// watcherCancel.
func (e *Engine) startDeviceWatcher() {
	ctx, cancel := context.WithCancel(e.ctx)
	e.watcherCancel = cancel
	go e.watchDevices(ctx)
}
