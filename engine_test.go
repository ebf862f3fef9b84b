package audioengine

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failObserver fails the test if any callback beyond OnDevicesUpdated and
// OnSpeechActivityEvent fires; it exists to
// catch appliers running when they have no business doing so, per spec.md §8 property 1.
type failObserver struct {
	t *testing.T
}

func (f failObserver) OnDevicesUpdated()                 {}
func (f failObserver) OnSpeechActivityEvent(started bool) {}

func (f failObserver) OnEngineDidCreate(unsafe.Pointer) error {
	f.t.Fatal("OnEngineDidCreate should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineWillEnable(unsafe.Pointer, bool, bool) error {
	f.t.Fatal("OnEngineWillEnable should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineWillStart(unsafe.Pointer, bool, bool) error {
	f.t.Fatal("OnEngineWillStart should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineDidStop(unsafe.Pointer, bool, bool) error {
	f.t.Fatal("OnEngineDidStop should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineDidDisable(unsafe.Pointer, bool, bool) error {
	f.t.Fatal("OnEngineDidDisable should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineWillRelease(unsafe.Pointer) error {
	f.t.Fatal("OnEngineWillRelease should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineWillConnectInput(unsafe.Pointer, unsafe.Pointer, unsafe.Pointer, *ConnectContext) error {
	f.t.Fatal("OnEngineWillConnectInput should not fire for a no-op transition")
	return nil
}
func (f failObserver) OnEngineWillConnectOutput(unsafe.Pointer, unsafe.Pointer, unsafe.Pointer, *ConnectContext) error {
	f.t.Fatal("OnEngineWillConnectOutput should not fire for a no-op transition")
	return nil
}

func TestNew_StartsInDefaultState(t *testing.T) {
	e := New(WithObserver(failObserver{t: t}))
	defer e.Terminate()

	s := e.GetEngineState()
	assert.False(t, s.IsAnyEnabled())
	assert.True(t, s.InputFollowMode)
	assert.Equal(t, RenderModeDevice, s.RenderMode)
}

func TestModifyEngineState_IdentityTransformIsNoop(t *testing.T) {
	e := New(WithObserver(failObserver{t: t}))
	defer e.Terminate()

	before := e.GetEngineState()
	err := e.ModifyEngineState(func(s State) State { return s })
	require.NoError(t, err)
	assert.Equal(t, before, e.GetEngineState())
}

func TestModifyEngineState_RejectsRunningWithoutEnabled(t *testing.T) {
	e := New(WithObserver(failObserver{t: t}))
	defer e.Terminate()

	before := e.GetEngineState()
	err := e.ModifyEngineState(func(s State) State {
		s.OutputRunning = true
		return s
	})
	require.Error(t, err)
	assert.Equal(t, before, e.GetEngineState(), "a rejected transition must not mutate committed state")
}

func TestIsEngineRunning_FalseInitially(t *testing.T) {
	e := New(WithObserver(failObserver{t: t}))
	defer e.Terminate()

	assert.False(t, e.IsEngineRunning())
}
