package pcmbuffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStopFlags(t *testing.T) {
	b := New()
	assert.False(t, b.IsPlaying())
	assert.False(t, b.IsRecording())

	b.StartPlayout()
	b.StartRecording()
	assert.True(t, b.IsPlaying())
	assert.True(t, b.IsRecording())

	b.StopPlayout()
	b.StopRecording()
	assert.False(t, b.IsPlaying())
	assert.False(t, b.IsRecording())
}

func TestQueueAndGetPlayoutData_ExactFit(t *testing.T) {
	b := New()
	b.SetPlayoutFormat(Format{SampleRate: 48000, Channels: 1})
	b.QueuePlayout([]int16{1, 2, 3, 4})

	out := b.GetPlayoutData(4)
	assert.Equal(t, []int16{1, 2, 3, 4}, out)
}

func TestGetPlayoutData_UnderrunZeroFills(t *testing.T) {
	b := New()
	b.QueuePlayout([]int16{9, 9})

	out := b.GetPlayoutData(5)
	require.Len(t, out, 5)
	assert.Equal(t, []int16{9, 9, 0, 0, 0}, out)
}

func TestGetPlayoutData_SpansMultipleQueuedChunks(t *testing.T) {
	b := New()
	b.QueuePlayout([]int16{1, 2})
	b.QueuePlayout([]int16{3, 4, 5})

	out := b.GetPlayoutData(4)
	assert.Equal(t, []int16{1, 2, 3, 4}, out)

	rest := b.GetPlayoutData(1)
	assert.Equal(t, []int16{5}, rest)
}

func TestResetPlayoutDiscardsQueue(t *testing.T) {
	b := New()
	b.QueuePlayout([]int16{1, 2, 3})
	b.ResetPlayout()

	out := b.GetPlayoutData(3)
	assert.Equal(t, []int16{0, 0, 0}, out)
}

func TestDeliverAndDrainRecordedData(t *testing.T) {
	b := New()
	now := time.Now()

	err := b.DeliverRecordedData([]int16{10, 20}, now)
	require.NoError(t, err)

	err = b.DeliverRecordedData(nil, now)
	assert.Error(t, err, "delivering zero samples should be rejected")

	chunks := b.DrainRecorded()
	require.Len(t, chunks, 1)
	assert.Equal(t, []int16{10, 20}, chunks[0].Samples)
	assert.True(t, chunks[0].CapturedAt.Equal(now))

	assert.Empty(t, b.DrainRecorded(), "a second drain with nothing new returns empty")
}
