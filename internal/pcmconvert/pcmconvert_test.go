package pcmconvert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert_RoundTripsMidRangeValues(t *testing.T) {
	c := New(8)
	out := c.Convert([]float32{0, 0.5, -0.5, 1, -1})
	assert.Equal(t, []int16{0, 16384, -16384, 32767, -32768}, out)
}

func TestConvert_ClampsOutOfRangeInput(t *testing.T) {
	c := New(8)
	out := c.Convert([]float32{2.0, -2.0})
	assert.Equal(t, []int16{32767, -32768}, out)
}

func TestConvert_TruncatesToStagingCapacity(t *testing.T) {
	c := New(2)
	out := c.Convert([]float32{0.1, 0.2, 0.3, 0.4})
	assert.Len(t, out, 2)
}

func TestDispose_ClearsStaging(t *testing.T) {
	c := New(4)
	c.Dispose()
	assert.Nil(t, c.staging)
}
