// Package pcmconvert implements the Float32->Int16 staging conversion the device-mode
// applier allocates for the lifetime of an enabled input side (spec §4.2 step 10/11).
package pcmconvert

import "math"

// Converter holds the Int16 staging buffer the sink-node capture pump writes into. It is
// owned by the applier and must exist only between connect and disconnect of the input
// mixer -> sink path, never reconfigured while a capture pull could be in flight.
type Converter struct {
	staging []int16
}

// New allocates a converter with a staging buffer sized for maxFrames samples.
func New(maxFrames int) *Converter {
	return &Converter{staging: make([]int16, maxFrames)}
}

// Convert writes the Int16 equivalent of in into the converter's staging buffer and
// returns the portion actually used, clamping to the buffer's capacity.
func (c *Converter) Convert(in []float32) []int16 {
	n := len(in)
	if n > len(c.staging) {
		n = len(c.staging)
	}
	for i := 0; i < n; i++ {
		c.staging[i] = float32ToInt16(in[i])
	}
	return c.staging[:n]
}

func float32ToInt16(sample float32) int16 {
	scaled := float64(sample) * 32767.0
	if sample < 0 {
		scaled = float64(sample) * 32768.0
	}
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(math.Round(scaled))
}

// Dispose releases the staging buffer. The applier calls this on input-side teardown.
func (c *Converter) Dispose() {
	c.staging = nil
}
