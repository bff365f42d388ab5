package io

// Capture is an output sink that keeps everything sent to it.
type Capture struct {
	Data []byte
}

var _ Output = (*Capture)(nil)

// Send appends a byte to the capture.
func (c *Capture) Send(value uint8) (err error) {
	c.Data = append(c.Data, value)
	return
}

// Bytes returns everything captured so far.
func (c *Capture) Bytes() []byte {
	return c.Data
}

// Drain returns everything captured since the last Drain, and empties
// the capture.
func (c *Capture) Drain() (data []byte) {
	data = c.Data
	c.Data = nil
	return
}
