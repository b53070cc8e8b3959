package uvcpreview

// RawFrame is a single-plane, exclusively-owned frame buffer. Frames move
// between the pool, the preview queue and the capture slot by value transfer
// of ownership; holding onto a RawFrame past handing it off is a use-after-free
// bug in the caller.
type RawFrame struct {
	Format   PixelFormat
	Width    int
	Height   int
	Step     int // bytes per row; 0 for compressed formats such as MJPEG
	Data     []byte
	Bytes    int // valid payload length, Bytes <= cap(Data)
	Sequence uint64
}

// Capacity returns the maximum payload this frame's backing array can hold
// without reallocation.
func (f *RawFrame) Capacity() int {
	return cap(f.Data)
}

// ensureCapacity grows Data in place if needed, without discarding the
// backing array when it already has enough room.
func (f *RawFrame) ensureCapacity(n int) {
	if cap(f.Data) >= n {
		f.Data = f.Data[:n]
		return
	}
	f.Data = make([]byte, n)
}

// reset clears a frame to its zero payload state while keeping its backing
// array, for reuse out of the pool.
func (f *RawFrame) reset() {
	f.Format = PixelFormatUnknown
	f.Width = 0
	f.Height = 0
	f.Step = 0
	f.Bytes = 0
	f.Sequence = 0
}

// duplicate deep-copies src's header and payload into dst, growing dst's
// backing array if required. dst must not alias src.
func duplicate(dst, src *RawFrame) {
	dst.Format = src.Format
	dst.Width = src.Width
	dst.Height = src.Height
	dst.Step = src.Step
	dst.Sequence = src.Sequence
	dst.ensureCapacity(src.Bytes)
	copy(dst.Data[:src.Bytes], src.Data[:src.Bytes])
	dst.Bytes = src.Bytes
}
