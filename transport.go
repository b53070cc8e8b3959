package uvcpreview

import "context"

// StreamCtrl is an opaque, transport-specific negotiated stream descriptor
// (format, size, frame interval) returned by Negotiate and passed back into
// StartStreaming.
type StreamCtrl struct {
	Format PixelFormat
	Width  int
	Height int
	FPS    int
}

// FrameDescriptor describes one resolution/rate variant a device advertises
// under a given format.
type FrameDescriptor struct {
	Width  int
	Height int
	FPS    int
}

// FormatDescriptor is one entry in a device's advertised stream formats.
// FourCC holds the raw 16-byte format GUID for uncompressed descriptors (the
// first four bytes carry the ASCII FourCC, e.g. "NV12", "I420"); it is empty
// for compressed (MJPEG) descriptors.
type FormatDescriptor struct {
	Format  PixelFormat
	FourCC  [16]byte
	Frames  []FrameDescriptor
}

// FrameCallback is invoked by a Transport, on its own goroutine(s), once per
// delivered frame. Implementations must not retain frame past return.
type FrameCallback func(frame *RawFrame)

// Transport is the USB/UVC device collaborator this engine drives. It is
// supplied by the embedder; this package ships transportuvc as one concrete
// implementation and an in-memory fake for tests.
type Transport interface {
	// EnumerateFormatDescriptors lists the device's advertised stream
	// formats, used by Negotiate to resolve UNCOMPRESSED to a concrete
	// FourCC-backed format.
	EnumerateFormatDescriptors(ctx context.Context) ([]FormatDescriptor, error)

	// Negotiate attempts to obtain a StreamCtrl for the given format at
	// width x height x fps. Returns ErrNegotiation (wrapped) on refusal.
	Negotiate(ctx context.Context, format PixelFormat, width, height, fps int) (StreamCtrl, error)

	// StartStreaming begins asynchronous frame delivery via cb using a
	// previously negotiated ctrl.
	StartStreaming(ctx context.Context, ctrl StreamCtrl, cb FrameCallback) error

	// StopStreaming halts delivery; safe to call even if not streaming.
	StopStreaming() error

	// Close releases any device handle held by the transport.
	Close() error
}
