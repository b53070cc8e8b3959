package uvcpreview

import (
	"context"
	"fmt"
	"sync"
)

// MemTransport is an in-memory Transport usable for tests and for
// embedders/examples that want to drive a Session without real hardware.
// Negotiate always succeeds for any format in Supported; InjectFrame feeds a
// frame to whatever callback StartStreaming was given.
type MemTransport struct {
	mu          sync.Mutex
	descriptors []FormatDescriptor
	supported   map[PixelFormat]bool
	cb          FrameCallback
	streaming   bool
}

// NewMemTransport creates a transport that accepts negotiation for each of
// supported and advertises descs to EnumerateFormatDescriptors.
func NewMemTransport(supported []PixelFormat, descs []FormatDescriptor) *MemTransport {
	m := &MemTransport{
		descriptors: descs,
		supported:   make(map[PixelFormat]bool, len(supported)),
	}
	for _, f := range supported {
		m.supported[f] = true
	}
	return m
}

func (m *MemTransport) EnumerateFormatDescriptors(ctx context.Context) ([]FormatDescriptor, error) {
	return m.descriptors, nil
}

func (m *MemTransport) Negotiate(ctx context.Context, format PixelFormat, width, height, fps int) (StreamCtrl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.supported[format] {
		return StreamCtrl{}, fmt.Errorf("%w: format %s not supported", ErrNegotiation, format)
	}
	return StreamCtrl{Format: format, Width: width, Height: height, FPS: fps}, nil
}

func (m *MemTransport) StartStreaming(ctx context.Context, ctrl StreamCtrl, cb FrameCallback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cb = cb
	m.streaming = true
	return nil
}

func (m *MemTransport) StopStreaming() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaming = false
	m.cb = nil
	return nil
}

func (m *MemTransport) Close() error { return nil }

// InjectFrame delivers frame to the registered callback, as if the device
// had produced it, if currently streaming.
func (m *MemTransport) InjectFrame(frame *RawFrame) {
	m.mu.Lock()
	cb := m.cb
	streaming := m.streaming
	m.mu.Unlock()
	if streaming && cb != nil {
		cb(frame)
	}
}
