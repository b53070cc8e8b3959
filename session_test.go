package uvcpreview

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestSession(t *testing.T, supported []PixelFormat) (*Session, *MemTransport) {
	t.Helper()
	tr := NewMemTransport(supported, nil)
	s := NewSession(tr)
	return s, tr
}

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// S1: feed synthetic YUYV frames one at a time, at the pace the preview
// worker keeps, with a preview surface bound and no callback; expect one
// preview post per frame.
func TestSession_PreviewOnly(t *testing.T) {
	s, tr := newTestSession(t, []PixelFormat{PixelFormatYUYV})
	ctx := context.Background()

	if err := s.SetPreviewSize(ctx, RequestedConfig{Width: 64, Height: 48, FPS: 30}); err != nil {
		t.Fatalf("SetPreviewSize() error = %v", err)
	}
	surf := NewInMemorySurface()
	if err := s.SetPreviewSurface(surf); err != nil {
		t.Fatalf("SetPreviewSurface() error = %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	const n = 20
	data := make([]byte, 2*64*48)
	for i := 0; i < n; i++ {
		tr.InjectFrame(&RawFrame{Format: PixelFormatYUYV, Width: 64, Height: 48, Data: append([]byte(nil), data...), Bytes: len(data)})
		// Wait for this frame's post before injecting the next, so no frame
		// is dropped at the bounded preview queue.
		posted := uint64(i + 1)
		waitForCondition(t, 2*time.Second, func() bool { return s.Stats().PreviewPosts == posted })
	}

	waitForCondition(t, 2*time.Second, func() bool { return s.Stats().PreviewPosts == n })

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.pool.Len() > FramePoolSize {
		t.Errorf("pool grew past capacity: %d", s.pool.Len())
	}
}

// S4: NV12 callback registered, no capture surface; expect the exact native
// payload size delivered per frame.
func TestSession_NativeCallback(t *testing.T) {
	s, tr := newTestSession(t, []PixelFormat{PixelFormatNV12})
	ctx := context.Background()

	if err := s.SetPreviewSize(ctx, RequestedConfig{Width: 32, Height: 16, FPS: 30, FrameType: FrameTypeUncompressed}); err != nil {
		t.Fatalf("SetPreviewSize() error = %v", err)
	}
	if err := s.SetPreviewSurface(NewInMemorySurface()); err != nil {
		t.Fatalf("SetPreviewSurface() error = %v", err)
	}

	var gotLen int64
	var calls int64
	if err := s.SetFrameCallback(func(data []byte, format CallbackPixelFormat) {
		atomic.StoreInt64(&gotLen, int64(len(data)))
		atomic.AddInt64(&calls, 1)
	}, CallbackPixelFormatNV12); err != nil {
		t.Fatalf("SetFrameCallback() error = %v", err)
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want, _ := MinBytes(PixelFormatNV12, 32, 16)
	data := make([]byte, want)
	tr.InjectFrame(&RawFrame{Format: PixelFormatNV12, Width: 32, Height: 16, Data: data, Bytes: len(data)})

	waitForCondition(t, 2*time.Second, func() bool { return atomic.LoadInt64(&calls) == 1 })

	if got := int(atomic.LoadInt64(&gotLen)); got != want {
		t.Errorf("callback payload length = %d, want %d", got, want)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

// S5: swap the frame callback while running, confirm it takes effect and
// Stop joins cleanly afterward.
func TestSession_SwapCallbackWhileRunning(t *testing.T) {
	s, tr := newTestSession(t, []PixelFormat{PixelFormatYUYV})
	ctx := context.Background()

	if err := s.SetPreviewSize(ctx, RequestedConfig{Width: 16, Height: 16, FPS: 30}); err != nil {
		t.Fatalf("SetPreviewSize() error = %v", err)
	}
	if err := s.SetPreviewSurface(NewInMemorySurface()); err != nil {
		t.Fatalf("SetPreviewSurface() error = %v", err)
	}

	var mu sync.Mutex
	var formats []CallbackPixelFormat
	cb := func(data []byte, format CallbackPixelFormat) {
		mu.Lock()
		formats = append(formats, format)
		mu.Unlock()
	}
	if err := s.SetFrameCallback(cb, CallbackPixelFormatYUV); err != nil {
		t.Fatalf("SetFrameCallback() error = %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	data := make([]byte, 2*16*16)
	tr.InjectFrame(&RawFrame{Format: PixelFormatYUYV, Width: 16, Height: 16, Data: append([]byte(nil), data...), Bytes: len(data)})
	waitForCondition(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(formats) >= 1
	})

	if err := s.SetFrameCallback(cb, CallbackPixelFormatRGB565); err != nil {
		t.Fatalf("SetFrameCallback() (swap) error = %v", err)
	}

	tr.InjectFrame(&RawFrame{Format: PixelFormatYUYV, Width: 16, Height: 16, Data: append([]byte(nil), data...), Bytes: len(data)})
	waitForCondition(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(formats) >= 2
	})

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if formats[len(formats)-1] != CallbackPixelFormatRGB565 {
		t.Errorf("last callback format = %v, want RGB565 after swap", formats[len(formats)-1])
	}
}

// S6: with the preview worker paused (queue not drained), overflow drops
// the newest frames and the queue never exceeds its bound.
func TestSession_QueueOverflowDropsNewest(t *testing.T) {
	pool := NewFramePool(4)
	queue := NewPreviewQueue(MaxPreviewFrames)
	stats := &Stats{}
	ic := &ingestCallback{pool: pool, queue: queue, stats: stats, running: func() bool { return true }}

	data := make([]byte, 2*8*8)
	for i := 0; i < 10; i++ {
		ic.onFrame(&RawFrame{Format: PixelFormatYUYV, Width: 8, Height: 8, Data: data, Bytes: len(data)})
	}

	if queue.Len() != MaxPreviewFrames {
		t.Fatalf("queue.Len() = %d, want %d", queue.Len(), MaxPreviewFrames)
	}
	if got := stats.Snapshot().QueueDrops; got != 6 {
		t.Errorf("QueueDrops = %d, want 6", got)
	}
}

// Stop must be idempotent.
func TestSession_StopIdempotent(t *testing.T) {
	s, _ := newTestSession(t, []PixelFormat{PixelFormatYUYV})
	ctx := context.Background()
	if err := s.SetPreviewSize(ctx, RequestedConfig{Width: 16, Height: 16, FPS: 30}); err != nil {
		t.Fatalf("SetPreviewSize() error = %v", err)
	}
	if err := s.SetPreviewSurface(NewInMemorySurface()); err != nil {
		t.Fatalf("SetPreviewSurface() error = %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("first Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v, want nil (idempotent)", err)
	}
}

func TestSession_StartWithoutPreviewSurfaceFails(t *testing.T) {
	s, _ := newTestSession(t, []PixelFormat{PixelFormatYUYV})
	ctx := context.Background()
	if err := s.SetPreviewSize(ctx, RequestedConfig{Width: 16, Height: 16, FPS: 30}); err != nil {
		t.Fatalf("SetPreviewSize() error = %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Fatal("Start() without a preview surface should fail")
	}
}
