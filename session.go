package uvcpreview

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pion/logging"
)

// FrameDataCallback is the host-facing sink a Session hands converted
// capture-stage payloads to. The slice is only valid for the duration of
// the call.
type FrameDataCallback func(data []byte, format CallbackPixelFormat)

type sessionState int32

const (
	stateIdle sessionState = iota
	stateConfigured
	stateRunning
	stateStopping
)

const (
	// MaxPreviewFrames is the preview queue's bound (MAX_FRAME in SPEC_FULL.md).
	MaxPreviewFrames = 4
	// FramePoolSize is the frame pool's bound (POOL_MAX = MAX_FRAME+2).
	FramePoolSize = MaxPreviewFrames + 2
)

// Session owns a single streaming engine instance: the negotiated
// configuration, the frame pool and queues, the two worker goroutines, and
// the bound surfaces/callback. Exactly one Session should drive one
// Transport at a time.
type Session struct {
	id     uuid.UUID
	logger logging.LeveledLogger

	transport Transport
	pool      *FramePool
	previewQueue *PreviewQueue
	captureSlot  *CaptureSlot
	stats        *Stats

	mu       sync.Mutex
	state    sessionState
	requested RequestedConfig
	negotiated NegotiatedConfig

	previewMu      sync.Mutex
	previewSurf    Surface

	// captureSurf, callback, callbackFormat and converters are guarded by
	// captureSlot's own mutex (see queue.go's CaptureSlot), since swapping
	// any of them while running must go through the same quiescence
	// handshake the capture worker blocks on.
	captureSurf    Surface
	callback       FrameDataCallback
	callbackFormat CallbackPixelFormat
	converters     ConverterTable

	wg sync.WaitGroup
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithLoggerFactory overrides the default pion/logging factory.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(s *Session) { s.logger = f.NewLogger("uvcpreview") }
}

// WithConverterTable overrides the default (placeholder) converter table
// with one wired to real pixel-conversion implementations.
func WithConverterTable(t ConverterTable) Option {
	return func(s *Session) { s.converters = t }
}

// NewSession creates an Idle session driving transport.
func NewSession(transport Transport, opts ...Option) *Session {
	s := &Session{
		id:           uuid.New(),
		transport:    transport,
		pool:         NewFramePool(FramePoolSize),
		previewQueue: NewPreviewQueue(MaxPreviewFrames),
		captureSlot:  NewCaptureSlot(),
		stats:        &Stats{},
		converters:   DefaultConverterTable(),
	}
	s.logger = logging.NewDefaultLoggerFactory().NewLogger("uvcpreview")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's stable identity.
func (s *Session) ID() uuid.UUID { return s.id }

// Stats returns a snapshot of the session's operational counters.
func (s *Session) Stats() StatsSnapshot { return s.stats.Snapshot() }

func (s *Session) getState() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetPreviewSize negotiates a stream configuration with the transport. Valid
// only while Idle or Configured.
func (s *Session) SetPreviewSize(ctx context.Context, req RequestedConfig) error {
	s.mu.Lock()
	if s.state != stateIdle && s.state != stateConfigured {
		s.mu.Unlock()
		return ErrWrongState
	}
	s.mu.Unlock()

	cfg, err := Negotiate(ctx, s.transport, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.requested = req
	s.negotiated = cfg
	s.state = stateConfigured
	s.mu.Unlock()
	return nil
}

// SetPreviewSurface binds or replaces the preview surface. Valid in any
// state; the previous surface, if any and different from surf, is released.
func (s *Session) SetPreviewSurface(surf Surface) error {
	s.previewMu.Lock()
	prev := s.previewSurf
	s.previewSurf = surf
	if surf != nil {
		w, h := s.negotiatedDims()
		if w > 0 && h > 0 {
			_ = surf.SetGeometry(w, h, PixelFormatRGBX)
		}
	}
	s.previewMu.Unlock()
	if prev != nil && prev != surf {
		return prev.Release()
	}
	return nil
}

func (s *Session) negotiatedDims() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.negotiated.FrameWidth, s.negotiated.FrameHeight
}

func (s *Session) previewSurfaceHandle() Surface {
	s.previewMu.Lock()
	defer s.previewMu.Unlock()
	return s.previewSurf
}

// SetCaptureSurface binds or replaces the capture surface, quiescing the
// capture worker first if the session is Running.
func (s *Session) SetCaptureSurface(surf Surface) error {
	if surf != nil {
		s.previewMu.Lock()
		previewFmt := PixelFormatUnknown
		if s.previewSurf != nil {
			previewFmt = s.previewSurf.GetFormat()
		}
		s.previewMu.Unlock()
		if previewFmt != PixelFormatUnknown && surf.GetFormat() != PixelFormatUnknown && surf.GetFormat() != previewFmt {
			return ErrIncompatibleSurface
		}
	}

	var prev Surface
	s.withCaptureQuiesced(func() {
		prev = s.captureSurf
		s.captureSurf = surf
		if surf != nil {
			w, h := s.negotiatedDims()
			if w > 0 && h > 0 {
				_ = surf.SetGeometry(w, h, surf.GetFormat())
			}
		}
	})
	if prev != nil {
		return prev.Release()
	}
	return nil
}

func (s *Session) captureSurface() Surface {
	s.captureSlot.Lock()
	defer s.captureSlot.Unlock()
	return s.captureSurf
}

func (s *Session) captureSurfaceBound() bool {
	return s.captureSurface() != nil
}

// SetFrameCallback installs cb to receive frames in the given pixel format,
// quiescing the capture worker first if the session is Running.
func (s *Session) SetFrameCallback(cb FrameDataCallback, format CallbackPixelFormat) error {
	s.withCaptureQuiesced(func() {
		s.callback = cb
		s.callbackFormat = format
	})
	return nil
}

func (s *Session) callbackConfig() (FrameDataCallback, CallbackPixelFormat, ConverterTable) {
	s.captureSlot.Lock()
	defer s.captureSlot.Unlock()
	return s.callback, s.callbackFormat, s.converters
}

func (s *Session) currentCallbackFormat() CallbackPixelFormat {
	s.captureSlot.Lock()
	defer s.captureSlot.Unlock()
	return s.callbackFormat
}

// withCaptureQuiesced applies fn to the capture-mutex-guarded fields,
// running the quiescence handshake around it only if the capture worker is
// currently live.
func (s *Session) withCaptureQuiesced(fn func()) {
	if s.getState() != stateRunning {
		s.captureSlot.Lock()
		fn()
		s.captureSlot.Unlock()
		return
	}
	s.captureSlot.BeginQuiesce()
	s.captureSlot.AwaitQuiesced()
	s.captureSlot.Lock()
	fn()
	s.captureSlot.Unlock()
	s.captureSlot.Resume()
}

// Start transitions Configured -> Running, opening the transport and
// spawning the preview and capture workers. A preview surface must already
// be bound.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateConfigured {
		s.mu.Unlock()
		return ErrWrongState
	}
	cfg := s.negotiated
	s.mu.Unlock()

	if s.previewSurfaceHandle() == nil {
		return ErrNoPreviewSurface
	}

	s.previewQueue.Reopen()
	s.captureSlot.Reopen()
	s.captureSlot.Resume()

	ic := &ingestCallback{
		pool:    s.pool,
		queue:   s.previewQueue,
		stats:   s.stats,
		running: func() bool { return s.getState() == stateRunning },
	}

	if err := s.transport.StartStreaming(ctx, cfg.Ctrl, ic.onFrame); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	s.mu.Lock()
	s.state = stateRunning
	s.mu.Unlock()

	s.wg.Add(2)
	go (&previewWorker{session: s}).run()
	go (&captureWorker{session: s}).run()
	return nil
}

// Stop transitions Running -> Idle, tearing down both workers and the
// transport, then draining every buffered frame back to the pool. It is
// idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = stateStopping
	s.mu.Unlock()

	s.previewQueue.Close()
	s.captureSlot.Close()

	var result *multierror.Error
	if err := s.transport.StopStreaming(); err != nil {
		result = multierror.Append(result, errwrapf(err, "stop streaming"))
	}

	s.wg.Wait()

	s.previewQueue.Drain(s.pool)
	s.captureSlot.Drain(s.pool)

	s.mu.Lock()
	s.state = stateIdle
	s.mu.Unlock()

	return result.ErrorOrNil()
}

// Close stops the session if running and releases the transport and both
// surfaces, aggregating any teardown errors.
func (s *Session) Close() error {
	var result *multierror.Error
	if err := s.Stop(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.transport.Close(); err != nil {
		result = multierror.Append(result, errwrapf(err, "close transport"))
	}

	s.previewMu.Lock()
	prevSurf := s.previewSurf
	s.previewSurf = nil
	s.previewMu.Unlock()
	if prevSurf != nil {
		if err := prevSurf.Release(); err != nil {
			result = multierror.Append(result, errwrapf(err, "release preview surface"))
		}
	}

	s.captureSlot.Lock()
	capSurf := s.captureSurf
	s.captureSurf = nil
	s.captureSlot.Unlock()
	if capSurf != nil {
		if err := capSurf.Release(); err != nil {
			result = multierror.Append(result, errwrapf(err, "release capture surface"))
		}
	}

	s.pool.Drain()
	return result.ErrorOrNil()
}
