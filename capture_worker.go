package uvcpreview

import "fmt"

// captureWorker drains the capture slot, optionally posts to the capture
// surface, and dispatches frames to the host frame callback per the
// passthrough/convert/recycle sequencing in SPEC_FULL.md §4.6.1.
type captureWorker struct {
	session *Session
}

func (w *captureWorker) run() {
	s := w.session
	defer s.wg.Done()
	defer s.captureSlot.Broadcast()

	for {
		frame, closed := s.captureSlot.Next()
		if closed {
			return
		}
		w.handle(frame)
		s.captureSlot.Broadcast()
	}
}

func (w *captureWorker) handle(frame *RawFrame) {
	s := w.session

	if s.captureSurfaceBound() {
		if err := postToSurface(s.captureSurface(), frame); err != nil {
			s.logger.Warnf("capture surface post failed: %v", err)
		}
	}

	w.dispatchCallback(frame)
}

// dispatchCallback implements the §4.6.1 callback dispatch: passthrough
// when the callback format matches the frame's native family, otherwise run
// the configured converter (a format with no converter in the table is
// delivered unconverted); the callback buffer is recycled exactly once
// regardless of path.
func (w *captureWorker) dispatchCallback(frame *RawFrame) {
	s := w.session

	cb, cbFormat, converters := s.callbackConfig()
	if cb == nil {
		s.pool.Release(frame)
		return
	}

	passthrough := nativeFamily(frame.Format, cbFormat)
	converter, hasConverter := converters[cbFormat]

	var out *RawFrame
	if !passthrough && hasConverter {
		n := CallbackBytes(cbFormat, frame.Width, frame.Height)
		out = s.pool.Acquire(n)
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrConversionFailure, r)
				}
			}()
			return converter(out, frame)
		}()
		s.pool.Release(frame)
		if err != nil {
			s.pool.Release(out)
			s.stats.incCaptureDrops()
			s.logger.Warnf("capture conversion failed: %v", err)
			return
		}
	} else {
		out = frame
	}

	w.invokeCallback(cb, cbFormat, out)
	s.pool.Release(out)
}

func (w *captureWorker) invokeCallback(cb FrameDataCallback, format CallbackPixelFormat, out *RawFrame) {
	s := w.session
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("%v: %v", ErrCallbackMarshalling, r)
		}
	}()
	cb(out.Data[:out.Bytes], format)
	s.stats.incCallbackInvocations()
}

func postToSurface(surf Surface, frame *RawFrame) error {
	if surf == nil {
		return nil
	}
	buf, err := surf.Lock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceLockFailure, err)
	}
	n := copy(buf.Bits, frame.Data[:frame.Bytes])
	_ = n
	return surf.UnlockAndPost()
}
