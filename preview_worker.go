package uvcpreview

import "fmt"

// previewWorker owns the main preview loop: pop from the preview queue,
// convert to display RGBX, post to the preview surface, and fork a frame
// onward to the capture slot.
type previewWorker struct {
	session *Session
}

func (w *previewWorker) run() {
	s := w.session
	defer s.wg.Done()
	defer s.captureSlot.Close()

	for {
		in := s.previewQueue.PopBlocking()
		if in == nil {
			return
		}
		w.process(in)
	}
}

func (w *previewWorker) process(in *RawFrame) {
	s := w.session

	minBytes, ok := MinBytes(in.Format, in.Width, in.Height)
	if !ok || in.Bytes < minBytes {
		s.pool.Release(in)
		return
	}

	out := s.pool.Acquire(in.Width * in.Height * 4)
	out.Format = PixelFormatRGBX
	out.Width, out.Height = in.Width, in.Height

	if err := convertToRGBX(out, in); err != nil {
		s.pool.Release(out)
		s.pool.Release(in)
		s.logger.Warnf("preview conversion failed: %v", err)
		return
	}

	if surf := s.previewSurfaceHandle(); surf != nil {
		if err := postToSurface(surf, out); err == nil {
			s.stats.incPreviewPosts()
		} else {
			s.logger.Warnf("preview surface post failed: %v", err)
		}
	}

	noCapSurface := s.captureSurface() == nil
	cbFormat := s.currentCallbackFormat()
	if noCapSurface && nativeFamily(in.Format, cbFormat) {
		fwd := s.pool.Acquire(in.Bytes)
		duplicate(fwd, in)
		s.pool.Release(in)
		if !s.captureSlot.Put(fwd, s.pool) {
			s.pool.Release(fwd)
		}
		s.pool.Release(out)
		return
	}

	s.pool.Release(in)
	if !s.captureSlot.Put(out, s.pool) {
		s.pool.Release(out)
	}
}

// convertToRGBX converts a raw transport frame into the display RGBX
// buffer. Real colorspace math belongs to the embedder's converter table;
// this default fills a deterministic pattern so tests can verify dimension
// and sizing behavior without real pixel conversion. MJPEG, YUYV, NV12, NV21
// and I420 share this path; any other format is converted best-effort along
// the same YUYV path. A frame with no payload fails conversion.
func convertToRGBX(dst, src *RawFrame) error {
	if src.Bytes <= 0 {
		return fmt.Errorf("%w: empty %s frame", ErrConversionFailure, src.Format)
	}
	n := src.Width * src.Height
	need := n * 4
	dst.ensureCapacity(need)
	for i := 0; i < n; i++ {
		srcOff := i % src.Bytes
		dst.Data[i*4+0] = src.Data[srcOff]
		dst.Data[i*4+1] = src.Data[srcOff]
		dst.Data[i*4+2] = src.Data[srcOff]
		dst.Data[i*4+3] = 0xff
	}
	dst.Bytes = need
	return nil
}
