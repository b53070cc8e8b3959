package uvcpreview

// ingestCallback validates and duplicates a frame delivered by the
// transport's own goroutine(s) and enqueues the copy onto the preview
// queue. It must never retain in past return and must never block beyond
// the brief pool/queue mutex sections — the transport thread depends on
// that to keep pumping the device.
type ingestCallback struct {
	pool    *FramePool
	queue   *PreviewQueue
	stats   *Stats
	running func() bool
}

func (ic *ingestCallback) onFrame(in *RawFrame) {
	if !ic.running() {
		return
	}
	minBytes, ok := MinBytes(in.Format, in.Width, in.Height)
	if !ok || in.Format == PixelFormatUnknown || in.Width <= 0 || in.Height <= 0 || in.Bytes <= 0 || in.Bytes < minBytes {
		ic.stats.incIngestDrops()
		return
	}

	cp := ic.pool.Acquire(in.Bytes)
	duplicate(cp, in)

	if !ic.queue.Push(cp) {
		ic.pool.Release(cp)
		ic.stats.incQueueDrops()
	}
}
