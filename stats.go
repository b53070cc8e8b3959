package uvcpreview

import "sync/atomic"

// Stats holds operational counters updated throughout a Session's run. It is
// diagnostic only: nothing in the engine branches on these values.
type Stats struct {
	previewPosts         atomic.Uint64
	callbackInvocations  atomic.Uint64
	ingestDrops          atomic.Uint64
	queueDrops           atomic.Uint64
	captureDrops         atomic.Uint64
	negotiationFallbacks atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats' counters.
type StatsSnapshot struct {
	PreviewPosts         uint64
	CallbackInvocations  uint64
	IngestDrops          uint64
	QueueDrops           uint64
	CaptureDrops         uint64
	NegotiationFallbacks uint64
}

func (s *Stats) incIngestDrops()         { s.ingestDrops.Add(1) }
func (s *Stats) incQueueDrops()          { s.queueDrops.Add(1) }
func (s *Stats) incCaptureDrops()        { s.captureDrops.Add(1) }
func (s *Stats) incPreviewPosts()        { s.previewPosts.Add(1) }
func (s *Stats) incCallbackInvocations() { s.callbackInvocations.Add(1) }
func (s *Stats) incNegotiationFallbacks() { s.negotiationFallbacks.Add(1) }

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		PreviewPosts:         s.previewPosts.Load(),
		CallbackInvocations:  s.callbackInvocations.Load(),
		IngestDrops:          s.ingestDrops.Load(),
		QueueDrops:           s.queueDrops.Load(),
		CaptureDrops:         s.captureDrops.Load(),
		NegotiationFallbacks: s.negotiationFallbacks.Load(),
	}
}
