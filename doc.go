// Package uvcpreview implements the core of a USB Video Class (UVC) preview
// engine: format negotiation, frame ingest, and the two-stage preview/capture
// pipeline that fans a camera's raw frames out to a display surface and a
// host frame callback.
//
// Key pieces include:
//   - Session, the lifecycle owner (configure, start, stop, reconfigure)
//   - FramePool, a bounded LIFO buffer recycler
//   - PreviewQueue and CaptureSlot, the bounded FIFO and latest-wins handoffs
//   - Negotiate, the format-negotiation algorithm with descriptor fallback
//   - Transport and Surface, the interfaces the engine is driven through
//
// # Architecture
//
//	transport --(IngestCallback)--> PreviewQueue --(preview worker)--> preview Surface
//	                                                      \--> CaptureSlot --(capture worker)--> capture Surface, host callback
//
// # Native Libraries
//
// The engine core itself has no native dependency. The optional transportuvc
// sub-package binds libuvc.so via purego (CGO_ENABLED=0) the same way this
// module's ancestor bound its V4L2/ALSA wrappers. Set UVCPREVIEW_LIBUVC_PATH
// to override the search path.
//
// # Build Tags
//
// transportuvc is linux-only; on other platforms embedders supply their own
// Transport implementation or use the in-memory one built for tests.
package uvcpreview
