package uvcpreview

import (
	"context"
	"fmt"
)

// FrameType is the format family a caller requests; the negotiator maps it
// onto a concrete PixelFormat to ask the transport for.
type FrameType int

const (
	FrameTypeDefault FrameType = iota
	FrameTypeUncompressed
	FrameTypeMJPEG
	FrameTypeFrameBased
)

// RequestedConfig is the caller's desired stream parameters.
type RequestedConfig struct {
	Width     int
	Height    int
	FPS       int
	FrameType FrameType
}

// NegotiatedConfig is the outcome of a successful Negotiate call.
type NegotiatedConfig struct {
	Ctrl             StreamCtrl
	FrameWidth       int
	FrameHeight      int
	NegotiatedFormat PixelFormat
}

// uncompressedFallbacks is tried, in order, when a requested UNCOMPRESSED
// stream is refused outright by the device.
var uncompressedFallbacks = []PixelFormat{
	PixelFormatNV12, PixelFormatNV21, PixelFormatYUYV, PixelFormatMJPEG,
}

func preferredFormat(t FrameType) PixelFormat {
	switch t {
	case FrameTypeMJPEG:
		return PixelFormatMJPEG
	case FrameTypeUncompressed:
		return PixelFormatUncompressed
	case FrameTypeFrameBased:
		return PixelFormatH264
	default:
		return PixelFormatYUYV
	}
}

// resolveUncompressed inspects the device's advertised uncompressed format
// descriptors and, if one carries an NV12 or I420 FourCC, returns the
// concrete format to request instead of the generic UNCOMPRESSED family.
// I420-advertising devices are asked for NV12: the device is instructed to
// deliver NV12 bytes, and the frames that arrive are labeled NV12 by the
// transport, not I420. First match wins in descriptor enumeration order.
func resolveUncompressed(descs []FormatDescriptor) (PixelFormat, bool) {
	for _, d := range descs {
		if d.Format != PixelFormatUncompressed {
			continue
		}
		fourcc := d.FourCC[:4]
		switch string(fourcc) {
		case "NV12":
			return PixelFormatNV12, true
		case "I420":
			return PixelFormatNV12, true
		}
	}
	return PixelFormatUnknown, false
}

// Negotiate resolves req against transport's capabilities, applying the
// UNCOMPRESSED FourCC override and fallback chain described in SPEC_FULL.md
// §4.3. It does not mutate any session state; the caller records the result.
func Negotiate(ctx context.Context, transport Transport, req RequestedConfig) (NegotiatedConfig, error) {
	preferred := preferredFormat(req.FrameType)

	if preferred == PixelFormatUncompressed {
		descs, err := transport.EnumerateFormatDescriptors(ctx)
		if err != nil {
			return NegotiatedConfig{}, fmt.Errorf("%w: enumerate format descriptors: %v", ErrNegotiation, err)
		}
		if resolved, ok := resolveUncompressed(descs); ok {
			preferred = resolved
		}
	}

	ctrl, err := transport.Negotiate(ctx, preferred, req.Width, req.Height, req.FPS)
	if err == nil {
		return NegotiatedConfig{
			Ctrl:             ctrl,
			FrameWidth:       ctrl.Width,
			FrameHeight:      ctrl.Height,
			NegotiatedFormat: ctrl.Format,
		}, nil
	}

	if preferred != PixelFormatUncompressed {
		return NegotiatedConfig{}, fmt.Errorf("%w: %v", ErrNegotiation, err)
	}

	var lastErr error = err
	for _, fallback := range uncompressedFallbacks {
		ctrl, ferr := transport.Negotiate(ctx, fallback, req.Width, req.Height, req.FPS)
		if ferr == nil {
			return NegotiatedConfig{
				Ctrl:             ctrl,
				FrameWidth:       ctrl.Width,
				FrameHeight:      ctrl.Height,
				NegotiatedFormat: ctrl.Format,
			}, nil
		}
		lastErr = ferr
	}
	return NegotiatedConfig{}, fmt.Errorf("%w: all fallbacks exhausted: %v", ErrNegotiation, lastErr)
}
