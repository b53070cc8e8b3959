package uvcpreview

import (
	"context"
	"testing"
)

func fourcc(s string) [16]byte {
	var b [16]byte
	copy(b[:], s)
	return b
}

func TestNegotiate_DefaultMapsToYUYV(t *testing.T) {
	tr := NewMemTransport([]PixelFormat{PixelFormatYUYV}, nil)
	cfg, err := Negotiate(context.Background(), tr, RequestedConfig{Width: 640, Height: 480, FPS: 30})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if cfg.NegotiatedFormat != PixelFormatYUYV {
		t.Errorf("NegotiatedFormat = %v, want YUYV", cfg.NegotiatedFormat)
	}
}

func TestNegotiate_UncompressedResolvesNV12FromDescriptor(t *testing.T) {
	descs := []FormatDescriptor{
		{Format: PixelFormatUncompressed, FourCC: fourcc("NV12")},
	}
	tr := NewMemTransport([]PixelFormat{PixelFormatNV12}, descs)
	cfg, err := Negotiate(context.Background(), tr, RequestedConfig{
		Width: 1920, Height: 1080, FPS: 30, FrameType: FrameTypeUncompressed,
	})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if cfg.NegotiatedFormat != PixelFormatNV12 {
		t.Errorf("NegotiatedFormat = %v, want NV12", cfg.NegotiatedFormat)
	}
}

func TestNegotiate_I420DescriptorNegotiatesAsNV12(t *testing.T) {
	descs := []FormatDescriptor{
		{Format: PixelFormatUncompressed, FourCC: fourcc("I420")},
	}
	tr := NewMemTransport([]PixelFormat{PixelFormatNV12}, descs)
	cfg, err := Negotiate(context.Background(), tr, RequestedConfig{
		Width: 1280, Height: 720, FPS: 30, FrameType: FrameTypeUncompressed,
	})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if cfg.NegotiatedFormat != PixelFormatNV12 {
		t.Errorf("NegotiatedFormat = %v, want NV12 (I420 negotiated as NV12)", cfg.NegotiatedFormat)
	}
}

func TestNegotiate_FallbackChainOnUncompressedRefusal(t *testing.T) {
	tr := NewMemTransport([]PixelFormat{PixelFormatYUYV}, nil)
	cfg, err := Negotiate(context.Background(), tr, RequestedConfig{
		Width: 1280, Height: 720, FPS: 30, FrameType: FrameTypeUncompressed,
	})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if cfg.NegotiatedFormat != PixelFormatYUYV {
		t.Errorf("NegotiatedFormat = %v, want YUYV (third fallback)", cfg.NegotiatedFormat)
	}
}

func TestNegotiate_AllFallbacksExhausted(t *testing.T) {
	tr := NewMemTransport([]PixelFormat{PixelFormatH264}, nil)
	_, err := Negotiate(context.Background(), tr, RequestedConfig{
		Width: 640, Height: 480, FPS: 30, FrameType: FrameTypeUncompressed,
	})
	if err == nil {
		t.Fatal("Negotiate() expected error, got nil")
	}
}

func TestNegotiate_MJPEG(t *testing.T) {
	tr := NewMemTransport([]PixelFormat{PixelFormatMJPEG}, nil)
	cfg, err := Negotiate(context.Background(), tr, RequestedConfig{
		Width: 640, Height: 480, FPS: 30, FrameType: FrameTypeMJPEG,
	})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if cfg.NegotiatedFormat != PixelFormatMJPEG {
		t.Errorf("NegotiatedFormat = %v, want MJPEG", cfg.NegotiatedFormat)
	}
}
