package uvcpreview

import "testing"

func TestPixelFormat_String(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   string
	}{
		{PixelFormatMJPEG, "MJPEG"},
		{PixelFormatYUYV, "YUYV"},
		{PixelFormatNV12, "NV12"},
		{PixelFormatNV21, "NV21"},
		{PixelFormatI420, "I420"},
		{PixelFormatRGBX, "RGBX"},
		{PixelFormatRGB, "RGB"},
		{PixelFormatBGR, "BGR"},
		{PixelFormatUncompressed, "UNCOMPRESSED"},
		{PixelFormatH264, "H264"},
		{PixelFormat(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.format.String(); got != tt.want {
				t.Errorf("PixelFormat.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinBytes(t *testing.T) {
	tests := []struct {
		format      PixelFormat
		w, h        int
		wantBytes   int
		wantOK      bool
	}{
		{PixelFormatYUYV, 640, 480, 2 * 640 * 480, true},
		{PixelFormatNV12, 640, 480, 3 * 640 * 480 / 2, true},
		{PixelFormatNV12, 641, 480, 0, false},
		{PixelFormatNV12, 640, 481, 0, false},
		{PixelFormatI420, 1920, 1080, 3 * 1920 * 1080 / 2, true},
		{PixelFormatRGBX, 320, 240, 4 * 320 * 240, true},
		{PixelFormatRGB, 320, 240, 3 * 320 * 240, true},
		{PixelFormatMJPEG, 1920, 1080, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got, ok := MinBytes(tt.format, tt.w, tt.h)
			if ok != tt.wantOK {
				t.Fatalf("MinBytes() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.wantBytes {
				t.Errorf("MinBytes() = %v, want %v", got, tt.wantBytes)
			}
		})
	}
}

func TestCallbackBytes(t *testing.T) {
	tests := []struct {
		format CallbackPixelFormat
		w, h   int
		want   int
	}{
		{CallbackPixelFormatRAW, 640, 480, 2 * 640 * 480},
		{CallbackPixelFormatNV12, 640, 480, 3 * 640 * 480 / 2},
		{CallbackPixelFormatRGB, 640, 480, 3 * 640 * 480},
		{CallbackPixelFormatRGBX, 640, 480, 4 * 640 * 480},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := CallbackBytes(tt.format, tt.w, tt.h); got != tt.want {
				t.Errorf("CallbackBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNativeFamily(t *testing.T) {
	tests := []struct {
		raw  PixelFormat
		cb   CallbackPixelFormat
		want bool
	}{
		{PixelFormatYUYV, CallbackPixelFormatYUV, true},
		{PixelFormatYUYV, CallbackPixelFormatRAW, true},
		{PixelFormatNV12, CallbackPixelFormatNV12, true},
		{PixelFormatNV21, CallbackPixelFormatNV12, false},
		{PixelFormatI420, CallbackPixelFormatI420, true},
		{PixelFormatRGBX, CallbackPixelFormatRGBX, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw.String()+"-"+tt.cb.String(), func(t *testing.T) {
			if got := nativeFamily(tt.raw, tt.cb); got != tt.want {
				t.Errorf("nativeFamily() = %v, want %v", got, tt.want)
			}
		})
	}
}
