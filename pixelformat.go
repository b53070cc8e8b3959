package uvcpreview

// PixelFormat identifies the layout of a RawFrame's payload. It covers both
// the raw formats a transport can deliver and the formats this core is
// capable of producing by conversion.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatMJPEG
	PixelFormatYUYV
	PixelFormatNV12
	PixelFormatNV21
	PixelFormatI420
	PixelFormatRGBX
	PixelFormatRGB
	PixelFormatBGR
	PixelFormatUncompressed
	PixelFormatH264
	PixelFormatOther
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatMJPEG:
		return "MJPEG"
	case PixelFormatYUYV:
		return "YUYV"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatNV21:
		return "NV21"
	case PixelFormatI420:
		return "I420"
	case PixelFormatRGBX:
		return "RGBX"
	case PixelFormatRGB:
		return "RGB"
	case PixelFormatBGR:
		return "BGR"
	case PixelFormatUncompressed:
		return "UNCOMPRESSED"
	case PixelFormatH264:
		return "H264"
	case PixelFormatOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// CallbackPixelFormat is the wire enum a host application requests frames in
// via Session.SetFrameCallback. Values are stable across versions.
type CallbackPixelFormat int

const (
	CallbackPixelFormatRAW    CallbackPixelFormat = 0
	CallbackPixelFormatYUV    CallbackPixelFormat = 1
	CallbackPixelFormatRGB565 CallbackPixelFormat = 2
	CallbackPixelFormatRGBX   CallbackPixelFormat = 3
	CallbackPixelFormatNV21   CallbackPixelFormat = 4
	CallbackPixelFormatNV12   CallbackPixelFormat = 5
	CallbackPixelFormatRGB    CallbackPixelFormat = 6
	CallbackPixelFormatBGR    CallbackPixelFormat = 7
	CallbackPixelFormatI420   CallbackPixelFormat = 8
)

func (f CallbackPixelFormat) String() string {
	switch f {
	case CallbackPixelFormatRAW:
		return "RAW"
	case CallbackPixelFormatYUV:
		return "YUV"
	case CallbackPixelFormatRGB565:
		return "RGB565"
	case CallbackPixelFormatRGBX:
		return "RGBX"
	case CallbackPixelFormatNV21:
		return "NV21"
	case CallbackPixelFormatNV12:
		return "NV12"
	case CallbackPixelFormatRGB:
		return "RGB"
	case CallbackPixelFormatBGR:
		return "BGR"
	case CallbackPixelFormatI420:
		return "I420"
	default:
		return "Unknown"
	}
}

// MinBytes returns the minimum valid payload size for format at width x
// height, per the validation rules a UVC ingest callback applies. ok is
// false when width/height don't satisfy the format's chroma-subsampling
// parity requirement.
func MinBytes(format PixelFormat, width, height int) (n int, ok bool) {
	switch format {
	case PixelFormatYUYV:
		return 2 * width * height, true
	case PixelFormatNV12, PixelFormatNV21, PixelFormatI420:
		if width%2 != 0 || height%2 != 0 {
			return 0, false
		}
		return (3 * width * height) / 2, true
	case PixelFormatRGBX:
		return 4 * width * height, true
	case PixelFormatRGB, PixelFormatBGR:
		return 3 * width * height, true
	case PixelFormatMJPEG:
		return 1, true
	default:
		return 1, true
	}
}

// CallbackBytes returns the exact output payload size the converter for
// format produces at width x height.
func CallbackBytes(format CallbackPixelFormat, width, height int) int {
	switch format {
	case CallbackPixelFormatRAW, CallbackPixelFormatYUV, CallbackPixelFormatRGB565:
		return 2 * width * height
	case CallbackPixelFormatNV21, CallbackPixelFormatNV12, CallbackPixelFormatI420:
		return (3 * width * height) / 2
	case CallbackPixelFormatRGB, CallbackPixelFormatBGR:
		return 3 * width * height
	case CallbackPixelFormatRGBX:
		return 4 * width * height
	default:
		return 4 * width * height
	}
}

// nativeFamily reports whether a raw format and a requested callback format
// belong to the same passthrough family, i.e. no conversion is required.
func nativeFamily(raw PixelFormat, cb CallbackPixelFormat) bool {
	switch cb {
	case CallbackPixelFormatRAW, CallbackPixelFormatYUV:
		return raw == PixelFormatYUYV
	case CallbackPixelFormatNV12:
		return raw == PixelFormatNV12
	case CallbackPixelFormatNV21:
		return raw == PixelFormatNV21
	case CallbackPixelFormatI420:
		return raw == PixelFormatI420
	default:
		return false
	}
}
