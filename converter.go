package uvcpreview

import "fmt"

// Converter transforms src (RGBX, as produced by the preview worker's
// display conversion) into dst, which has already been sized by the caller
// to CallbackBytes(format, src.Width, src.Height). Real pixel math is
// supplied by the embedder; this package only wires the dispatch table and
// a couple of reshaping stand-ins exercised by tests.
type Converter func(dst, src *RawFrame) error

// ConverterTable maps a requested callback pixel format to the converter
// invoked when the incoming raw frame is not already in that family. It
// mirrors the dispatch table UVCPreview.cpp builds in
// callbackPixelFormatChanged.
type ConverterTable map[CallbackPixelFormat]Converter

// DefaultConverterTable returns a table of placeholder converters that
// reshape an RGBX source into the target format's byte layout without
// performing real colorspace math — the converters a production embedder
// installs for the true YUV/RGB transforms replace these entries.
func DefaultConverterTable() ConverterTable {
	return ConverterTable{
		CallbackPixelFormatRGBX:   identityConvert,
		CallbackPixelFormatRGB:    packedConvert(3),
		CallbackPixelFormatBGR:    packedConvert(3),
		CallbackPixelFormatRGB565: packedConvert(2),
		CallbackPixelFormatYUV:    packedConvert(2),
		CallbackPixelFormatRAW:    packedConvert(2),
		CallbackPixelFormatNV12:  planarConvert(),
		CallbackPixelFormatNV21:  planarConvert(),
		CallbackPixelFormatI420:  planarConvert(),
	}
}

func identityConvert(dst, src *RawFrame) error {
	dst.ensureCapacity(src.Bytes)
	copy(dst.Data[:src.Bytes], src.Data[:src.Bytes])
	dst.Bytes = src.Bytes
	dst.Width, dst.Height = src.Width, src.Height
	return nil
}

// packedConvert returns a converter that truncates/pads each RGBX pixel
// (4 bytes) down to bytesPerPixel bytes, a stand-in for a real colorspace
// transform with the correct output size and deterministic content for
// tests.
func packedConvert(bytesPerPixel int) Converter {
	return func(dst, src *RawFrame) error {
		n, ok := pixelCount(src)
		if !ok {
			return fmt.Errorf("%w: source frame dimensions invalid", ErrConversionFailure)
		}
		out := n * bytesPerPixel
		dst.ensureCapacity(out)
		for i := 0; i < n; i++ {
			srcOff := i * 4
			dstOff := i * bytesPerPixel
			if srcOff+4 > src.Bytes || dstOff+bytesPerPixel > out {
				break
			}
			copy(dst.Data[dstOff:dstOff+bytesPerPixel], src.Data[srcOff:srcOff+bytesPerPixel])
		}
		dst.Bytes = out
		dst.Width, dst.Height = src.Width, src.Height
		return nil
	}
}

// planarConvert returns a converter producing a 3*W*H/2-sized planar
// placeholder (Y plane copied from luma-ish first byte of each RGBX pixel,
// chroma filled with the neutral value 128).
func planarConvert() Converter {
	return func(dst, src *RawFrame) error {
		n, ok := pixelCount(src)
		if !ok {
			return fmt.Errorf("%w: source frame dimensions invalid", ErrConversionFailure)
		}
		out := (3 * n) / 2
		dst.ensureCapacity(out)
		for i := 0; i < n; i++ {
			srcOff := i * 4
			if srcOff+4 > src.Bytes {
				break
			}
			dst.Data[i] = src.Data[srcOff]
		}
		for i := n; i < out; i++ {
			dst.Data[i] = 128
		}
		dst.Bytes = out
		dst.Width, dst.Height = src.Width, src.Height
		return nil
	}
}

func pixelCount(f *RawFrame) (int, bool) {
	if f.Width <= 0 || f.Height <= 0 {
		return 0, false
	}
	return f.Width * f.Height, true
}
