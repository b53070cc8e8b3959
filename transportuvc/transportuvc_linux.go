//go:build linux

package transportuvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/thesyncim/uvcpreview"
)

// libuvc's enum uvc_frame_format, the subset this backend negotiates or
// receives frames in.
const (
	uvcFrameFormatUncompressed int32 = 2
	uvcFrameFormatYUYV         int32 = 4
	uvcFrameFormatMJPEG        int32 = 7
	uvcFrameFormatNV12         int32 = 16
	uvcFrameFormatH264         int32 = 22
)

// libuvc's enum uvc_vs_desc_subtype values this backend inspects while
// walking a device's format descriptors.
const (
	uvcVSFormatUncompressed int32 = 0x04
	uvcVSFormatMJPEG        int32 = 0x06
	uvcVSFormatFrameBased   int32 = 0x10
)

// uvcStreamCtrlSize is sized generously above libuvc's actual
// uvc_stream_ctrl_t (roughly 48 bytes on amd64/arm64); the core never reads
// its fields, it only round-trips the pointer between uvc_get_stream_ctrl_*
// and uvc_start_streaming.
const uvcStreamCtrlSize = 256

// uvcFormatDesc mirrors the head of libuvc's struct uvc_format_desc: the
// pointer/subtype/guid fields this backend walks, up to frame_descs. The
// fields after frame_descs are not mirrored since nothing here reads them.
type uvcFormatDesc struct {
	parent              uintptr
	prev, next          uintptr
	descriptorSubtype   int32
	formatIndex         uint8
	numFrameDescriptors uint8
	guidFormat          [16]byte
	bitsPerPixel        uint8
	defaultFrameIndex   uint8
	aspectRatioX        uint8
	aspectRatioY        uint8
	interlaceFlags      uint8
	copyProtect         uint8
	variableSize        uint8
	_                   [1]byte // alignment padding before frame_descs
	frameDescs          uintptr
}

// uvcFrameDesc mirrors the head of libuvc's struct uvc_frame_desc: enough of
// it to read width/height. Bit-rate/interval fields are skipped.
type uvcFrameDesc struct {
	parent            uintptr
	prev, next        uintptr
	descriptorSubtype int32
	frameIndex        uint8
	capabilities      uint8
	width             uint16
	height            uint16
}

// uvcFrame mirrors the head of libuvc's struct uvc_frame: the fields the
// ingest bridge needs out of a delivered frame. Timing/source fields that
// follow step are not read.
type uvcFrame struct {
	data        uintptr
	dataBytes   uint64
	width       uint32
	height      uint32
	frameFormat int32
	_           [4]byte // alignment padding before step
	step        uint64
	sequence    uint32
}

var (
	libOnce   sync.Once
	libHandle uintptr
	libErr    error

	uvcInit                        func(ctx uintptr, usbCtx uintptr) int32
	uvcExit                        func(ctx uintptr)
	uvcFindDevice                  func(ctx uintptr, dev uintptr, vid, pid uint16, sn uintptr) int32
	uvcOpen                        func(dev uintptr, devh uintptr) int32
	uvcClose                       func(devh uintptr)
	uvcUnrefDevice                 func(dev uintptr)
	uvcGetStreamCtrlFormatSize     func(devh uintptr, ctrl uintptr, format int32, width, height, fps int32) int32
	uvcGetStreamCtrlFormatSizeFourcc func(devh uintptr, ctrl uintptr, fourcc uintptr, width, height, fps int32) int32
	uvcStartStreaming              func(devh uintptr, ctrl uintptr, cb uintptr, userData uintptr, flags uint8) int32
	uvcStopStreaming               func(devh uintptr)
	uvcGetFormatDescs              func(devh uintptr) uintptr
	uvcStrerror                    func(code int32) uintptr
)

func findLibrary() string {
	if p := os.Getenv("UVCPREVIEW_LIBUVC_PATH"); p != "" {
		candidate := filepath.Join(p, "libuvc.so")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	for _, p := range []string{
		"/usr/local/lib/libuvc.so",
		"/usr/lib/libuvc.so",
		"/usr/lib/x86_64-linux-gnu/libuvc.so",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "libuvc.so"
}

func initLib() {
	libOnce.Do(func() {
		path := findLibrary()
		h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libErr = fmt.Errorf("transportuvc: dlopen %s: %w", path, err)
			return
		}
		libHandle = h
		purego.RegisterLibFunc(&uvcInit, h, "uvc_init")
		purego.RegisterLibFunc(&uvcExit, h, "uvc_exit")
		purego.RegisterLibFunc(&uvcFindDevice, h, "uvc_find_device")
		purego.RegisterLibFunc(&uvcOpen, h, "uvc_open")
		purego.RegisterLibFunc(&uvcClose, h, "uvc_close")
		purego.RegisterLibFunc(&uvcUnrefDevice, h, "uvc_unref_device")
		purego.RegisterLibFunc(&uvcGetStreamCtrlFormatSize, h, "uvc_get_stream_ctrl_format_size")
		purego.RegisterLibFunc(&uvcGetStreamCtrlFormatSizeFourcc, h, "uvc_get_stream_ctrl_format_size_fourcc")
		purego.RegisterLibFunc(&uvcStartStreaming, h, "uvc_start_streaming")
		purego.RegisterLibFunc(&uvcStopStreaming, h, "uvc_stop_streaming")
		purego.RegisterLibFunc(&uvcGetFormatDescs, h, "uvc_get_format_descs")
		purego.RegisterLibFunc(&uvcStrerror, h, "uvc_strerror")
	})
}

// Available reports whether libuvc.so was found and its symbols resolved.
func Available() bool {
	initLib()
	return libErr == nil
}

func strerror(code int32) string {
	if uvcStrerror == nil {
		return fmt.Sprintf("uvc error %d", code)
	}
	ptr := uvcStrerror(code)
	if ptr == 0 {
		return fmt.Sprintf("uvc error %d", code)
	}
	return goStringFromPtr(ptr)
}

func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var n int
	for {
		b := *(*byte)(unsafe.Pointer(ptr + uintptr(n)))
		if b == 0 {
			break
		}
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n))
}

// Transport is the reference uvcpreview.Transport implementation bound
// directly to libuvc.so. One Transport owns one opened device handle.
type Transport struct {
	opts uvcpreview.UVCTransportOptions

	mu      sync.Mutex
	ctx     uintptr
	dev     uintptr
	devh    uintptr
	ctrlBuf []byte // last negotiated uvc_stream_ctrl_t, replayed into StartStreaming

	cbMu sync.Mutex
	cb   uvcpreview.FrameCallback

	streamCallback uintptr
	handle         uintptr // stable identity purego's C->Go bridge looks up
}

var (
	activeMu      sync.Mutex
	activeByHandle = map[uintptr]*Transport{}
	handleCounter  uintptr
	streamCallbackOnce sync.Once
	streamCallbackPtr  uintptr
)

func streamCallbackTrampoline() uintptr {
	streamCallbackOnce.Do(func() {
		streamCallbackPtr = purego.NewCallback(onUVCFrame)
	})
	return streamCallbackPtr
}

// onUVCFrame is libuvc's uvc_frame_callback_t bridge: invoked on libuvc's own
// capture thread for each delivered frame. It must not block.
func onUVCFrame(framePtr uintptr, userData uintptr) {
	activeMu.Lock()
	t, ok := activeByHandle[userData]
	activeMu.Unlock()
	if !ok || framePtr == 0 {
		return
	}

	t.cbMu.Lock()
	cb := t.cb
	t.cbMu.Unlock()
	if cb == nil {
		return
	}

	f := (*uvcFrame)(unsafe.Pointer(framePtr))
	format := pixelFormatFromUVC(f.frameFormat)
	raw := &uvcpreview.RawFrame{
		Format:   format,
		Width:    int(f.width),
		Height:   int(f.height),
		Step:     int(f.step),
		Bytes:    int(f.dataBytes),
		Sequence: uint64(f.sequence),
	}
	if f.data != 0 && f.dataBytes > 0 {
		raw.Data = unsafe.Slice((*byte)(unsafe.Pointer(f.data)), int(f.dataBytes))
	}
	cb(raw)
}

func pixelFormatFromUVC(format int32) uvcpreview.PixelFormat {
	switch format {
	case uvcFrameFormatYUYV:
		return uvcpreview.PixelFormatYUYV
	case uvcFrameFormatMJPEG:
		return uvcpreview.PixelFormatMJPEG
	case uvcFrameFormatNV12:
		return uvcpreview.PixelFormatNV12
	case uvcFrameFormatH264:
		return uvcpreview.PixelFormatH264
	default:
		return uvcpreview.PixelFormatOther
	}
}

func pixelFormatToUVC(format uvcpreview.PixelFormat) (int32, bool) {
	switch format {
	case uvcpreview.PixelFormatYUYV:
		return uvcFrameFormatYUYV, true
	case uvcpreview.PixelFormatMJPEG:
		return uvcFrameFormatMJPEG, true
	case uvcpreview.PixelFormatNV12:
		return uvcFrameFormatNV12, true
	case uvcpreview.PixelFormatH264:
		return uvcFrameFormatH264, true
	default:
		return 0, false
	}
}

// New opens the first device matching opts' vendor/product filters (0 means
// any) and returns a Transport driving it. Callers are responsible for
// calling Close.
func New(rawOpts map[string]interface{}) (uvcpreview.Transport, error) {
	initLib()
	if libErr != nil {
		return nil, libErr
	}
	opts, err := uvcpreview.DecodeVendorOptions(rawOpts)
	if err != nil {
		return nil, err
	}

	t := &Transport{opts: opts}

	var ctxPtr uintptr
	if rc := uvcInit(uintptr(unsafe.Pointer(&ctxPtr)), 0); rc != 0 {
		return nil, fmt.Errorf("transportuvc: uvc_init: %s", strerror(rc))
	}
	t.ctx = ctxPtr

	var devPtr uintptr
	rc := uvcFindDevice(t.ctx, uintptr(unsafe.Pointer(&devPtr)), opts.VendorID, opts.ProductID, 0)
	if rc != 0 {
		uvcExit(t.ctx)
		return nil, fmt.Errorf("transportuvc: uvc_find_device: %s", strerror(rc))
	}
	t.dev = devPtr

	var devhPtr uintptr
	rc = uvcOpen(t.dev, uintptr(unsafe.Pointer(&devhPtr)))
	if rc != 0 {
		uvcUnrefDevice(t.dev)
		uvcExit(t.ctx)
		return nil, fmt.Errorf("transportuvc: uvc_open: %s", strerror(rc))
	}
	t.devh = devhPtr

	activeMu.Lock()
	handleCounter++
	t.handle = handleCounter
	activeByHandle[t.handle] = t
	activeMu.Unlock()

	return t, nil
}

// EnumerateFormatDescriptors walks libuvc's format_desc/frame_desc linked
// lists for the opened device's streaming interface.
func (t *Transport) EnumerateFormatDescriptors(ctx context.Context) ([]uvcpreview.FormatDescriptor, error) {
	t.mu.Lock()
	devh := t.devh
	t.mu.Unlock()
	if devh == 0 {
		return nil, fmt.Errorf("transportuvc: device not open")
	}

	var out []uvcpreview.FormatDescriptor
	for fd := uvcGetFormatDescs(devh); fd != 0; {
		desc := (*uvcFormatDesc)(unsafe.Pointer(fd))

		var format uvcpreview.PixelFormat
		var fourcc [16]byte
		switch desc.descriptorSubtype {
		case uvcVSFormatUncompressed:
			format = uvcpreview.PixelFormatUncompressed
			fourcc = desc.guidFormat
		case uvcVSFormatMJPEG:
			format = uvcpreview.PixelFormatMJPEG
		case uvcVSFormatFrameBased:
			format = uvcpreview.PixelFormatH264
		default:
			fd = desc.next
			continue
		}

		var frames []uvcpreview.FrameDescriptor
		for frp := desc.frameDescs; frp != 0; {
			fr := (*uvcFrameDesc)(unsafe.Pointer(frp))
			frames = append(frames, uvcpreview.FrameDescriptor{
				Width:  int(fr.width),
				Height: int(fr.height),
			})
			frp = fr.next
		}

		out = append(out, uvcpreview.FormatDescriptor{
			Format: format,
			FourCC: fourcc,
			Frames: frames,
		})
		fd = desc.next
	}
	return out, nil
}

// Negotiate calls libuvc's uvc_get_stream_ctrl_format_size (or the fourcc
// variant for NV12, since libuvc enumerates NV12 only by GUID) and caches the
// resulting uvc_stream_ctrl_t for StartStreaming.
func (t *Transport) Negotiate(ctx context.Context, format uvcpreview.PixelFormat, width, height, fps int) (uvcpreview.StreamCtrl, error) {
	t.mu.Lock()
	devh := t.devh
	t.mu.Unlock()
	if devh == 0 {
		return uvcpreview.StreamCtrl{}, fmt.Errorf("transportuvc: device not open")
	}

	ctrlBuf := make([]byte, uvcStreamCtrlSize)
	ctrlPtr := uintptr(unsafe.Pointer(&ctrlBuf[0]))

	var rc int32
	if format == uvcpreview.PixelFormatNV12 {
		fourcc := [5]byte{'N', 'V', '1', '2', 0}
		rc = uvcGetStreamCtrlFormatSizeFourcc(devh, ctrlPtr, uintptr(unsafe.Pointer(&fourcc[0])), int32(width), int32(height), int32(fps))
	} else {
		uvcFormat, ok := pixelFormatToUVC(format)
		if !ok {
			return uvcpreview.StreamCtrl{}, fmt.Errorf("transportuvc: unsupported negotiation format %s", format)
		}
		rc = uvcGetStreamCtrlFormatSize(devh, ctrlPtr, uvcFormat, int32(width), int32(height), int32(fps))
	}
	if rc != 0 {
		return uvcpreview.StreamCtrl{}, fmt.Errorf("%w: %s", uvcpreview.ErrNegotiation, strerror(rc))
	}

	t.mu.Lock()
	t.ctrlBuf = ctrlBuf
	t.mu.Unlock()

	return uvcpreview.StreamCtrl{Format: format, Width: width, Height: height, FPS: fps}, nil
}

// StartStreaming replays the cached stream control from the most recent
// Negotiate call and begins asynchronous delivery through cb.
func (t *Transport) StartStreaming(ctx context.Context, ctrl uvcpreview.StreamCtrl, cb uvcpreview.FrameCallback) error {
	t.mu.Lock()
	devh := t.devh
	ctrlBuf := t.ctrlBuf
	t.mu.Unlock()
	if devh == 0 {
		return fmt.Errorf("transportuvc: device not open")
	}
	if ctrlBuf == nil {
		return fmt.Errorf("transportuvc: StartStreaming called before a successful Negotiate")
	}

	t.cbMu.Lock()
	t.cb = cb
	t.cbMu.Unlock()

	rc := uvcStartStreaming(devh, uintptr(unsafe.Pointer(&ctrlBuf[0])), streamCallbackTrampoline(), t.handle, 0)
	if rc != 0 {
		return fmt.Errorf("%w: uvc_start_streaming: %s", uvcpreview.ErrTransport, strerror(rc))
	}
	return nil
}

// StopStreaming halts delivery; safe to call even if not currently streaming.
func (t *Transport) StopStreaming() error {
	t.mu.Lock()
	devh := t.devh
	t.mu.Unlock()
	if devh == 0 {
		return nil
	}
	uvcStopStreaming(devh)
	t.cbMu.Lock()
	t.cb = nil
	t.cbMu.Unlock()
	return nil
}

// Close releases the device handle and context. Safe to call once after the
// Transport is no longer in use.
func (t *Transport) Close() error {
	t.mu.Lock()
	devh := t.devh
	ctx := t.ctx
	t.devh = 0
	t.dev = 0
	t.ctx = 0
	t.mu.Unlock()

	activeMu.Lock()
	delete(activeByHandle, t.handle)
	activeMu.Unlock()

	if devh != 0 {
		uvcClose(devh)
	}
	if ctx != 0 {
		uvcExit(ctx)
	}
	return nil
}
