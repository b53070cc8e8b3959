package uvcpreview

import "sync"

// SurfaceBuffer is the locked, writable region of a Surface returned by
// Lock.
type SurfaceBuffer struct {
	Bits   []byte
	Width  int
	Height int
	Step   int
}

// Surface is an opaque render target — a display preview view or a capture
// sink — whose pixel memory is touched only between Lock and UnlockAndPost.
// No pool or queue mutex may be held across a Lock/UnlockAndPost pair.
type Surface interface {
	Lock() (SurfaceBuffer, error)
	UnlockAndPost() error
	SetGeometry(width, height int, format PixelFormat) error
	GetFormat() PixelFormat
	Release() error
}

// InMemorySurface is a Surface test double that copies posted frames into an
// in-process buffer instead of talking to a windowing system. Only the
// number of posts is exposed (Posts); the posted pixels are not readable
// from outside the type.
type InMemorySurface struct {
	mu     sync.Mutex
	width  int
	height int
	format PixelFormat
	buf    []byte
	posts  int
}

// NewInMemorySurface creates a surface pre-bound to the RGBA_8888-equivalent
// PixelFormatRGBX, the format the preview worker always posts.
func NewInMemorySurface() *InMemorySurface {
	return &InMemorySurface{format: PixelFormatRGBX}
}

func (s *InMemorySurface) Lock() (SurfaceBuffer, error) {
	s.mu.Lock()
	if len(s.buf) < s.width*s.height*4 {
		s.buf = make([]byte, s.width*s.height*4)
	}
	return SurfaceBuffer{Bits: s.buf, Width: s.width, Height: s.height, Step: s.width * 4}, nil
}

func (s *InMemorySurface) UnlockAndPost() error {
	s.posts++
	s.mu.Unlock()
	return nil
}

func (s *InMemorySurface) SetGeometry(width, height int, format PixelFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height, s.format = width, height, format
	s.buf = make([]byte, width*height*4)
	return nil
}

func (s *InMemorySurface) GetFormat() PixelFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

func (s *InMemorySurface) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
	return nil
}

// Posts reports how many frames have been posted (test/metrics helper).
func (s *InMemorySurface) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}
