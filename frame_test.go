package uvcpreview

import "testing"

func TestRawFrame_Duplicate(t *testing.T) {
	src := &RawFrame{
		Format: PixelFormatYUYV,
		Width:  4, Height: 2, Step: 8,
		Data:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
		Bytes: 8,
	}
	dst := &RawFrame{}

	duplicate(dst, src)

	if dst.Format != src.Format || dst.Width != src.Width || dst.Height != src.Height {
		t.Fatalf("duplicate() header mismatch: %+v vs %+v", dst, src)
	}
	if dst.Bytes != src.Bytes {
		t.Fatalf("duplicate() Bytes = %d, want %d", dst.Bytes, src.Bytes)
	}
	for i := range src.Data {
		if dst.Data[i] != src.Data[i] {
			t.Errorf("duplicate() data[%d] = %v, want %v", i, dst.Data[i], src.Data[i])
		}
	}

	dst.Data[0] = 99
	if src.Data[0] == 99 {
		t.Error("duplicate() is not independent from source")
	}
}

func TestRawFrame_EnsureCapacityReusesBackingArray(t *testing.T) {
	f := &RawFrame{Data: make([]byte, 16)}
	f.Data[0] = 0xAB
	f.ensureCapacity(4)
	if cap(f.Data) != 16 {
		t.Fatalf("ensureCapacity() shrank capacity to %d, want 16 retained", cap(f.Data))
	}
	if f.Data[:16][0] != 0xAB {
		t.Error("ensureCapacity() did not reuse the existing backing array")
	}
}
