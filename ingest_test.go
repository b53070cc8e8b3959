package uvcpreview

import "testing"

func TestIngestCallback_DropsInvalidFrame(t *testing.T) {
	pool := NewFramePool(4)
	queue := NewPreviewQueue(4)
	stats := &Stats{}
	ic := &ingestCallback{pool: pool, queue: queue, stats: stats, running: func() bool { return true }}

	ic.onFrame(&RawFrame{Format: PixelFormatYUYV, Width: 4, Height: 4, Bytes: 4}) // too few bytes

	if queue.Len() != 0 {
		t.Fatalf("queue.Len() = %d, want 0 for an invalid frame", queue.Len())
	}
	if stats.Snapshot().IngestDrops != 1 {
		t.Errorf("IngestDrops = %d, want 1", stats.Snapshot().IngestDrops)
	}
}

func TestIngestCallback_DropsWhenNotRunning(t *testing.T) {
	pool := NewFramePool(4)
	queue := NewPreviewQueue(4)
	stats := &Stats{}
	ic := &ingestCallback{pool: pool, queue: queue, stats: stats, running: func() bool { return false }}

	data := make([]byte, 2*4*4)
	ic.onFrame(&RawFrame{Format: PixelFormatYUYV, Width: 4, Height: 4, Data: data, Bytes: len(data)})

	if queue.Len() != 0 {
		t.Fatalf("queue.Len() = %d, want 0 when session not running", queue.Len())
	}
}

func TestIngestCallback_DuplicatesAndEnqueues(t *testing.T) {
	pool := NewFramePool(4)
	queue := NewPreviewQueue(4)
	stats := &Stats{}
	ic := &ingestCallback{pool: pool, queue: queue, stats: stats, running: func() bool { return true }}

	data := make([]byte, 2*4*4)
	for i := range data {
		data[i] = byte(i)
	}
	src := &RawFrame{Format: PixelFormatYUYV, Width: 4, Height: 4, Data: data, Bytes: len(data)}
	ic.onFrame(src)

	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1", queue.Len())
	}
	got := queue.PopBlocking()
	if got == src {
		t.Fatal("ingest must enqueue a duplicate, not the original frame")
	}
	for i := range data {
		if got.Data[i] != data[i] {
			t.Fatalf("duplicated payload mismatch at %d: got %v want %v", i, got.Data[i], data[i])
		}
	}
}

func TestIngestCallback_DropsNewestWhenQueueFull(t *testing.T) {
	pool := NewFramePool(8)
	queue := NewPreviewQueue(1)
	stats := &Stats{}
	ic := &ingestCallback{pool: pool, queue: queue, stats: stats, running: func() bool { return true }}

	data := make([]byte, 2*4*4)
	ic.onFrame(&RawFrame{Format: PixelFormatYUYV, Width: 4, Height: 4, Data: data, Bytes: len(data)})
	ic.onFrame(&RawFrame{Format: PixelFormatYUYV, Width: 4, Height: 4, Data: data, Bytes: len(data)})

	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1 (second frame dropped)", queue.Len())
	}
	if stats.Snapshot().QueueDrops != 1 {
		t.Errorf("QueueDrops = %d, want 1", stats.Snapshot().QueueDrops)
	}
}
