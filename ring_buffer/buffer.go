package ring_buffer

// Window keeps the most recent samples of a stream in a fixed-size ring.
type Window struct {
	buffer []int16
	head   int
	filled int
}

func New(size int) *Window {
	if size <= 0 {
		size = 1
	}
	return &Window{
		buffer: make([]int16, size),
	}
}

// Add appends samples, overwriting the oldest once the ring is full.
func (w *Window) Add(samples []int16) {
	for _, s := range samples {
		w.buffer[w.head] = s
		w.head = (w.head + 1) % len(w.buffer)
		if w.filled < len(w.buffer) {
			w.filled++
		}
	}
}

// Read returns the held samples, oldest first.
func (w *Window) Read() []int16 {
	samples := make([]int16, w.filled)
	start := (w.head - w.filled + len(w.buffer)) % len(w.buffer)
	for i := 0; i < w.filled; i++ {
		samples[i] = w.buffer[(start+i)%len(w.buffer)]
	}
	return samples
}
