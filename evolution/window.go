package evolution

// FitnessWindow is a fixed-capacity ring of the most recent best-fitness
// values. Pushing into a full window evicts the oldest value.
type FitnessWindow struct {
	buf  []float64
	next int
	n    int
}

func NewFitnessWindow(capacity int) *FitnessWindow {
	if capacity < 1 {
		panic("fitness window capacity must be positive")
	}
	return &FitnessWindow{buf: make([]float64, capacity)}
}

func (w *FitnessWindow) Push(v float64) {
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.n < len(w.buf) {
		w.n++
	}
}

func (w *FitnessWindow) Len() int   { return w.n }
func (w *FitnessWindow) Cap() int   { return len(w.buf) }
func (w *FitnessWindow) Full() bool { return w.n == len(w.buf) }

func (w *FitnessWindow) Mean() float64 {
	if w.n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range w.Values() {
		sum += v
	}
	return sum / float64(w.n)
}

// Values returns the window's contents, oldest first.
func (w *FitnessWindow) Values() []float64 {
	out := make([]float64, 0, w.n)
	start := (w.next - w.n + len(w.buf)) % len(w.buf)
	for i := 0; i < w.n; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}
