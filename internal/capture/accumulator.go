package capture

import "sync"

// accumulator is the growable recording buffer. One mutex makes the
// real-time append and the control-plane snapshot/clear mutually
// exclusive, so a reader never observes a partially written batch.
type accumulator struct {
	mu  sync.Mutex
	buf []byte
}

// append copies p onto the end of the buffer. Called from the backend's
// data callback; the critical section is a single amortized-O(1) copy.
func (a *accumulator) append(p []byte) {
	a.mu.Lock()
	a.buf = append(a.buf, p...)
	a.mu.Unlock()
}

// reset empties the buffer but keeps its capacity for the next session.
func (a *accumulator) reset() {
	a.mu.Lock()
	a.buf = a.buf[:0]
	a.mu.Unlock()
}

func (a *accumulator) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf)
}

func (a *accumulator) empty() bool {
	return a.len() == 0
}

// snapshot returns a copy of the accumulated bytes.
func (a *accumulator) snapshot() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]byte, len(a.buf))
	copy(out, a.buf)
	return out
}
