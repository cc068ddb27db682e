package acquire

import "context"

// Semaphore is a counting semaphore used to bound the process pool, the
// async pool and the per-provider transcription ceiling.
type Semaphore struct {
	ch chan struct{}
}

// NewSemaphore creates a semaphore with the given capacity.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 1
	}
	return &Semaphore{ch: make(chan struct{}, capacity)}
}

// Acquire takes a slot, blocking until one is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (s *Semaphore) Release() {
	<-s.ch
}

// Pools groups the bounded pools one acquisition run shares. Process gates
// CPU-bound subprocess work, Network gates downloads and API calls,
// Transcribe enforces the active ASR provider's concurrency ceiling.
type Pools struct {
	Process    *Semaphore
	Network    *Semaphore
	Transcribe *Semaphore
}
