package popup

import (
	"fmt"
	"sync"
	"time"
)

// elapsedTimer drives the MM:SS display while a submission waits.
type elapsedTimer struct {
	tick time.Duration
	now  func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func newElapsedTimer(tick time.Duration, now func() time.Time) *elapsedTimer {
	return &elapsedTimer{tick: tick, now: now}
}

// Start resets the display to 00:00 and re-renders it every tick until Stop.
func (t *elapsedTimer) Start(render func(string)) {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.now()
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	render(formatElapsed(0))
	go func() {
		defer close(done)
		ticker := time.NewTicker(t.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				render(formatElapsed(t.now().Sub(start)))
			}
		}
	}()
}

// Stop halts the ticker and waits for the last render to finish. It is safe
// to call on a timer that was never started.
func (t *elapsedTimer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the ticker goroutine is active.
func (t *elapsedTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
