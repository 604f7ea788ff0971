package cache

import (
	"sync"
	"time"
)

// cleanupInterval is how often in-memory stores drop expired entries
const cleanupInterval = 5 * time.Minute

// janitor runs a cleanup function periodically until stopped
type janitor struct {
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func startJanitor(interval time.Duration, cleanup func()) *janitor {
	j := &janitor{stopChan: make(chan struct{})}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-j.stopChan:
				return
			case <-ticker.C:
				cleanup()
			}
		}
	}()
	return j
}

// stop ends the cleanup goroutine. Safe to call multiple times
func (j *janitor) stop() {
	j.closeOnce.Do(func() {
		close(j.stopChan)
		j.wg.Wait()
	})
}
