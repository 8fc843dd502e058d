package api

import (
	"sync"

	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
)

//Board holds the last status published by the live loop so HTTP handlers can read it from other goroutines
type Board struct {
	mu     sync.RWMutex
	status stabilizer.Status
}

func (b *Board) Publish(status stabilizer.Status) {
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
}

func (b *Board) Status() stabilizer.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}
