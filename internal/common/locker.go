package common

import (
	"sync"

	"github.com/puzpuzpuz/xsync"
)

// RaffleLocker serializes the reserve/confirm/draw paths of a single raffle
// while leaving unrelated raffles fully concurrent.
type RaffleLocker struct {
	mutexes *xsync.MapOf[string, *sync.Mutex]
}

func NewRaffleLocker() *RaffleLocker {
	return &RaffleLocker{mutexes: xsync.NewMapOf[*sync.Mutex]()}
}

func (l *RaffleLocker) Lock(raffleID string) {
	// LoadOrCompute may call the closure more than once, so it must return
	// the same mutex every time or Lock and Unlock end up on different ones.
	candidate := &sync.Mutex{}
	mutex, _ := l.mutexes.LoadOrCompute(raffleID, func() *sync.Mutex {
		return candidate
	})

	mutex.Lock()
}

func (l *RaffleLocker) Unlock(raffleID string) {
	mutex, ok := l.mutexes.Load(raffleID)
	if !ok {
		return
	}

	mutex.Unlock()
}
