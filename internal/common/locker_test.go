package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_RaffleLocker_mutualExclusion(t *testing.T) {
	locker := NewRaffleLocker()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			locker.Lock("raffle-1")
			defer locker.Unlock("raffle-1")
			counter++
		}()
	}

	wg.Wait()
	require.Equal(t, 50, counter)
}

func Test_RaffleLocker_unlocksTheStoredMutex(t *testing.T) {
	locker := NewRaffleLocker()

	locker.Lock("raffle-1")
	stored, ok := locker.mutexes.Load("raffle-1")
	require.True(t, ok)
	require.False(t, stored.TryLock())

	locker.Unlock("raffle-1")
	require.True(t, stored.TryLock())
	stored.Unlock()

	// The first reservation of a raffle exercises the insertion path, so a
	// fresh lock/unlock cycle must not panic.
	require.NotPanics(t, func() {
		locker.Lock("raffle-2")
		locker.Unlock("raffle-2")
	})
}

func Test_RaffleLocker_independentRaffles(t *testing.T) {
	locker := NewRaffleLocker()
	locker.Lock("raffle-1")
	defer locker.Unlock("raffle-1")

	done := make(chan struct{})
	go func() {
		locker.Lock("raffle-2")
		defer locker.Unlock("raffle-2")
		close(done)
	}()

	<-done
}
