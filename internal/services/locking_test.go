package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContractLock_NilCacheStillSerializes(t *testing.T) {
	var inside, overlaps int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := withContractLock(context.Background(), nil, 42, func() error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlaps), "critical sections for one contract must never overlap")
}

func TestWithContractLock_NilCacheDistinctContractsRunIndependently(t *testing.T) {
	release := make(chan struct{})
	held := make(chan struct{})

	go func() {
		_ = withContractLock(context.Background(), nil, 1, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	done := make(chan error, 1)
	go func() {
		done <- withContractLock(context.Background(), nil, 2, func() error { return nil })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("writer on another contract must not wait for this lock")
	}
}
