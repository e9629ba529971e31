package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	contractLockTTL   = 15 * time.Second
	lockAttempts      = 5
	lockRetryInterval = 150 * time.Millisecond
)

// localContractLocks serializes writers per contract within this process when
// no redis cache is configured. A process-local mutex cannot see writers in
// other processes; multi-process deployments must configure redis.
var localContractLocks sync.Map // contract id -> *sync.Mutex

// withContractLock runs fn while holding the per-contract write lease: the
// redis lease when a cache is configured, a process-local mutex otherwise.
// Schedule writes and settlements read state before writing it back, so every
// writer for a contract must hold some lock.
func withContractLock(ctx context.Context, cache *RedisCache, contractID uint, fn func() error) error {
	if cache == nil {
		mu, _ := localContractLocks.LoadOrStore(contractID, &sync.Mutex{})
		lock := mu.(*sync.Mutex)
		lock.Lock()
		defer lock.Unlock()
		return fn()
	}

	var token string
	var err error
	for attempt := 0; attempt < lockAttempts; attempt++ {
		token, err = cache.AcquireContractLock(ctx, contractID, contractLockTTL)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
	if err != nil {
		return err
	}
	defer func() {
		// A stuck lease stalls other writers for the full TTL.
		if relErr := cache.ReleaseContractLock(ctx, contractID, token); relErr != nil {
			log.Warn().Err(relErr).Uint("contract_id", contractID).Msg("failed to release contract lock")
		}
	}()

	return fn()
}
