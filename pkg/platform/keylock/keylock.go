// Package keylock serializes work per key using a fixed set of sharded mutexes.
//
// Operations on the same key always land on the same shard, so two mutations
// of one account never interleave. Different keys usually land on different
// shards and proceed in parallel.
package keylock

import (
	"context"
	"sync"
	"time"

	dErrors "peerhelp/pkg/domain-errors"
)

const numShards = 128

const defaultTimeout = 5 * time.Second

// Locker is a sharded per-key mutex.
type Locker struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

// New creates a Locker. A zero timeout uses the default of five seconds.
func New(timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Locker{timeout: timeout}
}

// Do runs fn while holding the shard lock for key.
func (l *Locker) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	shard := &l.shards[shardFor(key)]
	shard.Lock()
	defer shard.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: context cancelled")
	}
	return fn(ctx)
}

// shardFor hashes key with FNV-1a.
func shardFor(key string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime
	}
	return h % numShards
}
