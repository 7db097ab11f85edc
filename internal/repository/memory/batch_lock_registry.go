package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// BatchLockRegistry guards generation batches so only one runs per novel at a
// time. Entries expire on their own as a safety net against a crashed batch
// never releasing its lock.
type BatchLockRegistry struct {
	cache *cache.Cache
}

func NewBatchLockRegistry() *BatchLockRegistry {
	// Expire stale locks after 30 minutes, purge every 5.
	c := cache.New(30*time.Minute, 5*time.Minute)
	return &BatchLockRegistry{
		cache: c,
	}
}

// Acquire returns false when a batch already holds the lock for this novel.
func (r *BatchLockRegistry) Acquire(novelID uuid.UUID) bool {
	err := r.cache.Add(novelID.String(), time.Now(), cache.DefaultExpiration)
	return err == nil
}

func (r *BatchLockRegistry) Release(novelID uuid.UUID) {
	r.cache.Delete(novelID.String())
}

// Held reports whether a batch is currently running for this novel.
func (r *BatchLockRegistry) Held(novelID uuid.UUID) bool {
	_, found := r.cache.Get(novelID.String())
	return found
}
