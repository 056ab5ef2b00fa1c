package service

import "sync"

// keyedMutex serializes operations per string key. It backs the per-ride and
// per-user single-writer guarantees inside one process; cross-process
// exclusion is layered on top with the Redis ride lock.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
