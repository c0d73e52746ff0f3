package service

import (
	"sync"
	"time"
)

// RateLimitResult is what the middleware turns into response headers.
type RateLimitResult struct {
	Limited   bool
	Remaining int64
	ResetAt   time.Time
}

// RateLimitStore is the swap point for a shared atomic counter backend.
// The bundled memory store is process-local on purpose: counters may be
// lost on restart and replicas under-count globally. That drift is an
// accepted limitation, not a security boundary.
type RateLimitStore interface {
	Increment(key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

type MemoryRateLimitStore struct {
	mutex   sync.Mutex
	windows map[string]*memoryWindow
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		windows: make(map[string]*memoryWindow),
	}
}

func (store *MemoryRateLimitStore) Increment(key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()

	store.mutex.Lock()
	defer store.mutex.Unlock()

	win, exists := store.windows[key]
	if !exists || now.After(win.resetAt) {
		win = &memoryWindow{
			count:   0,
			resetAt: now.Add(window),
		}
		store.windows[key] = win
	}

	win.count++
	return win.count, win.resetAt, nil
}

// Prune drops expired windows so the map does not grow unbounded.
func (store *MemoryRateLimitStore) Prune() {
	now := time.Now()

	store.mutex.Lock()
	defer store.mutex.Unlock()

	for key, win := range store.windows {
		if now.After(win.resetAt) {
			delete(store.windows, key)
		}
	}
}

type RateLimitServiceConfig struct {
	Window time.Duration
}

type RateLimitService struct {
	config RateLimitServiceConfig
	store  RateLimitStore
}

func NewRateLimitService(config RateLimitServiceConfig, store RateLimitStore) *RateLimitService {
	return &RateLimitService{
		config: config,
		store:  store,
	}
}

func (rls *RateLimitService) Init() error {
	return nil
}

// Check counts the request against the key's fixed window. The first request
// in a window sets the reset time; limited is true once the counter passes
// the limit. A limit of zero disables limiting for the key.
func (rls *RateLimitService) Check(key string, limit int64) (RateLimitResult, error) {
	if limit <= 0 {
		return RateLimitResult{Limited: false, Remaining: -1, ResetAt: time.Now().Add(rls.config.Window)}, nil
	}

	count, resetAt, err := rls.store.Increment(key, rls.config.Window)
	if err != nil {
		return RateLimitResult{}, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Limited:   count > limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
