package host

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"sonybd/internal/device"
)

// NonceCache remembers action responses by client nonce so retried
// requests are answered without pressing the button twice.
type NonceCache struct {
	cache *expirable.LRU[string, *device.ActionResponse]

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// NewNonceCache creates a cache holding up to maxSize nonces for expiration
func NewNonceCache(maxSize int, expiration time.Duration) *NonceCache {
	if maxSize <= 0 {
		maxSize = 50
	}
	if expiration <= 0 {
		expiration = time.Hour
	}

	return &NonceCache{
		cache:    expirable.NewLRU[string, *device.ActionResponse](maxSize, nil, expiration),
		inflight: make(map[string]chan struct{}),
	}
}

// CheckNonce returns the cached response for nonce, if any
func (nc *NonceCache) CheckNonce(nonce string) (*device.ActionResponse, bool) {
	if nonce == "" {
		return nil, false
	}
	return nc.cache.Get(nonce)
}

// Begin reserves nonce for the caller. A caller that gets owner == true must
// call Finish. Otherwise the response cached by an earlier request is returned.
// Requests repeating a nonce that is still being processed wait for it.
func (nc *NonceCache) Begin(ctx context.Context, nonce string) (cached *device.ActionResponse, owner bool, err error) {
	if nonce == "" {
		return nil, true, nil
	}

	for {
		nc.mu.Lock()
		if resp, found := nc.cache.Get(nonce); found {
			nc.mu.Unlock()
			return resp, false, nil
		}
		done, busy := nc.inflight[nonce]
		if !busy {
			nc.inflight[nonce] = make(chan struct{})
			nc.mu.Unlock()
			return nil, true, nil
		}
		nc.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Finish caches response under nonce and releases requests waiting on it.
// A nil response releases the nonce without caching, so the next request runs.
func (nc *NonceCache) Finish(nonce string, response *device.ActionResponse) {
	if nonce == "" {
		return
	}

	nc.mu.Lock()
	defer nc.mu.Unlock()
	if response != nil {
		nc.cache.Add(nonce, response)
	}
	if done, busy := nc.inflight[nonce]; busy {
		close(done)
		delete(nc.inflight, nonce)
	}
}

// Len returns the number of live nonces
func (nc *NonceCache) Len() int {
	return nc.cache.Len()
}

// ValidateNonce accepts 8 to 128 characters of [A-Za-z0-9_-]
func ValidateNonce(nonce string) bool {
	if len(nonce) < 8 || len(nonce) > 128 {
		return false
	}
	for _, c := range nonce {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
