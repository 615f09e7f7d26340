// Package idempotency remembers responses to requests carrying an
// Idempotency-Key so that retries replay the first answer.
package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Backend stores encoded responses with a time to live.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Idempotency struct {
	backend Backend
	ttl     time.Duration
}

func NewIdempotency(backend Backend, ttl time.Duration) *Idempotency {
	return &Idempotency{backend: backend, ttl: ttl}
}

// Response is a stored answer. Fingerprint identifies the request body it
// answered so a reused key with a different body can be refused.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Result      []byte `json:"result"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Get returns the stored response for key, or nil if there is none.
func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	raw, ok, err := i.backend.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrapf(err, "decode stored response %q", key)
	}
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "encode response")
	}
	return i.backend.Set(ctx, key, raw, i.ttl)
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

const sweepInterval = time.Minute

// Memory is a process-local Backend used when no Redis is configured.
// Expired entries are swept on writes at most once per sweepInterval.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if !now.Before(m.nextSweep) {
		for k, e := range m.entries {
			if !now.Before(e.expires) {
				delete(m.entries, k)
			}
		}
		m.nextSweep = now.Add(sweepInterval)
	}
	m.entries[key] = memoryEntry{value: value, expires: now.Add(ttl)}
	return nil
}
