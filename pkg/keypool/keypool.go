// Package keypool manages an ordered pool of speech recognition credentials.
// Keys are rotated past only when their most recent use failed with an
// authorization/quota error; a cooled-down key becomes available again
// without any quota probe.
package keypool

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "clipforge-ai/pkg/errors"
)

const DefaultCooldown = time.Hour

type entry struct {
	key string
	// exhaustedAt is zero while the key is considered available.
	exhaustedAt time.Time
}

// Pool is a cooldown-based key rotation pool. It never performs network
// calls; callers mark keys exhausted based on the status codes they observe.
type Pool struct {
	mu       sync.Mutex
	entries  []entry
	cooldown time.Duration

	now func() time.Time
}

// New builds a pool from an ordered key list. Order defines rotation
// preference: the first available key always wins.
func New(keys []string, cooldown time.Duration) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		entries = append(entries, entry{key: key})
	}
	return &Pool{
		entries:  entries,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// GetAvailableKey returns the first key whose exhaustion mark is absent or
// older than the cooldown window. Expired marks are cleared so later calls
// skip the cooldown check entirely.
func (p *Pool) GetAvailableKey() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for i := range p.entries {
		e := &p.entries[i]
		if !e.exhaustedAt.IsZero() && now.Sub(e.exhaustedAt) > p.cooldown {
			e.exhaustedAt = time.Time{}
		}
		if e.exhaustedAt.IsZero() {
			return e.key, nil
		}
	}

	return "", p.exhaustedError(now)
}

// MarkExhausted flags a key after a real authorization/quota failure
// (401/403/429). Transient network errors must not be reported here.
func (p *Pool) MarkExhausted(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.entries {
		if p.entries[i].key == key {
			p.entries[i].exhaustedAt = p.now()
			return
		}
	}
}

// ResetAll clears every exhaustion mark.
func (p *Pool) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.entries {
		p.entries[i].exhaustedAt = time.Time{}
	}
}

// Size returns the number of configured keys.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Pool) exhaustedError(now time.Time) error {
	if len(p.entries) == 0 {
		return apperrors.WrapWithDetail(apperrors.CodeAllKeysExhausted,
			"All speech recognition keys exhausted", "no keys configured", nil)
	}

	ages := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		ages = append(ages, fmt.Sprintf("%s exhausted %ds ago", maskKey(e.key), int(now.Sub(e.exhaustedAt).Seconds())))
	}
	return apperrors.WrapWithDetail(apperrors.CodeAllKeysExhausted,
		"All speech recognition keys exhausted", strings.Join(ages, "; "), nil)
}

// maskKey keeps diagnostics useful without leaking full credentials.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
