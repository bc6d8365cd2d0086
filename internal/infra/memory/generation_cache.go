package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"live-trivia-service/internal/ai"
)

// GenerationCache caches generated bank text per subject with a TTL, so
// repeated /generate calls for the same subject do not hammer the AI
// backend. Concurrent misses for one subject collapse into a single
// upstream call.
type GenerationCache struct {
	inner ai.Generator
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedText
}

type cachedText struct {
	text      string
	expiresAt time.Time
}

func NewGenerationCache(inner ai.Generator, ttl time.Duration) *GenerationCache {
	return &GenerationCache{
		inner: inner,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedText),
	}
}

func (c *GenerationCache) GenerateQuestions(ctx context.Context, subject string) (string, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[subject]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.text, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(subject, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[subject]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.text, nil
		}
		c.mu.RUnlock()

		text, err := c.inner.GenerateQuestions(ctx, subject)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.cache[subject] = cachedText{
			text:      text,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *GenerationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
