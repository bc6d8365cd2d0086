package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"live-trivia-service/internal/ai"
)

// GenerationCache caches generated bank text in Redis, keyed per subject:
// SET trivia:gen:{subject} {raw text} EX {ttl}. On a miss it falls through
// to the inner generator, with concurrent misses for one subject collapsed
// into a single upstream call.
type GenerationCache struct {
	client *redis.Client
	inner  ai.Generator
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewGenerationCache(client *redis.Client, inner ai.Generator, ttl time.Duration) *GenerationCache {
	return &GenerationCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *GenerationCache) GenerateQuestions(ctx context.Context, subject string) (string, error) {
	key := c.key(subject)

	text, err := c.client.Get(ctx, key).Result()
	if err == nil && text != "" {
		return text, nil
	}

	result, err, _ := c.sf.Do(subject, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		text, err := c.client.Get(ctx, key).Result()
		if err == nil && text != "" {
			return text, nil
		}

		text, err = c.inner.GenerateQuestions(ctx, subject)
		if err != nil {
			return "", err
		}

		// best-effort write; generation still succeeds if Redis is down
		_ = c.client.Set(ctx, key, text, c.ttlWithJitter()).Err()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *GenerationCache) key(subject string) string {
	return "trivia:gen:" + subject
}

func (c *GenerationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
