package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestGenerationCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	gen := &countingGenerator{text: "Question: A?\n1) yes\nAnswer: 1\n"}
	cache := NewGenerationCache(client, gen, time.Minute)

	text, err := cache.GenerateQuestions(context.Background(), "history")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != gen.text {
		t.Fatalf("unexpected text: %q", text)
	}
	if gen.calls != 1 {
		t.Fatalf("expected generator called once, got %d", gen.calls)
	}
	if !mr.Exists("trivia:gen:history") {
		t.Fatal("expected cached key in redis")
	}

	// Second call should hit redis, generator not incremented.
	if _, err := cache.GenerateQuestions(context.Background(), "history"); err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected cache hit, generator calls %d", gen.calls)
	}
}

func TestGenerationCacheExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	gen := &countingGenerator{text: "Question: A?\nAnswer: 1\n"}
	cache := NewGenerationCache(client, gen, time.Minute)

	if _, err := cache.GenerateQuestions(context.Background(), "history"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	mr.FastForward(5 * time.Minute)

	if _, err := cache.GenerateQuestions(context.Background(), "history"); err != nil {
		t.Fatalf("generate after expiry: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected refetch after TTL, calls %d", gen.calls)
	}
}

type countingGenerator struct {
	text  string
	calls int
}

func (g *countingGenerator) GenerateQuestions(context.Context, string) (string, error) {
	g.calls++
	return g.text, nil
}
