package test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/state"
)

// BrokerURL is the Redis database integration tests run against. Database 9
// keeps test keys away from the development broker on the same instance.
const BrokerURL = "redis://localhost:6379/9"

// RequireBroker connects to the test broker and skips the test when Redis
// is not reachable. Override the address with TEST_BROKER_URL.
func RequireBroker(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("TEST_BROKER_URL")
	if url == "" {
		url = BrokerURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := state.NewRedisClient(ctx, url)
	if err != nil {
		t.Skipf("Redis not reachable at %s: %v", url, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
