package cache

import "testing"

func TestRedisProductCache_GetSet(t *testing.T) {
	// TODO(TEAM-PLATFORM): Add integration tests with a test Redis instance
	t.Skip("Integration test - requires Redis")
}

func TestRedisProductCache_Invalidate(t *testing.T) {
	// TODO(TEAM-PLATFORM): Add integration tests
	t.Skip("Integration test - requires Redis")
}
