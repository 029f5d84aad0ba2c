package store

import (
	"strings"
	"testing"
)

func TestPostgresStore_Create(t *testing.T) {
	// TODO(TEAM-PLATFORM): Add integration tests with test database
	t.Skip("Integration test - requires database")
}

func TestPostgresStore_Update(t *testing.T) {
	// TODO(TEAM-PLATFORM): Add integration tests
	t.Skip("Integration test - requires database")
}

func TestPostgresStore_FilterByField(t *testing.T) {
	// TODO(TEAM-PLATFORM): Add integration tests
	t.Skip("Integration test - requires database")
}

func TestGenerateRecordID(t *testing.T) {
	id := generateRecordID()

	if !strings.HasPrefix(id, "rec") {
		t.Errorf("Expected record ID to start with 'rec', got %s", id)
	}

	if len(id) != 20 {
		t.Errorf("Expected record ID length 20, got %d", len(id))
	}

	if id == generateRecordID() {
		t.Error("Expected distinct IDs on consecutive calls")
	}
}

func BenchmarkGenerateRecordID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		generateRecordID()
	}
}
