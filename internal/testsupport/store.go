package testsupport

import (
	"path/filepath"
	"testing"

	"relexer/internal/tokenstore"
)

// MustOpenStore opens a tokenstore.Store in a temp directory and registers
// cleanup.
func MustOpenStore(t testing.TB) *tokenstore.Store {
	t.Helper()

	store, err := tokenstore.Open(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("tokenstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
