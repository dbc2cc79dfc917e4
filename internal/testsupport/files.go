package testsupport

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to name under dir, creating parents, and returns
// the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ChunkReader returns at most size bytes per Read, so tests can place chunk
// boundaries anywhere, including inside multi-byte characters.
type ChunkReader struct {
	data []byte
	size int
	// Reads counts calls that returned data.
	Reads int
}

// NewChunkReader splits data into reads of size bytes.
func NewChunkReader(data []byte, size int) *ChunkReader {
	if size <= 0 {
		size = 1
	}
	return &ChunkReader{data: data, size: size}
}

func (r *ChunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(r.size, len(p), len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	r.Reads++
	return n, nil
}
