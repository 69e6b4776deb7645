package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"fuzzrig/internal/toolchain"
)

// ReproVersion is the bundle schema version. Bump on incompatible changes.
const ReproVersion = 1

// ReproExt is the file extension of persisted bundles.
const ReproExt = ".mp"

// ReproModule is one derived module inside a bundle.
type ReproModule struct {
	Name   string `msgpack:"name"`
	Source string `msgpack:"source"`
}

// ReproBundle captures everything needed to replay one input offline: the
// raw structured input plus the module sources derived from it, so the
// failure is inspectable even when the translator later changes.
type ReproBundle struct {
	Version   int           `msgpack:"version"`
	ID        string        `msgpack:"id"`
	CreatedAt time.Time     `msgpack:"created_at"`
	Reason    string        `msgpack:"reason"`
	Input     []byte        `msgpack:"input"`
	Modules   []ReproModule `msgpack:"modules"`
}

// NewReproBundle assembles a bundle from the input and the module set it
// produced.
func NewReproBundle(input []byte, set toolchain.ModuleSet, reason string) *ReproBundle {
	b := &ReproBundle{
		Version:   ReproVersion,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Reason:    reason,
		Input:     append([]byte(nil), input...),
	}
	for _, mod := range set {
		b.Modules = append(b.Modules, ReproModule{Name: mod.Name, Source: mod.Source})
	}
	return b
}

// WriteRepro persists the bundle under dir as <id>.mp. The write goes
// through a temp file and rename so a crash mid-write never leaves a
// half-formed bundle on disk.
func WriteRepro(dir string, b *ReproBundle) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create repro dir: %w", err)
	}

	data, err := msgpack.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode repro bundle: %w", err)
	}

	path := filepath.Join(dir, b.ID+ReproExt)
	tmp, err := os.CreateTemp(dir, "repro-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write repro bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move repro bundle into place: %w", err)
	}
	return path, nil
}

// ReadRepro loads and validates a persisted bundle.
func ReadRepro(path string) (*ReproBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read repro bundle: %w", err)
	}
	var b ReproBundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%s: not a repro bundle: %w", path, err)
	}
	if b.Version != ReproVersion {
		return nil, fmt.Errorf("%s: unsupported bundle version %d", path, b.Version)
	}
	return &b, nil
}
