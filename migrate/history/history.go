// Package history persists schema snapshots between runs.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/schema"
)

// DefaultSnapshotPath is where the snapshot lives relative to the project
// root.
const DefaultSnapshotPath = ".migforge/schema.json"

// snapshotVersion guards the on-disk format.
const snapshotVersion = 1

// Snapshot is the persisted schema state after the last recorded run.
type Snapshot struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Checksum  string            `json:"checksum"`
	Files     []string          `json:"files,omitempty"`
	Schema    *schema.SchemaSet `json:"schema"`
}

// Store reads and writes schema snapshots.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a snapshot store at the given path.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Load reads the last snapshot. A missing file is not an error; it loads as
// an empty snapshot so the first diff treats every table as new.
func (s *Store) Load() (*Snapshot, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			debug.Debug("no snapshot on disk", "path", s.path)
			return &Snapshot{Version: snapshotVersion, Schema: schema.NewSchemaSet()}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s has unsupported version %d", s.path, snap.Version)
	}
	if snap.Schema == nil {
		snap.Schema = schema.NewSchemaSet()
	}

	debug.Debug("loaded snapshot", "path", s.path, "tables", snap.Schema.Len(), "updatedAt", snap.UpdatedAt)
	return &snap, nil
}

// Save writes the merged schema and the file list that produced it.
func (s *Store) Save(set *schema.SchemaSet, files []string) error {
	serialized, err := SerializeSchema(set)
	if err != nil {
		return err
	}

	snap := Snapshot{
		Version:   snapshotVersion,
		UpdatedAt: time.Now().UTC(),
		Checksum:  CalculateChecksum(serialized),
		Files:     files,
		Schema:    set,
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	debug.Info("snapshot saved", "path", s.path, "tables", set.Len())
	return nil
}

// Verify reports whether the snapshot's schema still matches its recorded
// checksum. A mismatch means the file was edited by hand.
func (snap *Snapshot) Verify() (bool, error) {
	if snap.Checksum == "" {
		return true, nil
	}
	serialized, err := SerializeSchema(snap.Schema)
	if err != nil {
		return false, err
	}
	return CalculateChecksum(serialized) == snap.Checksum, nil
}

// Pending returns the available migration files the snapshot has not seen.
func Pending(recorded, available []string) []string {
	recordedMap := make(map[string]bool)
	for _, name := range recorded {
		recordedMap[name] = true
	}

	var pending []string
	for _, name := range available {
		if !recordedMap[name] {
			pending = append(pending, name)
		}
	}
	return pending
}

// CalculateChecksum calculates a checksum for serialized schema text.
func CalculateChecksum(schemaJSON string) string {
	hash := sha256.Sum256([]byte(schemaJSON))
	return hex.EncodeToString(hash[:])
}
