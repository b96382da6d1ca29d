package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

// Archive persists the snapshot history as a snappy-compressed JSON file so
// training data survives restarts. Writes go through a temp file and rename.
type Archive struct {
	path   string
	logger *logging.Logger
}

// NewArchive creates an archive backed by the given file path
func NewArchive(path string, logger *logging.Logger) *Archive {
	return &Archive{path: path, logger: logger}
}

// Save writes the full snapshot history to disk
func (a *Archive) Save(snapshots []models.QueueSnapshot) error {
	raw, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}

	compressed := snappy.Encode(nil, raw)

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("failed to replace archive: %w", err)
	}

	a.logger.Info("Snapshot archive saved",
		"path", a.path,
		"snapshots", len(snapshots),
		"raw_bytes", len(raw),
		"compressed_bytes", len(compressed))
	return nil
}

// Load reads the snapshot history from disk. A missing file is not an error;
// it returns an empty history.
func (a *Archive) Load() ([]models.QueueSnapshot, error) {
	compressed, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress archive: %w", err)
	}

	var snapshots []models.QueueSnapshot
	if err := json.Unmarshal(raw, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}

	a.logger.Info("Snapshot archive loaded", "path", a.path, "snapshots", len(snapshots))
	return snapshots, nil
}
