package diskpool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest describes a persisted pool directory.
type Manifest struct {
	Version     int       `json:"version"`
	Entries     int       `json:"entries"`
	Compression string    `json:"compression"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

const manifestFilename = "manifest.json"

// NewManifest builds a manifest for a pool of n entries.
func NewManifest(n int, compression string) *Manifest {
	if compression == "" {
		compression = "none"
	}
	return &Manifest{
		Version:     ManifestVersion,
		Entries:     n,
		Compression: compression,
		UpdatedAt:   time.Now().UTC(),
	}
}

// WriteManifest writes the manifest into dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFilename), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFilename))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
