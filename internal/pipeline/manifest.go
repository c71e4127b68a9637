package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/dmcut/internal/types"
)

// ManifestFile is the analyze output read back by export.
const ManifestFile = "data_source.json"

// ReadManifest loads a manifest. A bare JSON array of clips, the older
// hand-edited form, is accepted too.
func ReadManifest(path string) (types.Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	b = bytes.TrimSpace(bytes.TrimPrefix(b, []byte("\xef\xbb\xbf")))

	var m types.Manifest
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &m.Clips); err != nil {
			return types.Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
		}
	} else if err := json.Unmarshal(b, &m); err != nil {
		return types.Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for i := range m.Clips {
		if m.Clips[i].Index == 0 {
			m.Clips[i].Index = i + 1
		}
	}
	return m, nil
}

// WriteManifest writes m as indented JSON, creating the parent folder.
func WriteManifest(path string, m types.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if m.Clips == nil {
		m.Clips = []types.ManifestClip{}
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
