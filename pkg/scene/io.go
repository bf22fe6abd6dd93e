package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Scene Serialization API
// =============================================================================

// MarshalScene converts a scene to indented JSON bytes.
func MarshalScene(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSceneTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalScene deserializes JSON bytes to a scene and applies option
// defaults.
func UnmarshalScene(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := s.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteSceneFile writes a scene to a JSON file with 0644 permissions.
func WriteSceneFile(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeSceneTo(s, f)
}

// ReadSceneFile reads a scene file, decoding TOML for .toml paths and JSON
// otherwise, and applies option defaults.
func ReadSceneFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return decodeTOML(data)
	}
	return UnmarshalScene(data)
}

// WriteScene writes a scene as JSON to an io.Writer.
func WriteScene(s *Scene, w io.Writer) error {
	return writeSceneTo(s, w)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeSceneTo(s *Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func decodeTOML(data []byte) (*Scene, error) {
	var s Scene
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if err := s.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &s, nil
}
