package presets

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// builtin holds the preset files shipped with the binary. A preset
// directory on disk overrides them file by file.
//
//go:embed *.yaml scripts/*.tengo
var builtin embed.FS

// Load reads a preset spec, preferring dir on disk over the built-in copy.
// An empty dir reads only built-in files.
func Load(dir, name string) ([]byte, error) {
	return read(dir, trimRoot(filepath.ToSlash(name)))
}

// LoadScript reads a tengo script the same way Load reads specs. Names are
// relative to the scripts directory.
func LoadScript(dir, name string) ([]byte, error) {
	return read(dir, cleanScriptPath(name))
}

func read(dir, rel string) ([]byte, error) {
	if rel == "" {
		return nil, fs.ErrNotExist
	}
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel))); err == nil {
			return data, nil
		}
	}
	return builtin.ReadFile(rel)
}

func trimRoot(s string) string {
	return strings.TrimPrefix(s, "presets/")
}

func cleanScriptPath(name string) string {
	if name == "" {
		return ""
	}
	s := strings.TrimPrefix(trimRoot(filepath.ToSlash(name)), "scripts/")
	return path.Join("scripts", s)
}
