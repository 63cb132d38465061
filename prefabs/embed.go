package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Dir is the on-disk directory whose files override the embedded prefabs.
var Dir = "prefabs"

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

// ErrEmbeddedOnly is returned by ProgramPath for a bundled program with no
// copy on disk.
var ErrEmbeddedOnly = errors.New("prefabs: program is only bundled, not on disk")

// LoadProgram returns program source. A readable file at name wins, then the
// on-disk override, then the bundled scripts.
func LoadProgram(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("prefabs: load program: empty name")
	}
	if p, err := ProgramPath(name); err == nil {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("prefabs: load program %s: %w", name, err)
		}
		return string(data), nil
	}
	data, err := ScriptsFS.ReadFile(cleanScriptPath(name))
	if err != nil {
		return "", fmt.Errorf("prefabs: load program %s: %w", name, err)
	}
	return string(data), nil
}

// ProgramPath is the disk file LoadProgram reads for name.
func ProgramPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("prefabs: program path: empty name")
	}
	if isRegularFile(name) {
		return name, nil
	}
	if p := diskPrefabPath(cleanScriptPath(name)); isRegularFile(p) {
		return p, nil
	}
	if _, err := fs.Stat(ScriptsFS, cleanScriptPath(name)); err == nil {
		return "", fmt.Errorf("%w: %s", ErrEmbeddedOnly, name)
	}
	return "", fmt.Errorf("prefabs: program %s: %w", name, fs.ErrNotExist)
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Programs lists the bundled program names without extension.
func Programs() []string {
	entries, err := fs.ReadDir(ScriptsFS, "scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isScriptFile(entry.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(name)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanPrefabPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}

	s := filepath.ToSlash(p)

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	if path.Ext(s) == "" {
		s += ".tengo"
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}
