// Package levels provides level loading for wormtrack.
// It parses level files through the registered formats, validates them and
// converts them into simulation definitions. sim does not depend on levels.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/vovakirdan/wormtrack/internal/levels/formats"
	"github.com/vovakirdan/wormtrack/internal/sim"
)

//go:embed pack
var builtin embed.FS

// Level is a validated level ready to be simulated.
type Level struct {
	ID          string
	Name        string
	Description string
	Definition  sim.Definition
	Metadata    map[string]string
	FilePath    string
}

// Loader reads levels from a file system.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Builtin returns a loader over the level pack compiled into the binary.
func Builtin() *Loader {
	sub, err := fs.Sub(builtin, "pack")
	if err != nil {
		panic(fmt.Sprintf("levels: embedded pack: %v", err))
	}
	return NewLoader(sub)
}

// FromDir returns a loader over a directory on disk.
func FromDir(dir string) *Loader {
	return NewLoader(os.DirFS(dir))
}

// LoadAll recursively scans and loads all level files.
// Invalid files are skipped; use Check to report them.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !formats.Supported(p) {
			return nil
		}

		level, err := l.LoadFile(p)
		if err != nil {
			// Skip invalid files
			return nil
		}
		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("levels: walking files: %w", err)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// Check loads every level file and returns one error per invalid file.
func (l *Loader) Check() ([]error, error) {
	var problems []error
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !formats.Supported(p) {
			return nil
		}
		if _, err := l.LoadFile(p); err != nil {
			problems = append(problems, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("levels: walking files: %w", err)
	}
	return problems, nil
}

// LoadFile loads and validates a single level file.
func (l *Loader) LoadFile(p string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Level{}, fmt.Errorf("levels: reading %s: %w", p, err)
	}
	return Parse(p, data)
}

// Parse decodes, converts and validates level content. name selects the
// format by extension.
func Parse(name string, data []byte) (Level, error) {
	doc, err := formats.Parse(path.Base(name), data)
	if err != nil {
		return Level{}, fmt.Errorf("levels: parsing %s: %w", name, err)
	}

	def, err := convert(doc)
	if err != nil {
		return Level{}, fmt.Errorf("levels: %s: %w", name, err)
	}
	if err := Validate(def); err != nil {
		return Level{}, fmt.Errorf("levels: %s: %w", name, err)
	}

	return Level{
		ID:          def.ID,
		Name:        def.Name,
		Description: doc.Description,
		Definition:  def,
		Metadata:    doc.Metadata,
		FilePath:    name,
	}, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("levels: level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}
