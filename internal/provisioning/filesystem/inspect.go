package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// installMarkers identify a prior WordPress installation.
var installMarkers = []string{"wp-config.php", "wp-load.php", "wp-settings.php", "wp-includes"}

// Inspection describes the content of a target directory.
type Inspection struct {
	Path    string
	Created bool

	// Visible and Hidden list top-level entry names.
	Visible []string
	Hidden  []string

	// Markers lists the installation markers found.
	Markers []string
}

// Empty reports whether the directory has no visible entries.
func (i *Inspection) Empty() bool {
	return len(i.Visible) == 0
}

// PriorInstall reports whether the directory holds a recognizable installation.
func (i *Inspection) PriorInstall() bool {
	return len(i.Markers) > 0
}

// Inspect ensures dir exists and classifies its content.
func Inspect(dir string) (*Inspection, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	in := &Inspection{Path: abs}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", abs, err)
		}
		in.Created = true
		return in, nil
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s exists and is not a directory", abs)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", abs, err)
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		present[name] = true
		if strings.HasPrefix(name, ".") {
			in.Hidden = append(in.Hidden, name)
		} else {
			in.Visible = append(in.Visible, name)
		}
	}
	for _, m := range installMarkers {
		if present[m] {
			in.Markers = append(in.Markers, m)
		}
	}
	sort.Strings(in.Visible)
	sort.Strings(in.Hidden)
	return in, nil
}
