package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Clean removes every entry of dir. Entries the OS refuses to remove for
// permission reasons are left in place and returned in skipped; any other
// failure stops the cleanup.
func Clean(dir string) (skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				skipped = append(skipped, e.Name())
				continue
			}
			return skipped, fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	sort.Strings(skipped)
	return skipped, nil
}

// ProbeWritable verifies that files can be created in dir.
func ProbeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".wpfleet-probe-*")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	name := f.Name()
	_, werr := f.WriteString("probe")
	cerr := f.Close()
	rerr := os.Remove(name)
	if err := errors.Join(werr, cerr, rerr); err != nil {
		return fmt.Errorf("write probe in %s failed: %w", dir, err)
	}
	return nil
}

// removeStale deletes leftovers of interrupted earlier runs.
func removeStale(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, stagingPrefix+"*"))
	if err != nil {
		return nil, err
	}
	probes, err := filepath.Glob(filepath.Join(dir, ".wpfleet-probe-*"))
	if err != nil {
		return nil, err
	}
	matches = append(matches, probes...)
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			return nil, fmt.Errorf("failed to remove stale %s: %w", m, err)
		}
	}
	return matches, nil
}
