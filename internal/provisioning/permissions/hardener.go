// Package permissions applies the file-mode policy to installed sites.
package permissions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/imamik/wpfleet/internal/provisioning"
)

// Mode policy for an installed tree.
const (
	DirMode    os.FileMode = 0o755
	FileMode   os.FileMode = 0o644
	ConfigMode os.FileMode = 0o600
)

// UploadsDir is kept readable and traversable for the web server.
const UploadsDir = "wp-content/uploads"

// Owner is a resolved uid/gid pair.
type Owner struct {
	Name string
	UID  int
	GID  int
}

// LookupOwner resolves a "user" or "user:group" specification.
func LookupOwner(spec string) (*Owner, error) {
	name, group, _ := strings.Cut(spec, ":")
	u, err := user.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("unknown web user %q: %w", name, err)
	}
	gidStr := u.Gid
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return nil, fmt.Errorf("unknown web group %q: %w", group, err)
		}
		gidStr = g.Gid
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("user %q has non-numeric uid %q", name, u.Uid)
	}
	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		return nil, fmt.Errorf("group of %q has non-numeric gid %q", spec, gidStr)
	}
	return &Owner{Name: spec, UID: uid, GID: gid}, nil
}

// Hardener applies the mode policy to an installed tree.
type Hardener struct {
	// Owner, if set, is applied to every entry.
	Owner *Owner
}

// Harden sets directories to 0755 and regular files to 0644 below dir and
// ensures the uploads directory exists. dir must already be a directory;
// nothing is created outside an existing tree. It keeps going after a
// failure and returns every failure joined into one
// *provisioning.PermissionError.
func (h *Hardener) Harden(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, &provisioning.PermissionError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return 0, &provisioning.PermissionError{Path: dir, Err: errors.New("not a directory")}
	}
	if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(UploadsDir)), DirMode); err != nil {
		return 0, &provisioning.PermissionError{Path: dir, Err: fmt.Errorf("failed to create %s: %w", UploadsDir, err)}
	}

	var failures []error
	changed := 0
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		var mode os.FileMode
		switch {
		case d.IsDir():
			mode = DirMode
		case d.Type().IsRegular():
			mode = FileMode
		default:
			// Symlinks are left alone so the policy never escapes dir.
			return nil
		}
		if err := os.Chmod(path, mode); err != nil {
			failures = append(failures, err)
			return nil
		}
		if h.Owner != nil {
			if err := os.Lchown(path, h.Owner.UID, h.Owner.GID); err != nil {
				failures = append(failures, err)
				return nil
			}
		}
		changed++
		return nil
	})
	if walkErr != nil {
		failures = append(failures, walkErr)
	}
	if len(failures) > 0 {
		return changed, &provisioning.PermissionError{
			Path: dir,
			Err:  fmt.Errorf("%d entries could not be updated: %w", len(failures), errors.Join(failures...)),
		}
	}
	return changed, nil
}

// Tighten restricts the configuration file to its owner.
func Tighten(configPath string) error {
	if err := os.Chmod(configPath, ConfigMode); err != nil {
		return &provisioning.PermissionError{Path: configPath, Err: err}
	}
	return nil
}
