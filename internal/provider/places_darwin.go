//go:build darwin

package provider

import (
	"os"
	"path/filepath"
)

// listMounts lists mounted volumes under /Volumes, with the root volume
// first under its canonical path.
func listMounts() []Place {
	out := []Place{{Label: "Macintosh HD", Path: "/"}}

	entries, err := os.ReadDir("/Volumes")
	if err != nil {
		return out
	}
	for _, e := range entries {
		if !e.IsDir() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join("/Volumes", e.Name())
		// The boot volume appears as a symlink to /; it is already listed.
		if resolved, err := filepath.EvalSymlinks(path); err == nil && resolved == "/" {
			continue
		}
		out = append(out, Place{Label: e.Name(), Path: path})
	}
	return out
}
