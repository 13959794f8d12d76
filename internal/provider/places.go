package provider

import (
	"os"
	"path/filepath"
)

// Place is a navigation shortcut offered on the synthetic home view: the
// user's standard directories plus mounted volumes.
type Place struct {
	Label string
	Path  string
}

// Places returns home-view shortcuts: the home directory, the standard user
// directories that exist, then mounted volumes in platform order.
func Places() []Place {
	var out []Place
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, Place{Label: "Home", Path: home})
		for _, name := range []string{"Desktop", "Documents", "Downloads", "Music", "Pictures", "Videos"} {
			path := filepath.Join(home, name)
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				out = append(out, Place{Label: name, Path: path})
			}
		}
	}
	return append(out, listMounts()...)
}
