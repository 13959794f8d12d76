package provider

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlaces(t *testing.T) {
	places := Places()
	if len(places) == 0 {
		t.Fatal("no places returned")
	}

	for _, p := range places {
		if p.Label == "" {
			t.Errorf("place %q has no label", p.Path)
		}
		if !filepath.IsAbs(p.Path) {
			t.Errorf("place %q (%s) is not absolute", p.Path, p.Label)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if places[0].Label != "Home" || places[0].Path != home {
			t.Errorf("first place = %+v, want the home directory", places[0])
		}
	}
}
