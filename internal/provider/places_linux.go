//go:build linux

package provider

import (
	"bufio"
	"os"
	"strings"
)

// virtualFS holds filesystem types that never hold user files.
var virtualFS = map[string]bool{
	"tmpfs":    true,
	"devtmpfs": true,
	"cgroup":   true,
	"cgroup2":  true,
	"overlay":  true,
	"squashfs": true,
}

// listMounts reads /proc/mounts and keeps real, user-visible mount points.
func listMounts() []Place {
	out := []Place{{Label: "Filesystem", Path: "/"}}

	file, err := os.Open("/proc/mounts")
	if err != nil {
		return out
	}
	defer file.Close()

	seen := map[string]bool{"/": true}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mount, fsType := fields[1], fields[2]
		if seen[mount] || virtualFS[fsType] {
			continue
		}
		if strings.HasPrefix(mount, "/sys") || strings.HasPrefix(mount, "/proc") ||
			strings.HasPrefix(mount, "/dev") || strings.HasPrefix(mount, "/run") ||
			strings.HasPrefix(mount, "/snap") || strings.HasPrefix(mount, "/boot") {
			continue
		}
		// Removable media and secondary disks mount under these roots.
		if !strings.HasPrefix(mount, "/media") && !strings.HasPrefix(mount, "/mnt") &&
			!strings.HasPrefix(mount, "/Volumes") {
			continue
		}
		seen[mount] = true
		label := mount[strings.LastIndex(mount, "/")+1:]
		if label == "" {
			label = mount
		}
		out = append(out, Place{Label: label, Path: mount})
	}
	return out
}
