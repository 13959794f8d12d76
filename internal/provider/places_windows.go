//go:build windows

package provider

import (
	"syscall"
	"unsafe"
)

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	getLogicalDrives = kernel32.NewProc("GetLogicalDrives")
	getDriveTypeW    = kernel32.NewProc("GetDriveTypeW")
)

const (
	driveUnknown   = 0
	driveNoRootDir = 1
	driveRemovable = 2
	driveRemote    = 4
	driveCDROM     = 5
)

// listMounts enumerates drive letters via GetLogicalDrives. Volume names
// are not queried: GetVolumeInformationW can block for seconds on
// disconnected network drives, and the letter is enough for navigation.
func listMounts() []Place {
	mask, _, _ := getLogicalDrives.Call()
	if mask == 0 {
		return nil
	}

	var out []Place
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := string(rune('A' + i))
		path := letter + `:\`

		ptr, err := syscall.UTF16PtrFromString(path)
		if err != nil {
			continue
		}
		driveType, _, _ := getDriveTypeW.Call(uintptr(unsafe.Pointer(ptr)))
		if driveType == driveUnknown || driveType == driveNoRootDir {
			continue
		}

		label := letter + ":"
		switch driveType {
		case driveRemovable:
			label = "Removable (" + letter + ":)"
		case driveCDROM:
			label = "CD/DVD (" + letter + ":)"
		case driveRemote:
			label = "Network (" + letter + ":)"
		}
		out = append(out, Place{Label: label, Path: path})
	}
	return out
}
