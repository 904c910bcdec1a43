package dataset

import "strings"

// ShouldProcess reports whether an archive entry holds loadable resource
// data. Directories, non-JSON files and macOS zip metadata (__MACOSX
// folders, .DS_Store, "._" sidecar files) are skipped.
func ShouldProcess(name string, isDir bool) bool {
	if isDir {
		return false
	}

	if !strings.HasSuffix(name, ".json") {
		return false
	}

	if strings.Contains(name, "__MACOSX") ||
		strings.Contains(name, ".DS_Store") ||
		strings.HasPrefix(name, "._") ||
		strings.Contains(name, "/._") {
		return false
	}

	return true
}
