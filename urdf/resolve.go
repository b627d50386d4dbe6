package urdf

import (
	"os"
	"path"
	"strings"

	"github.com/roboviz/urdfkit"
)

const packagePrefix = "package://"

// PackageMap maps ROS package names to base paths. A single entry doubles as
// the default package when a referenced package name has no entry of its
// own.
type PackageMap map[string]string

// ResolvePackagePath turns a mesh reference from a URDF document into a
// loadable path. Non-package references resolve relative to workingPath.
// package:// references resolve against the package map; with only a default
// entry whose path already ends in the package name, the name is not
// duplicated.
func ResolvePackagePath(ref string, packages PackageMap, workingPath string) (string, error) {
	if !strings.HasPrefix(ref, packagePrefix) {
		return path.Join(workingPath, strings.TrimPrefix(path.Clean(ref), "/")), nil
	}

	remaining := strings.TrimPrefix(ref, packagePrefix)
	targetPackage := remaining
	if idx := strings.Index(remaining, "/"); idx >= 0 {
		targetPackage = remaining[:idx]
		remaining = remaining[idx+1:]
	} else {
		remaining = ""
	}

	if base, ok := packages[targetPackage]; ok {
		return path.Join(base, remaining), nil
	}
	if base, ok := defaultPackage(packages); ok {
		// avoid duplicating the package name when the default path already
		// ends with it
		if strings.HasSuffix(strings.TrimRight(base, "/"), targetPackage) {
			return path.Join(base, remaining), nil
		}
		return path.Join(base, targetPackage, remaining), nil
	}
	return "", urdfkit.NewFormatErrorf("package not found", "%s", targetPackage)
}

// defaultPackage returns the fallback base path: an explicit "default" entry
// if present, otherwise the sole entry of a single-entry map.
func defaultPackage(packages PackageMap) (string, bool) {
	if base, ok := packages["default"]; ok {
		return base, true
	}
	if len(packages) == 1 {
		for _, base := range packages {
			return base, true
		}
	}
	return "", false
}

// FileReader is the abstract byte provider the parser loads mesh assets
// through. The core never touches the filesystem directly.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads mesh assets from the local filesystem.
type OSFileReader struct{}

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	//nolint:gosec
	return os.ReadFile(path)
}

// MapFileReader serves assets from memory, primarily for tests.
type MapFileReader map[string][]byte

// ReadFile implements FileReader.
func (m MapFileReader) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, urdfkit.NewFormatErrorf("mesh file not found", "%s", path)
	}
	return data, nil
}
