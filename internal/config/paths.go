package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the application paths derived from the executable location
type Paths struct {
	ExecutableDir string
	EphemerisDir  string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location.
// Paths never depend on the current working directory.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return pathsFor(filepath.Dir(exe)), nil
}

// pathsFor lays out the directory structure under exeDir:
//
//	<exe dir>/
//	  ├── ephe/   (VSOP87B.* series files)
//	  └── logs/   (application logs)
func pathsFor(exeDir string) *Paths {
	return &Paths{
		ExecutableDir: exeDir,
		EphemerisDir:  filepath.Join(exeDir, "ephe"),
		LogsDir:       filepath.Join(exeDir, "logs"),
	}
}

// Resolve returns p unchanged when absolute, otherwise joined to the
// executable directory
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.ExecutableDir, path)
}

// DefaultEphemerisPath returns <executable dir>/ephe, or "ephe" when the
// executable cannot be located
func DefaultEphemerisPath() string {
	paths, err := GetPaths()
	if err != nil {
		return "ephe"
	}
	return paths.EphemerisDir
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// DirExists reports whether path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
