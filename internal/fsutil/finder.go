// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// skipDirs are never descended into, matching what the go command ignores.
var skipDirs = map[string]bool{
	"vendor":   true,
	"testdata": true,
}

// FindFilesByExtension recursively searches the given root path for all files
// ending with extension, leaving out files ending with any of the exclude
// suffixes. Hidden directories, underscore directories, vendor and testdata
// are skipped. A root that is itself a file is returned when it matches.
func FindFilesByExtension(rootPath string, extension string, exclude ...string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && ignoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if matches(d.Name(), extension, exclude) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

func ignoredDir(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func matches(name, extension string, exclude []string) bool {
	if !strings.HasSuffix(name, extension) {
		return false
	}
	for _, suffix := range exclude {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}
