// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// OSConfig configures an OS-backed FS, mirroring the teacher scanner's
// include/exclude glob configuration.
type OSConfig struct {
	// Root is the directory the virtual filesystem is rooted at.
	Root string

	// Include is a set of doublestar glob patterns; a file must match at
	// least one to be listed. Empty means "include everything".
	Include []string

	// Exclude is a set of doublestar glob patterns checked before Include;
	// any match drops the file (and, for directory-shaped patterns, the
	// whole subtree).
	Exclude []string
}

// OSFileSystem is a vfs.FS backed by the real filesystem, rooted at a
// directory, honoring include/exclude glob patterns the way the teacher's
// scanner.Scanner does.
type OSFileSystem struct {
	cfg  OSConfig
	root string
}

// NewOSFileSystem resolves cfg.Root to an absolute path and returns an FS
// rooted there.
func NewOSFileSystem(cfg OSConfig) (*OSFileSystem, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("vfs: resolve root: %w", err)
	}
	return &OSFileSystem{cfg: cfg, root: root}, nil
}

func (o *OSFileSystem) abs(relPath string) string {
	return filepath.Join(o.root, filepath.FromSlash(relPath))
}

// List walks prefix (relative to the root) and returns every matching file,
// slash-separated and relative to the root.
func (o *OSFileSystem) List(prefix string) ([]string, error) {
	start := o.abs(prefix)
	info, err := os.Stat(start)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("vfs: stat %s: %w", prefix, err)
	}

	var out []string
	if !info.IsDir() {
		rel, _ := filepath.Rel(o.root, start)
		rel = filepath.ToSlash(rel)
		if o.shouldInclude(rel) {
			out = append(out, rel)
		}
		return out, nil
	}

	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(o.root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && o.shouldExcludeDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if o.shouldInclude(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vfs: walk %s: %w", prefix, err)
	}
	sort.Strings(out)
	return out, nil
}

// Read returns the contents of path, relative to the root.
func (o *OSFileSystem) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(o.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("vfs: read %s: %w", path, err)
	}
	return data, nil
}

func (o *OSFileSystem) shouldInclude(relPath string) bool {
	if matchesAny(relPath, o.cfg.Exclude) {
		return false
	}
	if len(o.cfg.Include) == 0 {
		return true
	}
	return matchesAny(relPath, o.cfg.Include)
}

func (o *OSFileSystem) shouldExcludeDir(relPath string) bool {
	for _, pattern := range o.cfg.Exclude {
		dirPattern := strings.TrimSuffix(pattern, "/**")
		dirPattern = strings.TrimSuffix(dirPattern, "/*")
		if relPath == dirPattern {
			return true
		}
		if matched, _ := doublestar.Match(pattern, relPath+"/dummy.rb"); matched {
			return true
		}
	}
	return false
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
