package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Collect expands root into the files the extractor accepts. A regular file is
// returned as is, whatever its extension, so the extractor can reject it; a
// directory is walked recursively in lexical order.
func Collect(root string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, stats, err
	}
	if !st.IsDir() {
		stats.Scanned, stats.Matched = 1, 1
		return []string{root}, stats, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if path == root {
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		files = append(files, path)
		return nil
	})
	return files, stats, err
}
