package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"
	"github.com/pkg/errors"
)

// Archive packs the storage directory into a single file, the format is taken from the extension (e.g. .tar.gz)
func (s *Storage) Archive(dest string) error {
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	if err := archiver.Archive([]string{s.dir}, dest); err != nil {
		return errors.Wrapf(err, "could not archive storage %v", s.dir)
	}
	return nil
}

// Extract unpacks an archived storage into destDir and loads it
func Extract(src, destDir string) (*Storage, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	if err := archiver.Unarchive(src, destDir); err != nil {
		return nil, errors.Wrapf(err, "could not extract %v", src)
	}

	// the archive holds a single top level directory
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			return Load(filepath.Join(destDir, entry.Name()))
		}
	}
	return nil, errors.Errorf("no storage found in %v", src)
}
