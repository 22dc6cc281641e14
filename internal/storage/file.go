package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"tasktrack/internal/debug"
	"tasktrack/internal/task"
)

// DefaultFileName is the data file used when the config names none.
const DefaultFileName = "tasks.json"

// SaveFile encodes tasks and replaces path with the result. The file is
// written next to path first and renamed into place.
func SaveFile(path string, tasks []task.Task) error {
	start := time.Now()
	data, err := Encode(tasks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write tasks file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}

	debug.WithFields(logrus.Fields{"path": path, "count": len(tasks)}).Debug("saved tasks")
	debug.LogTiming("save", time.Since(start))
	return nil
}

// LoadFile reads and decodes path. A missing or unreadable file returns an
// error wrapping ErrNoData; content that is not a JSON array wraps ErrParse.
func LoadFile(path string) (*task.Store, LoadReport, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		debug.Log("load %s: %v", path, err)
		return nil, LoadReport{}, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	store, report, err := Decode(data)
	if err != nil {
		debug.Log("load %s: %v", path, err)
		return nil, report, err
	}

	debug.WithFields(logrus.Fields{
		"path":    path,
		"loaded":  report.Loaded,
		"skipped": report.Skipped,
	}).Debug("loaded tasks")
	for _, w := range report.Warnings {
		debug.Log("load warning: %s", w)
	}
	debug.LogTiming("load", time.Since(start))
	return store, report, nil
}

// File is a data file at a fixed path.
type File struct {
	Path string
}

func (f File) Save(tasks []task.Task) error {
	return SaveFile(f.Path, tasks)
}

func (f File) Load() (*task.Store, LoadReport, error) {
	return LoadFile(f.Path)
}
