package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

const DefaultFilePath = "packages.csv"

// FileSnapshotStore keeps the snapshot in a line-oriented text file.
// The file is opened and closed inside each call; nothing is held open.
type FileSnapshotStore struct {
	Path string
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileSnapshotStore{Path: path}
}

var _ ports.SnapshotStore = (*FileSnapshotStore)(nil)

// Load reads every line of the file in order. A missing file is an empty snapshot.
func (s *FileSnapshotStore) Load(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file snapshot: open %q: %w", s.Path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("file snapshot: read %q: %w", s.Path, err)
	}

	return lines, nil
}

// Replace writes lines to a temp file beside the target, syncs it and
// renames it over the target, so readers see either the old or the new file.
func (s *FileSnapshotStore) Replace(ctx context.Context, lines []string) (retErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file snapshot: create dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("file snapshot: create temp: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return fmt.Errorf("file snapshot: write temp: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("file snapshot: write temp: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("file snapshot: flush temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("file snapshot: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file snapshot: close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), s.fileMode()); err != nil {
		return fmt.Errorf("file snapshot: chmod temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("file snapshot: rename into %q: %w", s.Path, err)
	}

	return nil
}

// fileMode keeps the permissions of an existing snapshot; new files get 0644.
func (s *FileSnapshotStore) fileMode() fs.FileMode {
	if info, err := os.Stat(s.Path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
