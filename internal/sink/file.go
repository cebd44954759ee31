package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileSink writes reports to files. A write lands in a temporary file next
// to the target and is renamed over it, so readers never see a partial
// report.
type FileSink struct {
	fs   afero.Fs
	perm os.FileMode
}

// NewFileSink returns a FileSink on fs; nil selects the OS filesystem.
func NewFileSink(fs afero.Fs) *FileSink {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSink{fs: fs, perm: 0o644}
}

func (s *FileSink) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &SinkError{Path: path, Err: err}
	}
	if path == "" {
		return &SinkError{Path: path, Err: Permanent(fmt.Errorf("empty file name"))}
	}
	if err := s.write(path, data); err != nil {
		return &SinkError{Path: path, Err: err}
	}
	return nil
}

func (s *FileSink) write(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			s.fs.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Chmod(tmp.Name(), s.perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := s.fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
