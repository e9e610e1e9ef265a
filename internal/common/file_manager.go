package common

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileReadOptions bounds a read. MaxSize 0 means unlimited.
type FileReadOptions struct {
	MaxSize int64
}

type FileWriteOptions struct {
	CreateDirs  bool
	Permissions fs.FileMode
}

func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{MaxSize: 50 << 20}
}

func DefaultFileWriteOptions() FileWriteOptions {
	return FileWriteOptions{CreateDirs: true, Permissions: 0644}
}

// FileManager does the whole-file reads and atomic writes used for inputs, reports,
// archives and config files. Failures come back as the package's sentinel errors.
type FileManager struct {
	logger zerolog.Logger
}

func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{logger: logger.With().Str("component", "FileManager").Logger()}
}

func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads path whole. Missing files map to ErrNotFound and files above
// opts.MaxSize to ErrInputTooLarge, checked before reading and again while reading.
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, WrapErrorf(ErrNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, WrapErrorf(err, "failed to open %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fm.logger.Warn().Err(cerr).Str("path", path).Msg("Failed to close file")
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, WrapErrorf(err, "failed to stat %s", path)
	}
	if info.IsDir() {
		return nil, NewValidationError("path", path, "is a directory, not a file")
	}
	if opts.MaxSize > 0 && info.Size() > opts.MaxSize {
		return nil, WrapErrorf(ErrInputTooLarge, "%s is %d bytes, limit is %d", path, info.Size(), opts.MaxSize)
	}
	return ReadAllLimited(f, opts.MaxSize)
}

// ReadAllLimited reads r to EOF, failing with ErrInputTooLarge past maxSize bytes. A
// maxSize of 0 disables the limit.
func ReadAllLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, WrapError(err, "failed to read content")
	}
	if int64(len(data)) > maxSize {
		return nil, WrapErrorf(ErrInputTooLarge, "content exceeds %d bytes", maxSize)
	}
	return data, nil
}

// EnsureDirectory creates path and its parents. An existing non-directory is a
// ValidationError.
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return NewValidationError("path", path, "exists but is not a directory")
	case err == nil:
		return nil
	}
	if err := os.MkdirAll(path, perm); err != nil {
		return WrapErrorf(err, "failed to create directory %s", path)
	}
	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// WriteFile replaces path atomically: data goes to a temp file beside it, which is then
// renamed over the target. Readers never see a partial file.
func (fm *FileManager) WriteFile(path string, data []byte, opts FileWriteOptions) (err error) {
	dir := filepath.Dir(path)
	if opts.CreateDirs {
		if err := fm.EnsureDirectory(dir, 0755); err != nil {
			return err
		}
	}
	perm := opts.Permissions
	if perm == 0 {
		perm = 0644
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return WrapErrorf(err, "failed to create temp file for %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return WrapErrorf(err, "failed to write %s", path)
	}
	if err = tmp.Chmod(perm); err != nil {
		return WrapErrorf(err, "failed to set permissions on %s", path)
	}
	if err = tmp.Close(); err != nil {
		return WrapErrorf(err, "failed to flush %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return WrapErrorf(err, "failed to move %s into place", path)
	}

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written")
	return nil
}
