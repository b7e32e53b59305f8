package source

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads a snapshot from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource returns a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads the whole file.
func (f *FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

// Path returns the file path.
func (f *FileSource) Path() string { return f.path }

func (f *FileSource) Name() string { return "file:" + f.path }
