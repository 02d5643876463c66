// Package upload runs the activity upload pipeline: validate the file name,
// pause for the pacing delay, then parse and aggregate the file content.
package upload

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is a single uploaded file.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type bytesFile struct {
	name string
	data []byte
}

// FromBytes wraps in-memory content as a File.
func FromBytes(name string, data []byte) File {
	return &bytesFile{name: name, data: data}
}

func (f *bytesFile) Name() string { return f.name }
func (f *bytesFile) Size() int64  { return int64(len(f.data)) }
func (f *bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type pathFile struct {
	path string
	size int64
}

// FromPath wraps a file on disk. The name reported is the base name.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &pathFile{path: path, size: info.Size()}, nil
}

func (f *pathFile) Name() string { return filepath.Base(f.path) }
func (f *pathFile) Size() int64  { return f.size }
func (f *pathFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
