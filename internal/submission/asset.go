package submission

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// AssetClass selects the storage resource type and the dropzone constraints.
type AssetClass string

const (
	AssetImage AssetClass = "image"
	AssetVideo AssetClass = "video"
)

func (c AssetClass) Valid() bool {
	return c == AssetImage || c == AssetVideo
}

// AssetFile is a handle to a local binary blob picked by the user.
type AssetFile interface {
	Name() string
	Size() int64
	// ContentType is the declared MIME type, empty when unknown.
	ContentType() string
	Open() (io.ReadCloser, error)
}

// LocalFile is an AssetFile on the local filesystem.
type LocalFile struct {
	path string
	size int64
}

// NewLocalFile stats path and returns a handle to it.
func NewLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &LocalFile{path: path, size: info.Size()}, nil
}

func (f *LocalFile) Name() string        { return filepath.Base(f.path) }
func (f *LocalFile) Path() string        { return f.path }
func (f *LocalFile) Size() int64         { return f.size }
func (f *LocalFile) ContentType() string { return "" }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// MultipartFile adapts an uploaded multipart part.
type MultipartFile struct {
	header *multipart.FileHeader
}

func NewMultipartFile(header *multipart.FileHeader) *MultipartFile {
	return &MultipartFile{header: header}
}

func (f *MultipartFile) Name() string        { return f.header.Filename }
func (f *MultipartFile) Size() int64         { return f.header.Size }
func (f *MultipartFile) ContentType() string { return f.header.Header.Get("Content-Type") }

func (f *MultipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// MemoryFile keeps the whole blob in memory.
type MemoryFile struct {
	name        string
	contentType string
	data        []byte
}

func NewMemoryFile(name, contentType string, data []byte) *MemoryFile {
	return &MemoryFile{name: name, contentType: contentType, data: data}
}

func (f *MemoryFile) Name() string        { return f.name }
func (f *MemoryFile) Size() int64         { return int64(len(f.data)) }
func (f *MemoryFile) ContentType() string { return f.contentType }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
