package pipeline

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// PDFMediaType is the only media type the pipeline extracts titles from.
const PDFMediaType = "application/pdf"

// File is an input to the pipeline.
type File interface {
	Name() string
	// MediaType is the declared media type, without parameters.
	MediaType() string
	ReadAll(ctx context.Context) ([]byte, error)
}

// ReadError reports that a file's bytes could not be read.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return "read " + e.Name + " failed: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Cause() error { return e.Err }

// MediaTypeByName guesses a media type from a file extension.
func MediaTypeByName(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mt
}

// LocalFile is a file on disk.
type LocalFile struct {
	Path string
}

func (f LocalFile) Name() string { return filepath.Base(f.Path) }

func (f LocalFile) MediaType() string { return MediaTypeByName(f.Path) }

func (f LocalFile) ReadAll(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &ReadError{Name: f.Name(), Err: err}
	}
	return data, nil
}

// MemFile is a file already held in memory.
type MemFile struct {
	FileName string
	Type     string
	Data     []byte
}

func (f MemFile) Name() string { return f.FileName }

func (f MemFile) MediaType() string { return f.Type }

func (f MemFile) ReadAll(ctx context.Context) ([]byte, error) {
	return f.Data, nil
}

// ReaderFile defers reading to a callback, e.g. a download.
type ReaderFile struct {
	FileName string
	Type     string
	Read     func(ctx context.Context) ([]byte, error)
}

func (f ReaderFile) Name() string { return f.FileName }

func (f ReaderFile) MediaType() string { return f.Type }

func (f ReaderFile) ReadAll(ctx context.Context) ([]byte, error) {
	data, err := f.Read(ctx)
	if err != nil {
		return nil, &ReadError{Name: f.FileName, Err: errors.WithStack(err)}
	}
	return data, nil
}
