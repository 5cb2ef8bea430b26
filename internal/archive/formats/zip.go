package formats

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/filepack/filepack/internal/archive"
	"github.com/klauspost/compress/flate"
)

// ZipArchiver creates ZIP archives with deflate-compressed entries.
type ZipArchiver struct {
	buf       *bytes.Buffer
	zipWriter *zip.Writer
	closed    bool
}

// NewZipArchiver creates a new ZIP archiver.
func NewZipArchiver() (archive.Archiver, error) {
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)
	zipWriter.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	return &ZipArchiver{
		buf:       buf,
		zipWriter: zipWriter,
	}, nil
}

// AddFile adds a deflate-compressed entry to the ZIP archive. When info is
// non-nil the entry carries the source file's permission bits and
// modification time.
func (a *ZipArchiver) AddFile(ctx context.Context, name string, info fs.FileInfo, data io.Reader) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	header, err := zipHeader(name, info)
	if err != nil {
		return err
	}

	w, err := a.zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	if _, err := io.Copy(w, data); err != nil {
		return fmt.Errorf("failed to write zip content: %w", err)
	}

	return nil
}

func zipHeader(name string, info fs.FileInfo) (*zip.FileHeader, error) {
	if info == nil {
		return &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		}, nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return nil, fmt.Errorf("failed to build zip header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate
	return header, nil
}

// Close finalizes the ZIP archive and returns a reader for the complete archive data.
func (a *ZipArchiver) Close() (io.Reader, error) {
	if a.closed {
		return nil, fmt.Errorf("archiver already closed")
	}
	a.closed = true

	if err := a.zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}

	return bytes.NewReader(a.buf.Bytes()), nil
}

// Extension returns the file extension for this archive type.
func (a *ZipArchiver) Extension() string {
	return ".zip"
}
