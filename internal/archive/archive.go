package archive

import (
	"context"
	"io"
	"io/fs"
)

// Archiver collects files into an archive format.
type Archiver interface {
	// AddFile adds a file to the archive with the given entry name and data.
	// info carries the source file's metadata; it may be nil, in which case
	// the entry is written with default metadata (mode 0644, current time).
	AddFile(ctx context.Context, name string, info fs.FileInfo, data io.Reader) error

	// Close finalizes the archive and returns a reader for the complete
	// archive data. Archivers are single-use: a second Close errors.
	Close() (io.Reader, error)

	// Extension returns the file extension for this archive type (e.g., ".tar.gz").
	Extension() string
}

// Sink is a destination that files and finished archives are written to.
type Sink interface {
	Name() string
	Kind() string

	// Write stores data under path. info may be nil for generated content
	// such as a finished archive.
	Write(ctx context.Context, path string, info fs.FileInfo, data io.Reader) error

	Close(ctx context.Context) error
}
