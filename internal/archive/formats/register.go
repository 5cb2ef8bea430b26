package formats

import "github.com/filepack/filepack/internal/archive"

// Register wires the built-in formats into the registry. The tar format
// produces gzip-compressed archives.
func Register(r *archive.Registry) {
	r.Register("zip", NewZipArchiver)
	r.Register("tar", func() (archive.Archiver, error) {
		return NewTarArchiver("gzip")
	})
}
