package bundle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/filepack/filepack/internal/archive"
	"github.com/filepack/filepack/internal/archive/sinks"
)

// Request describes one bundling run.
type Request struct {
	Format string   `validate:"required"`
	Output string   `validate:"required"`
	Files  []string `validate:"required,min=1,dive,required"`
}

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// Bundler writes a list of input files into a single archive.
type Bundler struct {
	logger   *zap.Logger
	fs       afero.Fs
	registry *archive.Registry
}

func New(logger *zap.Logger, fsys afero.Fs, registry *archive.Registry) *Bundler {
	return &Bundler{
		logger:   logger,
		fs:       fsys,
		registry: registry,
	}
}

// Run archives req.Files into dest under req.Output plus the format's
// extension and returns the archive name. Entries are named by the input
// path's base name; directory components are discarded. The first failing
// input aborts the run, leaving whatever dest already holds in place.
func (b *Bundler) Run(ctx context.Context, req Request, dest archive.Sink) (string, error) {
	if err := defaultValidator.Struct(req); err != nil {
		return "", fmt.Errorf("invalid request: %w", err)
	}

	archiver, err := b.registry.Create(req.Format)
	if err != nil {
		return "", err
	}

	archiveName := req.Output + archiver.Extension()
	sink := sinks.NewArchiveSink(dest, archiver, archiveName)

	b.logger.Debug("creating archive",
		zap.String("archive", archiveName),
		zap.String("format", req.Format),
		zap.Int("files", len(req.Files)))

	for _, path := range req.Files {
		if err := b.addFile(ctx, sink, path); err != nil {
			return "", fmt.Errorf("failed to archive %s: %w", path, err)
		}
	}

	if err := sink.Close(ctx); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", archiveName, err)
	}

	b.logger.Info("archive created",
		zap.String("archive", archiveName),
		zap.Int("entries", len(req.Files)))

	return archiveName, nil
}

func (b *Bundler) addFile(ctx context.Context, sink archive.Sink, path string) (err error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	f, err := b.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	name := filepath.Base(path)
	b.logger.Debug("adding file", zap.String("entry", name), zap.Int64("size", info.Size()))

	if err := sink.Write(ctx, name, info, f); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	return nil
}
