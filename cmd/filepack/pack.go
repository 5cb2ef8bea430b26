package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/filepack/filepack/internal/archive"
	"github.com/filepack/filepack/internal/archive/formats"
	"github.com/filepack/filepack/internal/archive/sinks"
	"github.com/filepack/filepack/internal/bundle"
)

// stdoutName selects the stdout destination instead of a file on disk.
const stdoutName = "-"

func packAction(ctx context.Context, command *cli.Command) error {
	logger := getLogger(ctx)

	args := command.Args().Slice()
	if len(args) < 3 {
		fmt.Printf("Usage: %s <zip|tar> <output> <file> [file ...]\n", command.Name)
		return nil
	}

	format := args[0]
	output := args[1]
	files := args[2:]

	registry := archive.NewRegistry()
	formats.Register(registry)

	dest, err := buildSink(output)
	if err != nil {
		return err
	}

	bundler := bundle.New(logger.Named("bundle"), afero.NewOsFs(), registry)

	archiveName, err := bundler.Run(ctx, bundle.Request{
		Format: format,
		Output: output,
		Files:  files,
	}, dest)
	if err != nil {
		var unsupported *archive.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			return cli.Exit(unsupported.Error(), 1)
		}
		return err
	}

	logger.Debug("done", zap.String("archive", archiveName))

	return nil
}

func buildSink(output string) (archive.Sink, error) {
	if output == stdoutName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, cli.Exit("refusing to write archive data to a terminal", 1)
		}
		return sinks.NewStreamSink(os.Stdout), nil
	}
	return sinks.NewFilesystemSink(afero.NewOsFs()), nil
}
