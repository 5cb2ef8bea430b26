package sinks

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/filepack/filepack/internal/archive"
)

// StreamSink writes everything to a single writer, ignoring paths. It backs
// the stdout destination.
type StreamSink struct {
	w io.Writer
}

func NewStreamSink(w io.Writer) archive.Sink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return "stream"
}

func (s *StreamSink) Write(ctx context.Context, path string, _ fs.FileInfo, data io.Reader) error {
	if _, err := io.Copy(s.w, data); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}
	return nil
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}
