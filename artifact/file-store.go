package artifact

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/file"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

// FileStore keeps artifacts as CSV files; locations are file paths.
type FileStore struct {
	log logger.Logger
}

func NewFileStore(log logger.Logger) *FileStore {
	return &FileStore{log: log}
}

func (s *FileStore) Write(ctx context.Context, location string, t stream.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return file.WriteTableToFile(s.log, location, t)
}

func (s *FileStore) Read(ctx context.Context, location string) (stream.Table, error) {
	if err := ctx.Err(); err != nil {
		return stream.Table{}, err
	}
	t, err := file.ReadTableFromFile(location)
	if os.IsNotExist(err) {
		return t, errors.Wrapf(ErrArtifactNotFound, "file %q", location)
	}
	return t, err
}

func (s *FileStore) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(location)
	if os.IsNotExist(err) {
		return errors.Wrapf(ErrArtifactNotFound, "file %q", location)
	}
	return err
}

func (s *FileStore) String() string {
	return "file"
}
