// Package artifact persists the intermediate tables handed between pipeline stages.
package artifact

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/aws/s3"
	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

// ErrArtifactNotFound is returned by Read and Delete when nothing exists at the location.
var ErrArtifactNotFound = errors.New("artifact not found")

// Store reads and writes whole tables at named locations.
// Write replaces any existing artifact and never exposes a partial one.
type Store interface {
	Write(ctx context.Context, location string, t stream.Table) error
	Read(ctx context.Context, location string) (stream.Table, error)
	Delete(ctx context.Context, location string) error
	fmt.Stringer
}

// NewStore returns the backend named in cfg.
func NewStore(log logger.Logger, cfg config.Artifacts) (Store, error) {
	switch cfg.Backend {
	case constants.ArtifactBackendFile, "":
		return NewFileStore(log), nil
	case constants.ArtifactBackendMemory:
		return NewMemoryStore(), nil
	case constants.ArtifactBackendS3:
		b, err := cfg.Bucket()
		if err != nil {
			return nil, err
		}
		client, err := s3.NewBasicClient(b.Name, b.Region, b.Prefix)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create S3 client")
		}
		return NewS3Store(log, client, b.String()), nil
	default:
		return nil, fmt.Errorf("unsupported artifact backend %q", cfg.Backend)
	}
}
