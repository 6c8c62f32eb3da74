package artifact

import (
	"bytes"
	"context"
	"path"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/aws/s3"
	"github.com/relloyd/country-metrics/file"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

// S3Store keeps artifacts as CSV objects. The base name of each location is used as the key
// beneath the client's prefix, so /tmp/countries_temp.csv becomes <prefix>/countries_temp.csv.
type S3Store struct {
	log    logger.Logger
	client s3.BasicClient
	desc   string
}

func NewS3Store(log logger.Logger, client s3.BasicClient, desc string) *S3Store {
	return &S3Store{log: log, client: client, desc: desc}
}

func (s *S3Store) Write(ctx context.Context, location string, t stream.Table) error {
	buf := &bytes.Buffer{}
	if err := file.WriteTable(buf, t); err != nil {
		return err
	}
	s.log.Debug("putting ", buf.Len(), " bytes to S3 key ", key(location))
	// A single PutObject replaces the object whole.
	return errors.Wrapf(s.client.Put(ctx, key(location), buf.Bytes()), "S3 put %q", key(location))
}

func (s *S3Store) Read(ctx context.Context, location string) (stream.Table, error) {
	data, err := s.client.Get(ctx, key(location))
	if err == s3.ErrKeyNotFound {
		return stream.Table{}, errors.Wrapf(ErrArtifactNotFound, "S3 key %q", key(location))
	} else if err != nil {
		return stream.Table{}, errors.Wrapf(err, "S3 get %q", key(location))
	}
	return file.ReadTable(bytes.NewReader(data))
}

func (s *S3Store) Delete(ctx context.Context, location string) error {
	err := s.client.Delete(ctx, key(location))
	if err == s3.ErrKeyNotFound {
		return errors.Wrapf(ErrArtifactNotFound, "S3 key %q", key(location))
	}
	return errors.Wrapf(err, "S3 delete %q", key(location))
}

func (s *S3Store) String() string {
	return s.desc
}

func key(location string) string {
	return path.Base(location)
}
