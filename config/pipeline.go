package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/aws/s3"
	"github.com/relloyd/country-metrics/constants"
	h "github.com/relloyd/country-metrics/helper"
	"github.com/xo/dburl"
)

const redactedPassword = "xxxxx"

// Pipeline is the injected configuration record shared by every stage.
type Pipeline struct {
	Source    Source    `yaml:"source" json:"source" mapstructure:"source"`
	Store     Store     `yaml:"store" json:"store" mapstructure:"store"`
	Artifacts Artifacts `yaml:"artifacts" json:"artifacts" mapstructure:"artifacts"`
	LogLevel  string    `yaml:"logLevel" json:"logLevel" mapstructure:"logLevel" errorTxt:"log level" mandatory:"yes"`
}

// Source describes the country data API.
type Source struct {
	Endpoint       string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint" errorTxt:"source endpoint" mandatory:"yes"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" json:"timeoutSeconds" mapstructure:"timeoutSeconds" errorTxt:"source timeout seconds" mandatory:"yes"`
	UserAgent      string `yaml:"userAgent" json:"userAgent" mapstructure:"userAgent"`
}

// Store holds the destination connection details.
// Postgres uses Dsn when set, else the individual fields. SQLite uses Path.
type Store struct {
	Type     string `yaml:"type" json:"type" mapstructure:"type" errorTxt:"store type" mandatory:"yes"`
	Dsn      string `yaml:"dsn,omitempty" json:"dsn,omitempty" mapstructure:"dsn"`
	Host     string `yaml:"host,omitempty" json:"host,omitempty" mapstructure:"host"`
	Port     int    `yaml:"port,omitempty" json:"port,omitempty" mapstructure:"port"`
	Database string `yaml:"database,omitempty" json:"database,omitempty" mapstructure:"database"`
	User     string `yaml:"user,omitempty" json:"user,omitempty" mapstructure:"user"`
	Password string `yaml:"password,omitempty" json:"password,omitempty" mapstructure:"password"`
	SslMode  string `yaml:"sslMode,omitempty" json:"sslMode,omitempty" mapstructure:"sslMode"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty" mapstructure:"path"`
	Table    string `yaml:"table" json:"table" mapstructure:"table" errorTxt:"store table" mandatory:"yes"`
}

// Artifacts says where intermediate tables live.
type Artifacts struct {
	Backend string         `yaml:"backend" json:"backend" mapstructure:"backend" errorTxt:"artifact backend" mandatory:"yes"`
	Raw     string         `yaml:"raw" json:"raw" mapstructure:"raw" errorTxt:"raw artifact location" mandatory:"yes"`
	Final   string         `yaml:"final" json:"final" mapstructure:"final" errorTxt:"final artifact location" mandatory:"yes"`
	S3      s3.AwsS3Bucket `yaml:"s3" json:"s3" mapstructure:"s3" validate:"skip"`
	S3Url   string         `yaml:"s3Url,omitempty" json:"s3Url,omitempty" mapstructure:"s3Url"` // s3://<bucket>/<prefix>, overrides S3 bucket and prefix
}

// Bucket returns the S3 bucket for the s3 backend, parsing S3Url when it is set.
func (a Artifacts) Bucket() (s3.AwsS3Bucket, error) {
	if a.S3Url == "" {
		return a.S3, h.ValidateStructIsPopulated(a.S3)
	}
	b, err := s3.ParseDSN(a.S3Url, a.S3.Region)
	if err != nil {
		return b, errors.Wrap(err, "artifacts s3Url")
	}
	return b, nil
}

// NewPipeline returns a Pipeline populated with defaults.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Source: Source{
			Endpoint:       constants.SourceEndpointDefault,
			TimeoutSeconds: constants.SourceTimeoutSecondsDefault,
			UserAgent:      constants.SourceUserAgentDefault,
		},
		Store: Store{
			Type:    constants.ConnectionTypePostgres,
			Host:    "localhost",
			Port:    constants.PostgresPortDefault,
			SslMode: constants.PostgresSslModeDefault,
			Table:   constants.TargetTableDefault,
		},
		Artifacts: Artifacts{
			Backend: constants.ArtifactBackendFile,
			Raw:     constants.ArtifactRawDefault,
			Final:   constants.ArtifactFinalDefault,
		},
		LogLevel: "info",
	}
}

// Apply overlays values onto p. Keys are dotted paths such as "store.host".
// Strings are converted to the field type so environment and flag values can be applied directly.
func (p *Pipeline) Apply(values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	nested := make(map[string]interface{})
	for k, v := range values {
		setPath(nested, k, v)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(nested); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Validate checks mandatory fields and the settings that depend on the chosen store and backend.
func (p *Pipeline) Validate() error {
	if err := h.ValidateStructIsPopulated(p); err != nil {
		return err
	}
	if p.Source.TimeoutSeconds < 0 {
		return fmt.Errorf("source timeout seconds must not be negative")
	}
	if err := p.Store.Validate(); err != nil {
		return err
	}
	switch p.Artifacts.Backend {
	case constants.ArtifactBackendFile, constants.ArtifactBackendMemory:
	case constants.ArtifactBackendS3:
		if _, err := p.Artifacts.Bucket(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported artifact backend %q", p.Artifacts.Backend)
	}
	if p.Artifacts.Raw == p.Artifacts.Final {
		return fmt.Errorf("raw and final artifact locations must differ")
	}
	return nil
}

// Redacted returns a copy of p that is safe to print.
func (p Pipeline) Redacted() Pipeline {
	if p.Store.Password != "" {
		p.Store.Password = redactedPassword
	}
	if p.Store.Dsn != "" {
		if u, err := dburl.Parse(p.Store.Dsn); err == nil {
			p.Store.Dsn = u.Redacted()
		} else {
			p.Store.Dsn = redactedPassword
		}
	}
	return p
}

func (s Store) Validate() error {
	switch s.Type {
	case constants.ConnectionTypePostgres:
		if s.Dsn != "" {
			u, err := dburl.Parse(s.Dsn)
			if err != nil {
				return errors.Wrap(err, "store DSN could not be parsed")
			}
			if u.Driver != constants.ConnectionTypePostgres {
				return fmt.Errorf("store DSN must use a postgres scheme, got %q", u.OriginalScheme)
			}
			return nil
		}
		missing := make([]string, 0)
		if s.Host == "" {
			missing = append(missing, "store host")
		}
		if s.Database == "" {
			missing = append(missing, "store database")
		}
		if s.User == "" {
			missing = append(missing, "store user")
		}
		if len(missing) > 0 {
			return fmt.Errorf("please supply values for %v", strings.Join(missing, ", "))
		}
	case constants.ConnectionTypeSqlite:
		if s.Path == "" {
			return fmt.Errorf("please supply values for store path")
		}
	default:
		return fmt.Errorf("unsupported store type %q", s.Type)
	}
	return nil
}

// URL returns the Postgres connection URL, built from the individual fields unless Dsn is set.
func (s Store) URL() string {
	if s.Dsn != "" {
		return s.Dsn
	}
	u := url.URL{
		Scheme: constants.ConnectionTypePostgres,
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:   "/" + s.Database,
	}
	if s.Password != "" {
		u.User = url.UserPassword(s.User, s.Password)
	} else {
		u.User = url.User(s.User)
	}
	if s.SslMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{s.SslMode}}.Encode()
	}
	return u.String()
}

// String describes the store without revealing credentials.
func (s Store) String() string {
	switch s.Type {
	case constants.ConnectionTypeSqlite:
		return fmt.Sprintf("sqlite:%v (table %v)", s.Path, s.Table)
	default:
		u, err := dburl.Parse(s.URL())
		if err != nil {
			return fmt.Sprintf("%v (unparsable DSN)", s.Type)
		}
		return fmt.Sprintf("%v (table %v)", u.Redacted(), s.Table)
	}
}
