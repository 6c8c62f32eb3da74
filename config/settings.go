package config

import (
	"strings"
	"unicode"

	h "github.com/relloyd/country-metrics/helper"
)

// Setting is one configurable value, addressable as a dotted key, a CLI flag and an environment variable.
type Setting struct {
	Key         string
	Description string
}

// Settings lists every key accepted by Pipeline.Apply in the order they are documented.
var Settings = []Setting{
	{"source.endpoint", "URL of the country data API"},
	{"source.timeoutSeconds", "bounded wait in seconds for the source request"},
	{"source.userAgent", "User-Agent header sent to the source"},
	{"store.type", "destination store type: postgres or sqlite"},
	{"store.dsn", "full postgres connection URL, overriding host, port, database, user, password and ssl mode"},
	{"store.host", "postgres host"},
	{"store.port", "postgres port"},
	{"store.database", "postgres database name"},
	{"store.user", "postgres user"},
	{"store.password", "postgres password"},
	{"store.sslMode", "postgres sslmode"},
	{"store.path", "sqlite database file"},
	{"store.table", "destination table name"},
	{"artifacts.backend", "artifact store backend: file, memory or s3"},
	{"artifacts.raw", "location of the extracted artifact"},
	{"artifacts.final", "location of the transformed artifact"},
	{"artifacts.s3.bucket", "S3 bucket for the s3 artifact backend"},
	{"artifacts.s3.prefix", "S3 key prefix for the s3 artifact backend"},
	{"artifacts.s3.region", "S3 bucket region for the s3 artifact backend"},
	{"artifacts.s3Url", "s3://<bucket>/<prefix> for the s3 artifact backend, instead of bucket and prefix"},
	{"logLevel", "log level: trace, debug, info, warn, error"},
}

// FlagName converts the dotted camel case key to kebab case, e.g. store.sslMode becomes store-ssl-mode.
func (s Setting) FlagName() string {
	var b strings.Builder
	for _, r := range s.Key {
		switch {
		case r == '.':
			b.WriteRune('-')
		case unicode.IsUpper(r):
			b.WriteRune('-')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EnvVar returns the environment variable that sets this value, e.g. CM_STORE_SSL_MODE.
func (s Setting) EnvVar() string {
	return h.NameToEnvVar(s.FlagName())
}

// IsKnownKey returns true if key is one of Settings.
func IsKnownKey(key string) bool {
	for _, s := range Settings {
		if s.Key == key {
			return true
		}
	}
	return false
}

// EnvValues collects the values of any Settings present in the environment via lookup.
func EnvValues(lookup func(string) (string, bool)) map[string]interface{} {
	values := make(map[string]interface{})
	for _, s := range Settings {
		if v, ok := lookup(s.EnvVar()); ok && v != "" {
			values[s.Key] = v
		}
	}
	return values
}
