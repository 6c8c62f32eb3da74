package constants

// Pipeline

const (
	NoCapitalSentinel           = "No Capital"
	SourceFieldProjection       = "name,capital,region,population,area"
	SourceEndpointDefault       = "https://restcountries.com/v3.1/all"
	SourceTimeoutSecondsDefault = 10
	SourceUserAgentDefault      = "country-metrics"
	SourceErrorBodyMaxBytes     = 1024
	ArtifactRawDefault          = "/tmp/countries_temp.csv"
	ArtifactFinalDefault        = "/tmp/countries_final.csv"
	ArtifactBackendFile         = "file"
	ArtifactBackendMemory       = "memory"
	ArtifactBackendS3           = "s3"
	TargetTableDefault          = "country_metrics"
	StatsCaptureFrequencySec    = 5
	TimeFormatYearSeconds       = "20060102T150405" // used for human readable file names
	TimeFormatYearSecondsRegex  = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	EnvVarPrefix                = "CM" // prefixed for environment variables in twelveFactorMode
	ServiceName                 = "country-metrics"
	StepNameCleanup             = "cleanup"
	StepNameExtract             = "extract"
	StepNameTransform           = "transform"
	StepNameLoad                = "load"
	ConnectionTypePostgres      = "postgres"
	ConnectionTypeSqlite        = "sqlite"
	PostgresPortDefault         = 5432
	PostgresSslModeDefault      = "disable"
)

// Artifact columns in the order they are written.

var (
	CountryFields = []string{"name", "capital", "region", "population", "area"}
	MetricFields  = []string{"name", "capital", "region", "population", "area", "density"}
)

// StepNames is the fixed order in which a full run executes.
var StepNames = []string{StepNameCleanup, StepNameExtract, StepNameTransform, StepNameLoad}
