package components

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/relloyd/country-metrics/artifact"
	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

type DensityTransformConfig struct {
	Log            logger.Logger
	Name           string
	Store          artifact.Store
	InputLocation  string
	OutputLocation string
}

type TransformResult struct {
	Rows              int `json:"rows"`
	DefaultedCapitals int `json:"defaultedCapitals"`
	NullDensities     int `json:"nullDensities"`
	AbsentNames       int `json:"absentNames"`
	SuspectRows       int `json:"suspectRows"` // area <= 0 or population < 0
}

// NewDensityTransform maps every raw artifact row to a MetricRecord and writes the final artifact.
// Row count and order are preserved. Nothing is written if any input row is malformed.
func NewDensityTransform(ctx context.Context, cfg *DensityTransformConfig) (TransformResult, error) {
	result := TransformResult{}
	cfg.Log.Info(cfg.Name, " is running")
	in, err := cfg.Store.Read(ctx, cfg.InputLocation)
	if err != nil {
		return result, &MalformedArtifactError{Location: cfg.InputLocation, Err: err}
	}
	if err := in.CheckHeader(c.CountryFields); err != nil {
		return result, &MalformedArtifactError{Location: cfg.InputLocation, Err: err}
	}
	out := stream.NewTable(c.MetricFields)
	for idx, row := range in.Rows {
		rec, err := stream.CountryRecordFromRow(row)
		if err != nil {
			return result, &MalformedArtifactError{Location: cfg.InputLocation, Row: idx + 1, Err: err}
		}
		m := DeriveMetric(rec)
		if rec.Capital == nil {
			result.DefaultedCapitals++
		}
		if m.Density == nil {
			result.NullDensities++
		}
		if m.Name == nil {
			result.AbsentNames++
		}
		if m.Area <= 0 || m.Population < 0 {
			result.SuspectRows++
		}
		out.AppendRow(m.Row())
	}
	result.Rows = out.Len()
	if result.AbsentNames > 0 {
		cfg.Log.Warn(cfg.Name, " carried ", result.AbsentNames, " rows without a name")
	}
	if result.SuspectRows > 0 {
		cfg.Log.Warn(cfg.Name, " found ", result.SuspectRows, " rows with area <= 0 or negative population")
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := cfg.Store.Write(ctx, cfg.OutputLocation, out); err != nil {
		return result, pkgerrors.Wrapf(err, "%v unable to write artifact %v", cfg.Name, cfg.OutputLocation)
	}
	cfg.Log.Info(cfg.Name, " wrote ", result.Rows, " rows to ", cfg.OutputLocation)
	return result, nil
}

// DeriveMetric fills an absent capital with the sentinel and computes population / area,
// leaving density nil when area is zero.
func DeriveMetric(rec stream.CountryRecord) stream.MetricRecord {
	m := stream.MetricRecord{
		Name:       rec.Name,
		Capital:    c.NoCapitalSentinel,
		Region:     rec.Region,
		Population: rec.Population,
		Area:       rec.Area,
	}
	if rec.Capital != nil {
		m.Capital = *rec.Capital
	}
	if rec.Area != 0 {
		d := float64(rec.Population) / rec.Area
		m.Density = &d
	}
	return m
}

// IsMalformedArtifact returns true if err is or wraps a MalformedArtifactError.
func IsMalformedArtifact(err error) bool {
	var target *MalformedArtifactError
	return errors.As(err, &target)
}
