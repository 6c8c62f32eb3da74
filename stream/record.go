package stream

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	h "github.com/relloyd/country-metrics/helper"
)

// CountryRecord is one normalised source entry as held in the raw artifact.
type CountryRecord struct {
	Name       *string // nil when the source entry had no common name.
	Capital    *string // first listed capital, nil if none.
	Region     *string
	Population int64
	Area       float64
}

// MetricRecord is a CountryRecord with the capital defaulted and density derived.
type MetricRecord struct {
	Name       *string
	Capital    string
	Region     *string
	Population int64
	Area       float64
	Density    *float64 // nil when Area is zero.
}

// Row renders the record in raw artifact column order.
func (c CountryRecord) Row() []string {
	return []string{
		h.StringPtrOrEmpty(c.Name),
		h.StringPtrOrEmpty(c.Capital),
		h.StringPtrOrEmpty(c.Region),
		strconv.FormatInt(c.Population, 10),
		h.FormatFloat(c.Area),
	}
}

// Row renders the record in final artifact column order.
func (m MetricRecord) Row() []string {
	density := ""
	if m.Density != nil {
		density = h.FormatFloat(*m.Density)
	}
	return []string{
		h.StringPtrOrEmpty(m.Name),
		m.Capital,
		h.StringPtrOrEmpty(m.Region),
		strconv.FormatInt(m.Population, 10),
		h.FormatFloat(m.Area),
		density,
	}
}

// Values returns the record as SQL bind values in final artifact column order.
// Absent text and null density are returned as untyped nil.
func (m MetricRecord) Values() []interface{} {
	var name, region, density interface{}
	if m.Name != nil {
		name = *m.Name
	}
	if m.Region != nil {
		region = *m.Region
	}
	if m.Density != nil {
		density = *m.Density
	}
	return []interface{}{name, m.Capital, region, m.Population, m.Area, density}
}

// CountryRecordFromRow parses a raw artifact row.
func CountryRecordFromRow(row []string) (c CountryRecord, err error) {
	if len(row) != 5 {
		return c, errors.Errorf("expected 5 fields but found %v", len(row))
	}
	c.Name = h.EmptyToNilString(row[0])
	c.Capital = h.EmptyToNilString(row[1])
	c.Region = h.EmptyToNilString(row[2])
	if c.Population, err = parsePopulation(row[3]); err != nil {
		return c, err
	}
	if c.Area, err = parseArea(row[4]); err != nil {
		return c, err
	}
	return c, nil
}

// MetricRecordFromRow parses a final artifact row.
func MetricRecordFromRow(row []string) (m MetricRecord, err error) {
	if len(row) != 6 {
		return m, errors.Errorf("expected 6 fields but found %v", len(row))
	}
	m.Name = h.EmptyToNilString(row[0])
	m.Capital = row[1]
	m.Region = h.EmptyToNilString(row[2])
	if m.Population, err = parsePopulation(row[3]); err != nil {
		return m, err
	}
	if m.Area, err = parseArea(row[4]); err != nil {
		return m, err
	}
	if strings.TrimSpace(row[5]) != "" {
		d, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			return m, errors.Wrapf(err, "bad density %q", row[5])
		}
		m.Density = &d
	}
	return m, nil
}

func parsePopulation(s string) (int64, error) {
	p, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad population %q", s)
	}
	return p, nil
}

func parseArea(s string) (float64, error) {
	a, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad area %q", s)
	}
	return a, nil
}
