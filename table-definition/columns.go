package tabledefinition

import (
	"fmt"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/helper"
)

// Logical data types, converted to SQL by a Mapper.
const (
	DataTypeIdentity = "identity"
	DataTypeText     = "text"
	DataTypeBigint   = "bigint"
	DataTypeFloat    = "float"
)

// Column describes one destination column.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// TableDefinition is the fixed destination schema.
// Columns holds name -> Column in the order used for both DDL and inserts.
type TableDefinition struct {
	IdentityColumn string
	Columns        *om.OrderedMap
}

// NewCountryMetricsDefinition returns the schema of the country metrics table.
// Data columns follow constants.MetricFields so artifact rows bind in order.
func NewCountryMetricsDefinition() TableDefinition {
	cols := om.NewOrderedMap()
	for _, c := range []Column{
		{Name: "name", DataType: DataTypeText, Nullable: true},
		{Name: "capital", DataType: DataTypeText, Nullable: false},
		{Name: "region", DataType: DataTypeText, Nullable: true},
		{Name: "population", DataType: DataTypeBigint, Nullable: false},
		{Name: "area", DataType: DataTypeFloat, Nullable: false},
		{Name: "density", DataType: DataTypeFloat, Nullable: true},
	} {
		cols.Set(c.Name, c)
	}
	return TableDefinition{IdentityColumn: "id", Columns: cols}
}

// ColumnNames returns the data column names, excluding the identity column.
func (t TableDefinition) ColumnNames() []string {
	return helper.OrderedMapKeysToStringSlice(t.Columns)
}

// ColumnDDL returns "<name> <type> [NOT NULL]" entries with the identity column first.
func (t TableDefinition) ColumnDDL(m Mapper) ([]string, error) {
	retval := make([]string, 0, t.Columns.Len()+1)
	idType, err := m.Map(DataTypeIdentity)
	if err != nil {
		return nil, err
	}
	retval = append(retval, fmt.Sprintf("%v %v", t.IdentityColumn, idType))
	iter := t.Columns.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		c := kv.Value.(Column)
		sqlType, err := m.Map(c.DataType)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		ddl := fmt.Sprintf("%v %v", c.Name, sqlType)
		if !c.Nullable {
			ddl += " NOT NULL"
		}
		retval = append(retval, ddl)
	}
	return retval, nil
}

// MatchesArtifact returns an error unless the data columns equal the final artifact header.
func (t TableDefinition) MatchesArtifact() error {
	if !helper.EqualStringSlices(t.ColumnNames(), constants.MetricFields) {
		return fmt.Errorf("table columns %v do not match artifact fields %v", t.ColumnNames(), constants.MetricFields)
	}
	return nil
}
