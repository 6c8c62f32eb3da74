package tabledefinition

import (
	"fmt"
	"strings"
)

// Mapper converts a logical data type to the SQL type used in CREATE TABLE DDL.
type Mapper interface {
	Map(dataType string) (string, error)
}

// DataTypeMapping pairs a logical type with its target SQL type.
type DataTypeMapping struct {
	SourceDataType string
	TargetDataType string
}

var PostgresDataTypeMapping = []DataTypeMapping{
	{DataTypeIdentity, "SERIAL PRIMARY KEY"},
	{DataTypeText, "TEXT"},
	{DataTypeBigint, "BIGINT"},
	{DataTypeFloat, "DOUBLE PRECISION"},
}

var SqliteDataTypeMapping = []DataTypeMapping{
	{DataTypeIdentity, "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{DataTypeText, "TEXT"},
	{DataTypeBigint, "INTEGER"},
	{DataTypeFloat, "REAL"},
}

// NewPostgresDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewPostgresDataTypeMapper() Mapper {
	return newDataTypeMapper(PostgresDataTypeMapping)
}

// NewSqliteDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewSqliteDataTypeMapper() Mapper {
	return newDataTypeMapper(SqliteDataTypeMapping)
}

type dataTypeMap struct {
	mapTypes map[string]string
}

func newDataTypeMapper(mappings []DataTypeMapping) dataTypeMap {
	m := dataTypeMap{mapTypes: make(map[string]string, len(mappings))}
	for _, v := range mappings {
		m.mapTypes[strings.ToLower(v.SourceDataType)] = v.TargetDataType
	}
	return m
}

// Map will convert dataType to lower case and use it to look up the SQL type.
func (o dataTypeMap) Map(dataType string) (string, error) {
	v, ok := o.mapTypes[strings.ToLower(dataType)]
	if !ok {
		return "", fmt.Errorf("unsupported data type %q during conversion", dataType)
	}
	return v, nil
}
