package tabledefinition

import (
	"testing"
)

func TestDataTypeMappers(t *testing.T) {
	for name, mapper := range map[string]Mapper{
		"postgres": NewPostgresDataTypeMapper(),
		"sqlite":   NewSqliteDataTypeMapper(),
	} {
		for _, dt := range []string{DataTypeIdentity, DataTypeText, DataTypeBigint, DataTypeFloat} {
			if _, err := mapper.Map(dt); err != nil {
				t.Fatalf("%v mapper: unexpected error for %q: %v", name, dt, err)
			}
		}
		if _, err := mapper.Map("BLOB"); err == nil {
			t.Fatalf("%v mapper: expected error for unsupported type", name)
		}
	}
	got, _ := NewPostgresDataTypeMapper().Map("FLOAT")
	if got != "DOUBLE PRECISION" {
		t.Fatalf("expected case insensitive lookup to give DOUBLE PRECISION; got %q", got)
	}
}
