package rdbms

import (
	"testing"
)

func TestSchemaTable(t *testing.T) {
	// Test 1 - schema.table
	st := SchemaTable{SchemaTable: "geo.country_metrics"}
	if err := st.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := st.GetSchema(); got != "geo" {
		t.Fatalf("expected schema = %q; got %q", "geo", got)
	}
	if got := st.GetTable(); got != "country_metrics" {
		t.Fatalf("expected table = %q; got %q", "country_metrics", got)
	}

	// Test 2 - table on its own.
	st = SchemaTable{SchemaTable: "country_metrics"}
	if st.GetSchema() != "" || st.GetTable() != "country_metrics" || st.String() != "country_metrics" {
		t.Fatalf("unexpected split of %q", st)
	}

	// Test 3 - names that cannot be embedded in SQL are rejected.
	for _, bad := range []string{"", "Country", `"quoted"`, "a.b.c", "t; drop table x", "1abc"} {
		if err := (SchemaTable{SchemaTable: bad}).Validate(); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
