package rdbms

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var reIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// SchemaTable is a table name of the form [<schema>.]<table>.
// Only lower case unquoted identifiers are accepted so the name can be embedded in SQL as is.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<table>" mandatory:"yes"`
}

// Validate returns an error if the name is not a plain identifier.
func (st SchemaTable) Validate() error {
	if !reIdentifier.MatchString(st.SchemaTable) {
		return errors.Errorf("invalid table name %q: expected [<schema>.]<table> using lower case letters, digits and underscores", st.SchemaTable)
	}
	return nil
}

func (st SchemaTable) GetTable() string {
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 { // if we have just a table...
		return st.SchemaTable
	}
	return st.SchemaTable[i+1:]
}

func (st SchemaTable) GetSchema() string {
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 { // if we have just a table...
		return ""
	}
	return st.SchemaTable[:i]
}

func (st SchemaTable) String() string {
	return st.SchemaTable
}
