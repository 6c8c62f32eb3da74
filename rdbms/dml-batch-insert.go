package rdbms

import (
	"strings"

	"github.com/pkg/errors"
)

// SqlInsertTxtBatch generates multi-row INSERT statements with ? bind variables
// for batches of up to batchSize rows.
type SqlInsertTxtBatch struct {
	sqlStmtTemplate string
	colList         []string
	sqlValues       []interface{} // values for all rows in the batch
	batchSize       int
	rowsInBatch     int
	stmtCache       map[int]string // rows in batch -> generated statement
}

func NewSqlInsertTxtBatch(st SchemaTable, columns []string, batchSize int) *SqlInsertTxtBatch {
	if batchSize < 1 {
		batchSize = 1
	}
	o := &SqlInsertTxtBatch{
		colList:   columns,
		batchSize: batchSize,
		stmtCache: make(map[int]string),
	}
	o.sqlStmtTemplate = `insert into <TABLE> (<TGT-COLS>) values <VALUES>`
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<TABLE>", st.String(), 1)
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<TGT-COLS>", strings.Join(columns, ","), 1)
	o.InitBatch()
	return o
}

// InitBatch empties the batch ready for the next set of rows.
func (o *SqlInsertTxtBatch) InitBatch() {
	o.rowsInBatch = 0
	o.sqlValues = make([]interface{}, 0, o.batchSize*len(o.colList))
}

// AddValuesToBatch appends one row; batchIsFull says the caller should exec the statement now.
func (o *SqlInsertTxtBatch) AddValuesToBatch(values []interface{}) (batchIsFull bool, err error) {
	if o.rowsInBatch >= o.batchSize {
		return true, errors.New("no more rows allowed in INSERT batch")
	}
	if len(values) != len(o.colList) {
		return false, errors.Errorf("the number of values supplied (%v) does not match the number of table columns (%v)", len(values), len(o.colList))
	}
	o.sqlValues = append(o.sqlValues, values...)
	o.rowsInBatch++
	return o.rowsInBatch >= o.batchSize, nil
}

func (o *SqlInsertTxtBatch) RowsInBatch() int {
	return o.rowsInBatch
}

func (o *SqlInsertTxtBatch) GetValues() []interface{} {
	return o.sqlValues
}

// GetStatement returns the INSERT for the rows currently in the batch.
func (o *SqlInsertTxtBatch) GetStatement() string {
	if s, ok := o.stmtCache[o.rowsInBatch]; ok {
		return s
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(o.colList)), ",") + ")"
	rows := make([]string, o.rowsInBatch)
	for idx := range rows {
		rows[idx] = row
	}
	s := strings.Replace(o.sqlStmtTemplate, "<VALUES>", strings.Join(rows, ","), 1)
	o.stmtCache[o.rowsInBatch] = s
	return s
}
