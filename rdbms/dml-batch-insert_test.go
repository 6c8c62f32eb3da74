package rdbms

import (
	"testing"
)

func TestSqlInsertTxtBatch(t *testing.T) {
	b := NewSqlInsertTxtBatch(SchemaTable{"t"}, []string{"a", "b"}, 2)
	full, err := b.AddValuesToBatch([]interface{}{1, "x"})
	if err != nil || full {
		t.Fatalf("expected room in batch; full=%v err=%v", full, err)
	}
	if got := b.GetStatement(); got != "insert into t (a,b) values (?,?)" {
		t.Fatalf("unexpected statement %q", got)
	}
	full, _ = b.AddValuesToBatch([]interface{}{2, nil})
	if !full {
		t.Fatal("expected batch to be full")
	}
	if got := b.GetStatement(); got != "insert into t (a,b) values (?,?),(?,?)" {
		t.Fatalf("unexpected statement %q", got)
	}
	if len(b.GetValues()) != 4 {
		t.Fatalf("expected 4 values; got %v", len(b.GetValues()))
	}
	if _, err = b.AddValuesToBatch([]interface{}{3, "z"}); err == nil {
		t.Fatal("expected error adding to a full batch")
	}
	b.InitBatch()
	if b.RowsInBatch() != 0 || len(b.GetValues()) != 0 {
		t.Fatal("expected empty batch after InitBatch")
	}
	if _, err = b.AddValuesToBatch([]interface{}{1}); err == nil {
		t.Fatal("expected error for wrong value count")
	}
}
