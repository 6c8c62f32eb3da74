package file

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

// CSVFileOutput writes a CSV file that only becomes visible under its final name on Commit.
// Rows go to a temp file in the same directory which is renamed over the target.
type CSVFileOutput struct {
	csvWriter     *csv.Writer
	log           logger.Logger
	fileName      string
	file          *os.File
	headerRecord  []string
	needHeaderRow bool
	rowCount      int
	committed     bool
}

// NewCSVFileOutput creates the parent directory of fileName if required and opens a temp file beside it.
// Callers should defer Cleanup() so the temp file is removed if Commit is never reached.
func NewCSVFileOutput(log logger.Logger, fileName string) (*CSVFileOutput, error) {
	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory %q", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fileName)+".tmp-")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create temp file for %q", fileName)
	}
	f := &CSVFileOutput{
		log:           log,
		fileName:      fileName,
		file:          tmp,
		needHeaderRow: true,
	}
	f.csvWriter = csv.NewWriter(tmp)
	log.Debug("CSVFileOutput target=", fileName, "; temp=", tmp.Name())
	return f, nil
}

// SetHeader stores the header row that is written before the first record.
func (f *CSVFileOutput) SetHeader(record []string) {
	f.headerRecord = record
}

// WriteRow writes record to the temp file.
func (f *CSVFileOutput) WriteRow(record []string) error {
	if err := f.writeHeader(); err != nil {
		return err
	}
	f.log.Trace("Writing record...", record)
	if err := f.csvWriter.Write(record); err != nil {
		return errors.Wrap(err, "unable to write to CSV file")
	}
	f.rowCount++
	return nil
}

func (f *CSVFileOutput) writeHeader() error {
	if !f.needHeaderRow || f.headerRecord == nil {
		return nil
	}
	f.needHeaderRow = false
	if err := f.csvWriter.Write(f.headerRecord); err != nil {
		return errors.Wrap(err, "unable to write header to CSV file")
	}
	return nil
}

// Commit flushes and syncs the temp file then renames it to the target name.
// An empty table still produces a file holding the header row.
func (f *CSVFileOutput) Commit() error {
	if err := f.writeHeader(); err != nil {
		return err
	}
	f.csvWriter.Flush()
	if err := f.csvWriter.Error(); err != nil {
		return errors.Wrap(err, "unable to flush CSV file")
	}
	if err := f.file.Sync(); err != nil {
		return errors.Wrapf(err, "unable to sync %q", f.file.Name())
	}
	if err := f.file.Close(); err != nil {
		return errors.Wrapf(err, "unable to close %q", f.file.Name())
	}
	if err := os.Rename(f.file.Name(), f.fileName); err != nil {
		return errors.Wrapf(err, "unable to rename %q to %q", f.file.Name(), f.fileName)
	}
	f.committed = true
	f.log.Debug("Committed CSV file '", f.fileName, "' with ", f.rowCount, " rows")
	return nil
}

// Cleanup can be deferred by the caller to remove the temp file after a failure.
func (f *CSVFileOutput) Cleanup() {
	if f.committed {
		return
	}
	_ = f.file.Close()
	if err := os.Remove(f.file.Name()); err != nil && !os.IsNotExist(err) {
		f.log.Warn("unable to remove temp file ", f.file.Name(), ": ", err)
	}
}

// WriteTable encodes t as CSV to w, header first.
func WriteTable(w io.Writer, t stream.Table) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(t.Header); err != nil {
		return errors.Wrap(err, "unable to write header")
	}
	if err := csvWriter.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "unable to write rows")
	}
	return nil
}

// WriteTableToFile writes t to fileName so that readers see either the old file or the complete new one.
func WriteTableToFile(log logger.Logger, fileName string, t stream.Table) error {
	out, err := NewCSVFileOutput(log, fileName)
	if err != nil {
		return err
	}
	defer out.Cleanup()
	out.SetHeader(t.Header)
	for _, row := range t.Rows {
		if err := out.WriteRow(row); err != nil {
			return err
		}
	}
	return out.Commit()
}
