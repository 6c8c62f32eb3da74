package file

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/stream"
)

var utf8Bom = []byte{0xEF, 0xBB, 0xBF}

// ErrNoHeader is returned when CSV input has no header row.
var ErrNoHeader = errors.New("missing header row")

// ReadTable decodes CSV from r. The first record is the header.
// A leading UTF-8 byte order mark is dropped. Every row must have as many fields as the header.
func ReadTable(r io.Reader) (t stream.Table, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return t, errors.Wrap(err, "unable to read CSV")
	}
	data = bytes.TrimPrefix(data, utf8Bom)
	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.FieldsPerRecord = 0 // the header sets the field count
	header, err := csvReader.Read()
	if err == io.EOF {
		return t, ErrNoHeader
	}
	if err != nil {
		return t, errors.Wrap(err, "unable to read CSV header")
	}
	t = stream.NewTable(header)
	for {
		rec, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return t, errors.Wrapf(err, "unable to read CSV row %v", t.Len()+1)
		}
		t.AppendRow(rec)
	}
	return t, nil
}

// ReadTableFromFile reads the CSV file at fileName.
// A missing file is reported with an error satisfying os.IsNotExist on its cause.
func ReadTableFromFile(fileName string) (stream.Table, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return stream.Table{}, err
	}
	defer f.Close()
	t, err := ReadTable(f)
	if err != nil {
		return t, errors.Wrapf(err, "file %q", fileName)
	}
	return t, nil
}
