package export

import (
	"bytes"
	"encoding/csv"
)

// Row maps a header label to the rendered cell value. Headers absent from a
// row render as empty cells.
type Row map[string]string

// WriteCSV serializes the rows under the given ordered headers. Any encoding
// error aborts the export; a partial buffer is never returned.
func WriteCSV(headers []string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, err
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
