package statement

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/pesalens/pesalens/internal/apperr"
)

// CSVExtractor reads statements exported as CSV.
type CSVExtractor struct{}

// ContentType returns text/csv.
func (e *CSVExtractor) ContentType() string { return ContentTypeCSV }

// Extract reads every record and builds a single table.
func (e *CSVExtractor) Extract(_ context.Context, data []byte, _ string) (*Document, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInput, apperr.ExtractionFailed, stage, "reading CSV")
	}

	doc := &Document{}
	if table, ok := buildTable(records, &doc.Holder); ok {
		doc.Tables = append(doc.Tables, table)
	}
	return doc, nil
}
