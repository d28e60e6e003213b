package statement

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pesalens/pesalens/internal/apperr"
)

// XLSXExtractor reads statements exported as Excel workbooks. Each sheet
// with a transaction header becomes one table.
type XLSXExtractor struct{}

// ContentType returns the OOXML spreadsheet media type.
func (e *XLSXExtractor) ContentType() string { return ContentTypeXLSX }

// Extract opens the workbook, decrypting it with password when set.
func (e *XLSXExtractor) Extract(ctx context.Context, data []byte, password string) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: password})
	if err != nil {
		if errors.Is(err, excelize.ErrWorkbookPassword) {
			return nil, apperr.Wrap(err, apperr.KindInput, apperr.DecryptionFailed, stage, "opening workbook")
		}
		return nil, apperr.Wrap(err, apperr.KindInput, apperr.ExtractionFailed, stage, "opening workbook")
	}
	defer f.Close()

	doc := &Document{}
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindInput, apperr.ExtractionFailed, stage, fmt.Sprintf("reading sheet %q", sheet))
		}
		if table, ok := buildTable(rows, &doc.Holder); ok {
			doc.Tables = append(doc.Tables, table)
		}
	}
	return doc, nil
}
