package statement

import (
	"bytes"
	"context"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pesalens/pesalens/internal/apperr"
)

// TableReader reads the cell grid of every table on every page of a PDF.
// Implementations wrap an external table extraction engine.
type TableReader interface {
	ReadTables(ctx context.Context, data []byte, password string) ([][][]string, error)
}

// TableReaderFunc adapts a function to TableReader.
type TableReaderFunc func(ctx context.Context, data []byte, password string) ([][][]string, error)

// ReadTables calls f.
func (f TableReaderFunc) ReadTables(ctx context.Context, data []byte, password string) ([][][]string, error) {
	return f(ctx, data, password)
}

// PDFExtractor reads M-Pesa PDF statements. pdfcpu validates the document
// and its password; Tables supplies the cell grids.
type PDFExtractor struct {
	Tables TableReader
}

// ContentType returns application/pdf.
func (e *PDFExtractor) ContentType() string { return ContentTypePDF }

// Extract validates the PDF and collects every table that carries a
// transaction header. Holder metadata is taken from rows above the first header.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte, password string) (*Document, error) {
	if _, err := PageCount(data, password); err != nil {
		return nil, err
	}
	if e.Tables == nil {
		return nil, apperr.Input(apperr.ExtractionFailed, stage, "no PDF table reader configured")
	}

	grids, err := e.Tables.ReadTables(ctx, data, password)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInput, apperr.ExtractionFailed, stage, "reading PDF tables")
	}

	doc := &Document{}
	for _, grid := range grids {
		if table, ok := buildTable(grid, &doc.Holder); ok {
			doc.Tables = append(doc.Tables, table)
		}
	}
	return doc, nil
}

// PageCount opens the PDF with password and returns its page count. A
// rejected password is DecryptionFailed; any other failure is ExtractionFailed.
func PageCount(data []byte, password string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "password") {
			return 0, apperr.Wrap(err, apperr.KindInput, apperr.DecryptionFailed, stage, "opening PDF")
		}
		return 0, apperr.Wrap(err, apperr.KindInput, apperr.ExtractionFailed, stage, "opening PDF")
	}
	return n, nil
}
