// Package statement turns uploaded statement documents into raw tables.
package statement

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/model"
)

//go:generate mockgen -destination=mocks/mock_extractor.go -package=mocks -source=statement.go Extractor

// Content types of the supported statement documents.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

const stage = "extract"

// Holder is the account holder printed on the statement's first page.
type Holder struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
}

// Document is the result of extracting one statement.
type Document struct {
	Tables []model.RawTable
	Holder Holder
}

// Extractor converts the bytes of one statement document into tables.
type Extractor interface {
	Extract(ctx context.Context, data []byte, password string) (*Document, error)
	ContentType() string
}

// Registry holds extractors keyed by content type.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Register adds an extractor. Panics on duplicate content type.
func (r *Registry) Register(e Extractor) {
	key := strings.ToLower(e.ContentType())
	if _, ok := r.extractors[key]; ok {
		panic("duplicate extractor content type: " + key)
	}
	r.extractors[key] = e
}

// Get returns the extractor for contentType, or nil.
func (r *Registry) Get(contentType string) Extractor {
	return r.extractors[mediaType(contentType)]
}

// Lookup is Get with an InvalidDocumentType error for unknown content types.
func (r *Registry) Lookup(contentType string) (Extractor, error) {
	e := r.Get(contentType)
	if e == nil {
		return nil, apperr.Input(apperr.InvalidDocumentType, stage, "unsupported content type %q", contentType)
	}
	return e, nil
}

// DefaultRegistry returns a registry with all built-in extractors. tables
// reads PDF page tables; nil leaves PDF table reading unconfigured.
func DefaultRegistry(tables TableReader) *Registry {
	r := NewRegistry()
	r.Register(&CSVExtractor{})
	r.Register(&XLSXExtractor{})
	r.Register(&PDFExtractor{Tables: tables})
	return r
}

// DetectContentType picks a content type from the file extension, falling
// back to sniffing the data.
func DetectContentType(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ContentTypeCSV
	case ".xlsx":
		return ContentTypeXLSX
	case ".pdf":
		return ContentTypePDF
	}
	return mediaType(http.DetectContentType(data))
}

// mediaType strips parameters such as "; charset=utf-8" and lowercases.
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
