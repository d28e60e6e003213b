package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/ingest"
	"github.com/pesalens/pesalens/internal/ledger"
	"github.com/pesalens/pesalens/internal/queries"
)

func (s *Server) listLedgers(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledgers.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	render.JSON(w, r, map[string]any{"data": entries})
}

// uploadStatement reads the multipart "file" field and an optional
// "password" field and runs the pipeline.
func (s *Server) uploadStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, apperr.Input(apperr.ExtractionFailed, "upload", "statement exceeds %d bytes", s.maxUpload))
			return
		}
		s.fail(w, r, apperr.Input(apperr.InvalidDocumentType, "upload", "expected a multipart form with a file field"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, apperr.Input(apperr.InvalidDocumentType, "upload", "missing file field"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(w, r, apperr.Wrap(err, apperr.KindInput, apperr.ExtractionFailed, "upload", "reading upload"))
		return
	}

	res, err := s.pipeline.Ingest(r.Context(), ingest.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Password:    r.FormValue("password"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, res)
}

func (s *Server) listQueries(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"data": s.queries.Registry().List()})
}

// runQuery answers with the query payload, or the uniform no-data message
// when the ledger cannot serve it.
func (s *Server) runQuery(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.Run(r.Context(), chi.URLParam(r, "ledgerID"), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, apperr.ErrUnavailable) {
			render.JSON(w, r, map[string]string{"message": queries.NoDataMessage})
			return
		}
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
