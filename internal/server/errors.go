package server

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/logger"
)

// ErrResponse is the JSON body of a failed request.
type ErrResponse struct {
	HTTPStatusCode int `json:"-"`

	Kind    string   `json:"kind"`
	Reason  string   `json:"reason,omitempty"`
	Message string   `json:"message"`
	Columns []string `json:"columns,omitempty"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrRender converts err to a response. Errors outside the taxonomy are
// reported as computation errors without their text.
func ErrRender(err error) *ErrResponse {
	e, ok := apperr.As(err)
	if !ok {
		return &ErrResponse{
			HTTPStatusCode: http.StatusInternalServerError,
			Kind:           string(apperr.KindComputation),
			Message:        "internal error",
		}
	}
	msg := e.Message
	if msg == "" {
		msg = e.Error()
	}
	return &ErrResponse{
		HTTPStatusCode: apperr.HTTPStatus(err),
		Kind:           string(e.Kind),
		Reason:         string(e.Reason),
		Message:        msg,
		Columns:        e.Columns,
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrRender(err)
	log := logger.FromContext(r.Context())
	ev := log.Warn()
	if resp.HTTPStatusCode >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", resp.HTTPStatusCode).Msg("request failed")
	_ = render.Render(w, r, resp)
}
