package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesalens/pesalens/internal/analytics"
	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/classify"
	"github.com/pesalens/pesalens/internal/ingest"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/ledger"
	"github.com/pesalens/pesalens/internal/queries"
	"github.com/pesalens/pesalens/internal/statement"
)

const statementCSV = "Receipt No.,Completion Time,Details,Transaction Status,Paid In,Withdrawn,Balance\n" +
	"SA1,2024-01-05 10:00:00,Funds received from 0712******678 JOHN DOE,Completed,\"1,000.00\",,\"1,000.00\"\n" +
	"SA2,2024-01-06 13:00:00,Pay Bill Online to 888880 - KPLC PREPAID Acc,Completed,,-200.00,800.00\n" +
	"SA3,2024-01-07 19:30:00,Customer Transfer to 0799******111 ALICE,Completed,,-300.00,500.00\n"

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := instrument.New(reg)
	store := ledger.NewStore(t.TempDir())

	pipeline := ingest.NewPipeline(statement.DefaultRegistry(nil), classify.New(classify.DefaultRules()), store,
		ingest.WithMetrics(metrics))
	svc := queries.NewService(store, queries.DefaultRegistry(analytics.DefaultAllowLists()), metrics)

	srv := New(Options{
		Pipeline: pipeline,
		Queries:  svc,
		Ledgers:  store,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, reg
}

func upload(t *testing.T, ts *httptest.Server, filename, contentType string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("password", ""))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/ledgers", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
	return resp
}

func TestUploadAndQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := upload(t, ts, "jan.csv", "text/csv", []byte(statementCSV))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res struct {
		LedgerID        string           `json:"ledger_id"`
		ContentType     string           `json:"content_type"`
		TotalRecords    int              `json:"total_records"`
		ReturnedRecords int              `json:"returned_records"`
		Data            []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.NotEmpty(t, res.LedgerID)
	assert.Equal(t, statement.ContentTypeCSV, res.ContentType)
	assert.Equal(t, 3, res.TotalRecords)
	require.Len(t, res.Data, 3)
	assert.Equal(t, "Received Money", res.Data[0]["transaction_type"])
	assert.Equal(t, 1000.0, res.Data[0]["paid_in"])

	var total map[string]any
	resp = getJSON(t, ts.URL+"/ledgers/"+res.LedgerID+"/queries/total_received", &total)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1000.0, total["total"])

	var kplc map[string]any
	getJSON(t, ts.URL+"/ledgers/latest/queries/kplc_metrics", &kplc)
	assert.Equal(t, 1.0, kplc["total_transactions"])
	assert.Equal(t, 200.0, kplc["total_transacted_amount"])

	var betting map[string]any
	resp = getJSON(t, ts.URL+"/ledgers/latest/queries/betting_metrics", &betting)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"message": queries.NoDataMessage}, betting)

	var list struct {
		Data []ledger.Entry `json:"data"`
	}
	getJSON(t, ts.URL+"/ledgers", &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, res.LedgerID, list.Data[0].LedgerID)
	assert.Equal(t, "jan.csv", list.Data[0].Filename)
}

func TestQuery_NoLedger(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]any
	resp := getJSON(t, ts.URL+"/ledgers/latest/queries/trans_type", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, queries.NoDataMessage, body["message"])

	body = nil
	resp = getJSON(t, ts.URL+"/ledgers/not-an-id/queries/trans_type", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, queries.NoDataMessage, body["message"])
}

func TestQuery_Unknown(t *testing.T) {
	ts, _ := newTestServer(t)

	var body ErrResponse
	resp := getJSON(t, ts.URL+"/ledgers/latest/queries/horoscope", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(apperr.KindInput), body.Kind)
	assert.Equal(t, string(apperr.UnknownQuery), body.Reason)
}

func TestListQueries(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Data []queries.Query `json:"data"`
	}
	getJSON(t, ts.URL+"/ledgers/latest/queries", &body)
	names := make([]string, len(body.Data))
	for i, q := range body.Data {
		names[i] = q.Name
	}
	assert.Contains(t, names, "credit_report")
	assert.Contains(t, names, "top_paybill_transactions")
}

func TestUpload_Errors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        string
		status      int
		reason      apperr.Reason
		columns     []string
	}{
		{
			name: "unsupported type", filename: "photo.png", contentType: "image/png",
			data: "\x89PNG\r\n\x1a\n", status: http.StatusUnsupportedMediaType, reason: apperr.InvalidDocumentType,
		},
		{
			name: "missing columns", filename: "s.csv", contentType: "text/csv",
			data:   "Completion Time,Details,Transaction Status\n2024-01-05 10:00:00,x,Completed\n",
			status: http.StatusBadRequest, reason: apperr.MissingColumn,
			columns: []string{"Paid In", "Withdrawn", "Balance"},
		},
		{
			name: "nothing completed", filename: "s.csv", contentType: "text/csv",
			data:   "Completion Time,Details,Transaction Status,Paid In,Withdrawn,Balance\n2024-01-05 10:00:00,x,Failed,1,,1\n",
			status: http.StatusBadRequest, reason: apperr.NoCompletedTransactions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, ts, tt.filename, tt.contentType, []byte(tt.data))
			assert.Equal(t, tt.status, resp.StatusCode)

			var body ErrResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, string(tt.reason), body.Reason)
			assert.Equal(t, string(apperr.KindInput), body.Kind)
			assert.NotEmpty(t, body.Message)
			assert.ElementsMatch(t, tt.columns, body.Columns)
		})
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/ledgers", "application/json", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	var health map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	upload(t, ts, "jan.csv", "text/csv", []byte(statementCSV))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pesalens_ingestions_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), "pesalens_ingested_transactions_total 3")
}

func TestErrRender_ForeignError(t *testing.T) {
	resp := ErrRender(io.ErrUnexpectedEOF)
	assert.Equal(t, http.StatusInternalServerError, resp.HTTPStatusCode)
	assert.Equal(t, "internal error", resp.Message)
}
