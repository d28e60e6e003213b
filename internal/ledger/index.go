package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the ledger index: a successful ingestion run.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	LedgerID     string    `json:"ledger_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	HolderName   string    `json:"holder_name"`
	HolderMobile string    `json:"holder_mobile"`
	Records      int       `json:"records"`
}

// IndexHeader is the CSV header for index.csv.
const IndexHeader = "timestamp,ledger_id,filename,content_type,holder_name,holder_mobile,records"

const (
	numIndexFields  = 7
	indexFile       = "index.csv"
	colTimestamp    = 0
	colLedgerID     = 1
	colFilename     = 2
	colContentType  = 3
	colHolderName   = 4
	colHolderMobile = 5
	colRecords      = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numIndexFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colLedgerID] = e.LedgerID
	row[colFilename] = e.Filename
	row[colContentType] = e.ContentType
	row[colHolderName] = e.HolderName
	row[colHolderMobile] = e.HolderMobile
	row[colRecords] = strconv.Itoa(e.Records)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numIndexFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numIndexFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	records, err := strconv.Atoi(record[colRecords])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing records %q: %w", record[colRecords], err)
	}

	return Entry{
		Timestamp:    ts,
		LedgerID:     record[colLedgerID],
		Filename:     record[colFilename],
		ContentType:  record[colContentType],
		HolderName:   record[colHolderName],
		HolderMobile: record[colHolderMobile],
		Records:      records,
	}, nil
}

// appendIndex writes entries to <dir>/index.csv, creating the file and header if needed.
func appendIndex(dir string, entries []Entry) error {
	path := filepath.Join(dir, indexFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger index: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(IndexHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// readIndex returns all entries from <dir>/index.csv.
// Returns an empty slice if the file does not exist.
func readIndex(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger index: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numIndexFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger index CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
