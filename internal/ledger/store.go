package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/id"
	"github.com/pesalens/pesalens/internal/model"
)

// Dir is the workspace subdirectory holding ledger files and the index.
const Dir = "ledgers"

const stage = "store"

// Source describes where a ledger came from.
type Source struct {
	Filename     string
	ContentType  string
	HolderName   string
	HolderMobile string
}

// Store keeps one CSV file per ingested ledger under <workspace>/ledgers/.
// Every read names its ledger explicitly.
type Store struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewStore creates a Store rooted at workspace.
func NewStore(workspace string) *Store {
	return &Store{dir: filepath.Join(workspace, Dir), now: time.Now}
}

// Save assigns l a fresh ID, writes it atomically and records it in the
// index. l.ID is set on success.
func (s *Store) Save(l *model.Ledger, src Source) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("creating ledger dir: %w", err)
	}

	now := s.now()
	ledgerID := id.NewLedgerID(now)

	tmp, err := os.CreateTemp(s.dir, ".ledger-*.csv")
	if err != nil {
		return Entry{}, fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteLedger(tmp, l); err != nil {
		tmp.Close()
		return Entry{}, fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Entry{}, fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(ledgerID)); err != nil {
		return Entry{}, fmt.Errorf("renaming ledger: %w", err)
	}

	entry := Entry{
		Timestamp:    now.UTC().Truncate(time.Second),
		LedgerID:     ledgerID,
		Filename:     src.Filename,
		ContentType:  src.ContentType,
		HolderName:   src.HolderName,
		HolderMobile: src.HolderMobile,
		Records:      l.Len(),
	}
	if err := appendIndex(s.dir, []Entry{entry}); err != nil {
		os.Remove(s.Path(ledgerID))
		return Entry{}, err
	}

	l.ID = ledgerID
	return entry, nil
}

// Load reads the ledger with the given ID.
func (s *Store) Load(ledgerID string) (*model.Ledger, error) {
	if !id.Valid(ledgerID) {
		return nil, apperr.Unavailable(apperr.LedgerNotFound, stage, "ledger %q not found", ledgerID)
	}

	f, err := os.Open(s.Path(ledgerID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Unavailable(apperr.LedgerNotFound, stage, "ledger %q not found", ledgerID)
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", ledgerID, err)
	}
	defer f.Close()

	l, err := ReadLedger(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", ledgerID, err)
	}
	l.ID = ledgerID
	return l, nil
}

// List returns every index entry, oldest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readIndex(s.dir)
}

// Latest returns the most recently saved entry.
func (s *Store) Latest() (Entry, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, apperr.Unavailable(apperr.LedgerNotFound, stage, "no ledgers have been ingested")
	}
	return entries[len(entries)-1], nil
}

// Path returns the file path of a ledger.
func (s *Store) Path(ledgerID string) string {
	return filepath.Join(s.dir, ledgerID+".csv")
}
