// Package id formats and parses ledger identifiers.
package id

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	stampFormat = "20060102-150405"
	suffixLen   = 12
)

var ledgerIDPattern = regexp.MustCompile(`^(\d{8}-\d{6})-([0-9a-f]{12})$`)

// FormatLedgerID returns an ID like "20250105-081500-1b4e28ba2fa1".
// IDs sort in creation order.
func FormatLedgerID(created time.Time, u uuid.UUID) string {
	hex := strings.ReplaceAll(u.String(), "-", "")
	return created.UTC().Format(stampFormat) + "-" + hex[:suffixLen]
}

// NewLedgerID returns a fresh ledger ID stamped with created.
func NewLedgerID(created time.Time) string {
	return FormatLedgerID(created, uuid.New())
}

// ParseLedgerID returns the creation time and random suffix of id.
func ParseLedgerID(id string) (created time.Time, suffix string, err error) {
	m := ledgerIDPattern.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("invalid ledger ID format: %q", id)
	}
	created, err = time.Parse(stampFormat, m[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid timestamp in ledger ID %q: %w", id, err)
	}
	return created, m[2], nil
}

// Valid reports whether id is a well-formed ledger ID. Only valid IDs are
// ever turned into file paths.
func Valid(id string) bool {
	_, _, err := ParseLedgerID(id)
	return err == nil
}
