// Package analytics computes read-only aggregates and credit indicators over
// an enriched ledger.
package analytics

import (
	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/model"
)

// Dataset is a loaded ledger with its derivation pass applied.
type Dataset struct {
	Ledger  *model.Ledger
	Records []derive.Record
}

// NewDataset runs the derivation pass over l once.
func NewDataset(l *model.Ledger) *Dataset {
	return &Dataset{Ledger: l, Records: derive.Enrich(l)}
}

// Empty reports whether the dataset has no transactions.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// Filter returns the records matching keep, in ledger order.
func Filter(records []derive.Record, keep func(derive.Record) bool) []derive.Record {
	var out []derive.Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// OfType keeps records whose transaction type is one of types.
func OfType(types ...string) func(derive.Record) bool {
	return func(r derive.Record) bool {
		for _, t := range types {
			if r.Type == t {
				return true
			}
		}
		return false
	}
}
