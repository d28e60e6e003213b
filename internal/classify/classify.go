// Package classify labels ledger transactions from their details text.
package classify

import (
	"strings"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/model"
)

const stage = "classify"

// Classifier applies an ordered rule table.
type Classifier struct {
	rules    []Rule
	phrases  []string // lowercased, parallel to rules
	feeLabel string
}

// New creates a Classifier. The rule slice is copied.
func New(rules []Rule) *Classifier {
	c := &Classifier{
		rules:    append([]Rule(nil), rules...),
		phrases:  make([]string, len(rules)),
		feeLabel: model.TypeCharges,
	}
	for i, r := range rules {
		c.phrases[i] = strings.ToLower(r.Phrase)
	}
	return c
}

// Rules returns the classifier's rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Label folds over every rule; each phrase found in details overwrites the
// label, so the last matching rule in table order wins.
func (c *Classifier) Label(details string) string {
	text := strings.ToLower(details)
	label := model.TypeOther
	for i, phrase := range c.phrases {
		if strings.Contains(text, phrase) {
			label = c.rules[i].Label
		}
	}
	return label
}

// Apply labels every transaction in place and removes fee records.
func (c *Classifier) Apply(ledger *model.Ledger) (dropped int, err error) {
	kept := ledger.Transactions[:0]
	for _, txn := range ledger.Transactions {
		txn.Type = c.Label(txn.Details)
		if txn.Type == c.feeLabel {
			dropped++
			continue
		}
		kept = append(kept, txn)
	}
	ledger.Transactions = kept
	if len(kept) == 0 {
		return dropped, apperr.Input(apperr.NoTransactionsRemaining, stage, "no transactions remain after removing charges")
	}
	return dropped, nil
}
