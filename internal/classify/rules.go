package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule maps a details phrase to a transaction type.
type Rule struct {
	Phrase string `yaml:"phrase"`
	Label  string `yaml:"label"`
}

// RuleFile is the on-disk shape of rules/categorization-rules.yaml.
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in phrase table. Order matters: when several
// phrases occur in the same details text, the one listed last wins.
func DefaultRules() []Rule {
	return []Rule{
		{"Customer Transfer to", "Send Money"},
		{"Pay Bill Fuliza M-Pesa to", "Fuliza Loan"},
		{"Customer Transfer Fuliza MPesa", "Send Money"},
		{"Pay Bill Online", "Pay Bill"},
		{"Pay Bill to", "Pay Bill"},
		{"Customer Transfer of Funds Charge", "Mpesa Charges"},
		{"Pay Bill Charge", "Mpesa Charges"},
		{"Merchant Payment Online", "Till No"},
		{"Customer Send Money to Micro", "Pochi"},
		{"M-Shwari Withdraw", "Mshwari Withdraw"},
		{"Business Payment from", "Bank Transfer"},
		{"Airtime Purchase", "Airtime Purchase"},
		{"Airtime Purchase For Other", "Airtime Purchase"},
		{"Recharge for Customer", "safaricom bundles"},
		{"Customer Bundle Purchase with Fuliza", "safaricom bundles"},
		{"Funds received from", "Received Money"},
		{"Merchant Payment", "Till No"},
		{"Customer Withdrawal", "Cash Withdrawal"},
		{"Withdrawal Charge", "Mpesa Charges"},
		{"Pay Merchant Charge", "Mpesa Charges"},
		{"M-Shwari Deposit", "Mshwari Deposit"},
		{"M-Shwari Loan", "M-Shwari Loan"},
		{"M-Shwari Loan Repayment", "M-Shwari Repayment"},
		{"Deposit of Funds at Agent", "Customer Deposit"},
		{"OD Loan Repayment to", "Fuliza Loan Repayment"},
		{"OverDraft of Credit Party", "Fuliza Loan"},
		{"Customer Transfer Fuliza M-Pesa to", "Send Money"},
		{"KCB M-PESA Withdraw", "KCB M-PESA Withdraw"},
		{"KCB M-PESA Deposit", "KCB M-PESA Deposit"},
		{"KCB M-PESA Target Deposit", "KCB M-PESA Deposit"},
		{"Recharge for Customer With Fuliza", "Fuliza Airtime"},
		{"Promotion Payment", "Received Money"},
		{"KCB M-PESA Target First Deposit", "KCB M-PESA Deposit"},
		{"Customer Payment to Small Business", "Pochi"},
		{"Merchant Customer Payment from", "Till No"},
		{"Reversal", "Reversal"},
		{"Merchant Payment Fuliza M-Pesa", "Till No"},
		{"H-fund", "Hustler"},
		{"Other", "Other"},
	}
}

// LoadRules reads a rule file. A missing file or an empty rule list yields
// DefaultRules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if len(rf.Rules) == 0 {
		return DefaultRules(), nil
	}
	for i, r := range rf.Rules {
		if r.Phrase == "" || r.Label == "" {
			return nil, fmt.Errorf("rule %d: phrase and label are required", i+1)
		}
	}
	return rf.Rules, nil
}

// SaveRules writes a rule file.
func SaveRules(path string, rules []Rule) error {
	data, err := yaml.Marshal(RuleFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
