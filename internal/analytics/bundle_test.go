package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/model"
)

func category(t *testing.T, name string) Category {
	t.Helper()
	for _, c := range Categories(DefaultAllowLists()) {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no category %q", name)
	return Category{}
}

func TestNewBundle(t *testing.T) {
	d := dataset(t,
		txn{at: "2024-01-01 08:00", withdrawn: "100"},
		txn{at: "2024-01-15 08:00", withdrawn: "300"},
		txn{at: "2024-02-01 08:00", withdrawn: "50"},
	)
	b, ok := NewBundle(d.Records)
	require.True(t, ok)
	assert.Equal(t, 3, b.TotalTransactions)
	assert.InDelta(t, 1.5, b.AverageTransactionsPerMonth, 1e-9)
	assertDec(t, "450", b.TotalTransactedAmount)
	assertDec(t, "300", b.HighestTransactedAmount)
	assertDec(t, "50", b.MinimumTransactedAmount)
	assertDec(t, "150", b.AverageTransactedAmount)

	_, ok = NewBundle(nil)
	assert.False(t, ok)
}

func TestCategory_Betting(t *testing.T) {
	n, ok := derive.ExtractNumber("Pay Bill Online to 4097371 - XYZ")
	require.True(t, ok)
	assert.Equal(t, "4097371", n)

	d := dataset(t,
		txn{at: "2024-01-01 08:00", typ: model.TypePayBill, details: "Pay Bill Online to 4097371 - XYZ", withdrawn: "100"},
		txn{at: "2024-01-01 09:00", typ: model.TypePayBill, details: "Pay Bill Online to 888880 - KPLC", withdrawn: "100"},
		txn{at: "2024-01-01 10:00", typ: model.TypeSendMoney, details: "Customer Transfer to 0712******678 JOHN", withdrawn: "100"},
	)
	betting := Filter(d.Records, category(t, CategoryBetting).Match)
	require.Len(t, betting, 1)
	assert.Equal(t, int64(4097371), NumberValue(betting[0]))
	assert.Equal(t, int64(0), NumberValue(d.Records[2]))
}

func TestCategory_Savings(t *testing.T) {
	d := dataset(t,
		txn{at: "2024-01-01 08:00", details: "M-Shwari Deposit", withdrawn: "100"},
		txn{at: "2024-01-01 09:00", details: "sanlam unit trust", withdrawn: "100"},
		txn{at: "2024-01-01 10:00", details: "M-Shwari Withdraw", paidIn: "100"},
	)
	assert.Len(t, Filter(d.Records, category(t, CategorySavings).Match), 2)
}

func TestCategory_ShoppingAndFuel(t *testing.T) {
	d := dataset(t,
		txn{at: "2024-01-01 08:00", typ: model.TypeTillNo, details: "Merchant Payment to 123456 - NAIVAS WESTLANDS", withdrawn: "100"},
		txn{at: "2024-01-01 09:00", typ: model.TypeTillNo, details: "Merchant Payment to 555555 - RUBIS KAREN", withdrawn: "100"},
		// fuel needs a bill type
		txn{at: "2024-01-01 10:00", typ: model.TypeSendMoney, details: "Customer Transfer to 0712******678 SHELL AGENT", withdrawn: "100"},
	)
	assert.Len(t, Filter(d.Records, category(t, CategoryShopping).Match), 1)
	fuel := Filter(d.Records, category(t, CategoryFuel).Match)
	require.Len(t, fuel, 1)
	assert.Contains(t, fuel[0].Details, "RUBIS")
}

func TestCategory_Bills(t *testing.T) {
	d := dataset(t,
		txn{at: "2024-01-01 08:00", typ: model.TypePayBill, details: "Pay Bill to 888880 - KPLC PREPAID", withdrawn: "1000"},
		txn{at: "2024-01-01 09:00", typ: model.TypePayBill, details: "Pay Bill to 150501 - SAFARICOM HOME", withdrawn: "3000"},
		txn{at: "2024-01-01 10:00", typ: model.TypeTillNo, details: "Pay Bill to 320320 - ZUKU", withdrawn: "2500"},
		// right number, wrong type
		txn{at: "2024-01-01 11:00", typ: model.TypeSendMoney, details: "Transfer to 888888 - SOMEONE", withdrawn: "5"},
	)
	assert.Len(t, Filter(d.Records, category(t, CategoryDataBills).Match), 3)
	assert.Len(t, Filter(d.Records, category(t, CategoryKPLC).Match), 1)
	assert.Len(t, Filter(d.Records, category(t, CategorySafaricomWiFi).Match), 1)
	assert.Len(t, Filter(d.Records, category(t, CategoryZuku).Match), 1)
}

func TestCategories_CustomLists(t *testing.T) {
	lists := DefaultAllowLists()
	lists.ShoppingNames = []string{"Carrefour"}
	d := dataset(t,
		txn{at: "2024-01-01 08:00", details: "Merchant Payment to 123456 - CARREFOUR JUNCTION", withdrawn: "100"},
		txn{at: "2024-01-01 09:00", details: "Merchant Payment to 123457 - NAIVAS", withdrawn: "100"},
	)
	for _, c := range Categories(lists) {
		if c.Name == CategoryShopping {
			assert.Len(t, Filter(d.Records, c.Match), 1)
		}
	}
}
