package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/model"
)

var statementColumns = []string{
	model.ColReceiptNo,
	model.ColCompletionTime,
	model.ColDetails,
	model.ColStatus,
	model.ColPaidIn,
	model.ColWithdrawn,
	model.ColBalance,
}

func statementRow(receipt, ts, details, status, paidIn, withdrawn, balance string) model.RawRow {
	return model.RawRow{
		model.ColReceiptNo:      receipt,
		model.ColCompletionTime: ts,
		model.ColDetails:        details,
		model.ColStatus:         status,
		model.ColPaidIn:         paidIn,
		model.ColWithdrawn:      withdrawn,
		model.ColBalance:        balance,
	}
}

func table(rows ...model.RawRow) model.RawTable {
	return model.RawTable{Columns: statementColumns, Rows: rows}
}

func TestNormalize_Scenario(t *testing.T) {
	tbl := table(statementRow("SA1", "2024-01-05 10:00", "Customer Transfer to John", "Completed", "1,000", "0", "5,000"))

	ledger, stats, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 1)

	txn := ledger.Transactions[0]
	assert.Equal(t, "1000", txn.PaidIn.String())
	assert.True(t, txn.Withdrawn.IsZero())
	assert.Equal(t, "5000", txn.Balance.String())
	assert.Equal(t, "1000", txn.Amount().String())
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), txn.CompletionTime)
	assert.Equal(t, "SA1", txn.ReceiptNo)
	assert.Equal(t, []string{model.ColReceiptNo}, ledger.Columns)
	assert.Equal(t, 1, stats.InputRows)
}

func TestNormalize_NoTables(t *testing.T) {
	_, _, err := Normalize(nil)
	assert.ErrorIs(t, err, apperr.ErrNoTablesExtracted)
}

func TestNormalize_EmptyDataset(t *testing.T) {
	_, _, err := Normalize([]model.RawTable{table(), table()})
	assert.ErrorIs(t, err, apperr.ErrEmptyDataset)
}

func TestNormalize_MissingStatus(t *testing.T) {
	tbl := model.RawTable{
		Columns: []string{model.ColDetails},
		Rows:    []model.RawRow{{model.ColDetails: "x"}},
	}
	_, _, err := Normalize([]model.RawTable{tbl})
	require.ErrorIs(t, err, apperr.ErrMissingColumn)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{model.ColStatus}, e.Columns)
}

func TestNormalize_NoCompleted(t *testing.T) {
	tbl := table(statementRow("SA1", "2024-01-05 10:00", "x", "Failed", "1", "0", "1"))
	_, _, err := Normalize([]model.RawTable{tbl})
	assert.ErrorIs(t, err, apperr.ErrNoCompletedTransactions)
}

func TestNormalize_MissingRequiredListsAll(t *testing.T) {
	tbl := model.RawTable{
		Columns: []string{model.ColStatus, model.ColDetails, model.ColCompletionTime},
		Rows: []model.RawRow{{
			model.ColStatus:         "Completed",
			model.ColDetails:        "x",
			model.ColCompletionTime: "2024-01-05 10:00:00",
		}},
	}
	_, _, err := Normalize([]model.RawTable{tbl})
	require.ErrorIs(t, err, apperr.ErrMissingColumn)

	e, _ := apperr.As(err)
	assert.Equal(t, []string{model.ColPaidIn, model.ColWithdrawn, model.ColBalance}, e.Columns)
}

func TestNormalize_NoValidDates(t *testing.T) {
	tbl := table(
		statementRow("SA1", "yesterday", "x", "Completed", "1", "0", "1"),
		statementRow("SA2", "", "y", "Completed", "1", "0", "1"),
	)
	_, stats, err := Normalize([]model.RawTable{tbl})
	assert.ErrorIs(t, err, apperr.ErrNoValidDates)
	assert.Equal(t, 2, stats.InvalidDates)
}

func TestNormalize_DropsUnparseableDates(t *testing.T) {
	tbl := table(
		statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"),
		statementRow("SA2", "not a date", "b", "Completed", "1", "0", "1"),
	)
	ledger, stats, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	assert.Len(t, ledger.Transactions, 1)
	assert.Equal(t, 1, stats.InvalidDates)
}

func TestNormalize_FiltersCompleted(t *testing.T) {
	tbl := table(
		statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"),
		statementRow("SA2", "2024-01-05 11:00:00", "b", "Failed", "1", "0", "1"),
		statementRow("SA3", "2024-01-05 12:00:00", "c", "Completed", "1", "0", "1"),
	)
	ledger, stats, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	assert.Len(t, ledger.Transactions, 2)
	assert.Equal(t, 3, stats.InputRows)
	assert.Equal(t, 2, stats.CompletedRows)
}

func TestNormalize_NumericCoercion(t *testing.T) {
	tbl := table(statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "abc", "-1,250.50", ""))
	ledger, _, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)

	txn := ledger.Transactions[0]
	assert.True(t, txn.PaidIn.IsZero())
	assert.Equal(t, "1250.50", txn.Withdrawn.StringFixed(2), "withdrawn is stored as an absolute value")
	assert.True(t, txn.Balance.IsZero())
}

func TestNormalize_CleansDetails(t *testing.T) {
	tbl := table(statementRow("SA1", "2024-01-05 10:00:00", "Pay Bill\rOnline\x00 KPLC", "Completed", "0", "10", "1"))
	ledger, _, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	assert.Equal(t, "Pay Bill Online KPLC", ledger.Transactions[0].Details)
}

func TestNormalize_ConcatenatesTablesInOrder(t *testing.T) {
	page1 := table(statementRow("SA1", "2024-01-05 10:00:00", "first", "Completed", "1", "0", "1"))
	page2 := table(statementRow("SA2", "2024-01-04 10:00:00", "second", "Completed", "2", "0", "1"))

	ledger, _, err := Normalize([]model.RawTable{page1, page2})
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 2)
	assert.Equal(t, "first", ledger.Transactions[0].Details)
	assert.Equal(t, "second", ledger.Transactions[1].Details)
}

func TestNormalize_RemovesDuplicates(t *testing.T) {
	r := statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1")
	tbl := table(r, r, statementRow("SA2", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"))

	ledger, stats, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	assert.Len(t, ledger.Transactions, 2)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestNormalize_MissingValuePolicy(t *testing.T) {
	cols := append(append([]string{}, statementColumns...), "Reference", "Fee")
	rows := []model.RawRow{
		statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"),
		statementRow("SA2", "2024-01-05 11:00:00", "b", "Completed", "1", "0", "1"),
		statementRow("SA3", "2024-01-05 12:00:00", "c", "Completed", "1", "0", "1"),
	}
	// Reference: 2 of 3 missing -> dropped. Fee: 1 of 3 missing -> mean filled.
	rows[0]["Reference"] = "R1"
	rows[0]["Fee"] = "10"
	rows[1]["Fee"] = "20"
	rows[2]["Fee"] = " "

	ledger, stats, err := Normalize([]model.RawTable{{Columns: cols, Rows: rows}})
	require.NoError(t, err)

	assert.False(t, ledger.Has("Reference"))
	assert.True(t, ledger.Has("Fee"))
	assert.Equal(t, []string{"Reference"}, stats.DroppedColumns)
	assert.Equal(t, []string{"Fee"}, stats.FilledColumns)
	for _, txn := range ledger.Transactions {
		assert.NotContains(t, txn.Extra, "Reference")
		assert.NotEmpty(t, txn.Extra["Fee"])
	}
	assert.Equal(t, "15", ledger.Transactions[2].Extra["Fee"])
}

func TestNormalize_TextColumnKeepsBlanks(t *testing.T) {
	cols := append(append([]string{}, statementColumns...), "Note")
	rows := []model.RawRow{
		statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"),
		statementRow("SA2", "2024-01-05 11:00:00", "b", "Completed", "1", "0", "1"),
	}
	rows[0]["Note"] = "hello"

	ledger, _, err := Normalize([]model.RawTable{{Columns: cols, Rows: rows}})
	require.NoError(t, err)
	assert.True(t, ledger.Has("Note"))
	assert.Equal(t, "", ledger.Transactions[1].Extra["Note"])
}

func TestNormalize_StripsLineBreaksFromLabels(t *testing.T) {
	cols := append(append([]string{}, statementColumns...), "Other\rParty")
	rows := []model.RawRow{statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1")}
	rows[0]["Other\rParty"] = "Jane"

	ledger, _, err := Normalize([]model.RawTable{{Columns: cols, Rows: rows}})
	require.NoError(t, err)
	assert.True(t, ledger.Has("OtherParty"))
	assert.Equal(t, "Jane", ledger.Transactions[0].Extra["OtherParty"])
}

func TestNormalize_DropsStatusColumn(t *testing.T) {
	tbl := table(statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"))
	ledger, _, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	assert.False(t, ledger.Has(model.ColStatus))
	assert.NotContains(t, ledger.Transactions[0].Extra, model.ColStatus)
}

func TestNormalize_MostlyMissingReceiptDropped(t *testing.T) {
	tbl := table(
		statementRow("", "2024-01-05 10:00:00", "a", "Completed", "1", "0", "1"),
		statementRow("", "2024-01-05 11:00:00", "b", "Completed", "1", "0", "1"),
		statementRow("SA3", "2024-01-05 12:00:00", "c", "Completed", "1", "0", "1"),
	)
	ledger, _, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	assert.False(t, ledger.Has(model.ColReceiptNo))
}

func TestNormalize_DuplicatesCheckedBeforeAbs(t *testing.T) {
	tbl := table(
		statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "0", "-100", "1"),
		statementRow("SA1", "2024-01-05 10:00:00", "a", "Completed", "0", "100", "1"),
	)
	ledger, _, err := Normalize([]model.RawTable{tbl})
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 2)
	for _, txn := range ledger.Transactions {
		assert.Equal(t, "100", txn.Withdrawn.String())
	}
}
