/*
Copyright 2025 The Reckon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package reckon

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minitug/reckon/model"
)

func journalFixture() ([]*model.Invoice, []*model.BankTransaction, []*model.Match) {
	invoices := []*model.Invoice{
		{InvoiceID: "inv1", Entity: "A", Type: model.InvoiceTypeRevenue, Amount: 400, Date: day("2024-01-09"), MatchID: "m1"},
		{InvoiceID: "inv2", Entity: "A", Type: model.InvoiceTypeRevenue, Amount: 650, Date: day("2024-01-10"), MatchID: "m1"},
		{InvoiceID: "inv3", Entity: "A", Type: model.InvoiceTypeRevenue, Amount: 120, Date: day("2024-01-20")},
		{InvoiceID: "inv4", Entity: "A", Type: model.InvoiceTypeExpense, Amount: 80, Date: day("2024-01-21")},
	}
	bank := []*model.BankTransaction{
		{TransactionID: "txn1", Entity: "A", Partner: "Stripe", Direction: model.DirectionIn, Amount: 1000, Date: day("2024-01-11"), IsPSPCandidate: true, MatchID: "m1"},
	}
	matches := []*model.Match{
		{MatchID: "m1", Rule: model.RulePSPBatch, InvoiceIDs: []string{"inv1", "inv2"}, BankIDs: []string{"txn1"}, MatchedAmount: 1000, FeeApplied: 50},
	}
	return invoices, bank, matches
}

func TestBuildJournalPostings(t *testing.T) {
	invoices, bank, matches := journalFixture()

	rows := BuildJournal(invoices, bank, matches)

	// Two revenue credits, one cash debit, one fee debit, plus the AR/revenue
	// pair for the open invoice. The expense invoice posts nothing.
	assert.Equal(t, 6, len(rows))

	for _, row := range rows {
		nonZero := 0
		if row.Debit != 0 {
			nonZero++
		}
		if row.Credit != 0 {
			nonZero++
		}
		assert.Equal(t, 1, nonZero, "row %s %s must have exactly one side", row.Account, row.Ref)
	}

	// Chronological order.
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Date.Before(rows[i-1].Date))
	}

	var cashDebit, feeDebit, revenueCredit, arDebit float64
	for _, row := range rows {
		switch row.Account {
		case AccountCash:
			cashDebit += row.Debit
			assert.Equal(t, day("2024-01-11"), row.Date)
			assert.Equal(t, "m1", row.Ref)
		case AccountPSPFees:
			feeDebit += row.Debit
			assert.Equal(t, "m1", row.Ref)
		case AccountRevenue:
			revenueCredit += row.Credit
		case AccountAR:
			arDebit += row.Debit
			assert.Equal(t, refUnmatched, row.Ref)
		}
	}
	assert.Equal(t, 1000.0, cashDebit)
	assert.Equal(t, 50.0, feeDebit)
	assert.Equal(t, 400.0+650+120, revenueCredit)
	assert.Equal(t, 120.0, arDebit)
}

func TestBuildJournalMatchedRevenueDatedAtInvoice(t *testing.T) {
	invoices, bank, matches := journalFixture()

	rows := BuildJournal(invoices, bank, matches)

	for _, row := range rows {
		if row.Account == AccountRevenue && row.Ref == "m1" && row.Credit == 400 {
			assert.Equal(t, day("2024-01-09"), row.Date)
			return
		}
	}
	t.Fatal("missing revenue credit for inv1")
}

func TestBuildBoardPackEntries(t *testing.T) {
	invoices, bank, matches := journalFixture()

	blob, err := buildBoardPack(invoices, bank, matches)
	assert.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	assert.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"journal.csv", "pl_monthly.csv", "cash_monthly.csv", "invoices_raw.csv", "bank_raw.csv"} {
		assert.True(t, names[want], "missing board pack entry %s", want)
	}

	rc, err := zr.Open("pl_monthly.csv")
	assert.NoError(t, err)
	defer rc.Close()
	var content bytes.Buffer
	_, err = content.ReadFrom(rc)
	assert.NoError(t, err)
	assert.Contains(t, content.String(), "month,revenue,expense")
	assert.Contains(t, content.String(), "2024-01,1170.00,80.00")
}
