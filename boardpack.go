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
	"context"
	"encoding/csv"
	"strconv"

	"github.com/pkg/errors"

	"github.com/minitug/reckon/internal/apierror"
	"github.com/minitug/reckon/model"
)

// BoardPackName is the suggested download filename.
const BoardPackName = "board_pack.zip"

const dateLayout = "2006-01-02"

// BoardPack builds the downloadable zip of journal, monthly P&L, monthly
// cash and the raw record sets. An empty store is a not-found, since there
// is nothing to report on.
func (r *Reckon) BoardPack(ctx context.Context) ([]byte, error) {
	hasData, err := r.datasource.HasData(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to check store state", err)
	}
	if !hasData {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "no records loaded", nil)
	}

	invoices, err := r.datasource.GetAllInvoices(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load invoices", err)
	}
	bank, err := r.datasource.GetAllBankTransactions(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load bank transactions", err)
	}
	matches, err := r.datasource.GetAllMatches(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load matches", err)
	}

	blob, err := buildBoardPack(invoices, bank, matches)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to build board pack", err)
	}
	return blob, nil
}

// buildBoardPack assembles the zip in memory. Entry names are part of the
// download contract.
func buildBoardPack(invoices []*model.Invoice, bank []*model.BankTransaction, matches []*model.Match) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeEntry := func(name string, header []string, rows [][]string) error {
		w, err := zw.Create(name)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", name)
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return errors.Wrapf(err, "failed to write %s header", name)
		}
		if err := cw.WriteAll(rows); err != nil {
			return errors.Wrapf(err, "failed to write %s rows", name)
		}
		cw.Flush()
		return errors.Wrapf(cw.Error(), "failed to flush %s", name)
	}

	journalRows := [][]string{}
	for _, row := range BuildJournal(invoices, bank, matches) {
		journalRows = append(journalRows, []string{
			row.Date.Format(dateLayout), row.Entity, row.Account,
			money(row.Debit), money(row.Credit), row.Ref,
		})
	}
	if err := writeEntry("journal.csv", []string{"date", "entity", "account", "debit", "credit", "ref"}, journalRows); err != nil {
		return nil, err
	}

	plRows := [][]string{}
	for _, row := range rollupRevenue(invoices, true) {
		plRows = append(plRows, []string{row.Month, money(row.Revenue), money(row.Expense)})
	}
	if err := writeEntry("pl_monthly.csv", []string{"month", "revenue", "expense"}, plRows); err != nil {
		return nil, err
	}

	cashRows := [][]string{}
	for _, row := range rollupCash(bank, true) {
		cashRows = append(cashRows, []string{row.Month, money(row.NetCash)})
	}
	if err := writeEntry("cash_monthly.csv", []string{"month", "net_cash"}, cashRows); err != nil {
		return nil, err
	}

	invoiceRows := [][]string{}
	for _, inv := range invoices {
		invoiceRows = append(invoiceRows, []string{
			inv.InvoiceID, inv.Entity, inv.Partner, inv.InvoiceNo, inv.Type,
			money(inv.Amount), money(inv.NetAmount), money(inv.VATAmount),
			inv.Currency, inv.Date.Format(dateLayout), inv.MatchID,
		})
	}
	if err := writeEntry("invoices_raw.csv", []string{
		"invoice_id", "entity", "partner", "invoice_no", "type",
		"amount", "net_amount", "vat_amount", "currency", "date", "match_id",
	}, invoiceRows); err != nil {
		return nil, err
	}

	bankRows := [][]string{}
	for _, txn := range bank {
		bankRows = append(bankRows, []string{
			txn.TransactionID, txn.Entity, txn.Partner, txn.Memo, txn.Direction,
			money(txn.Amount), txn.Currency, txn.Date.Format(dateLayout),
			strconv.FormatBool(txn.IsPSPCandidate), txn.MatchID,
		})
	}
	if err := writeEntry("bank_raw.csv", []string{
		"transaction_id", "entity", "partner", "memo", "direction",
		"amount", "currency", "date", "is_psp_candidate", "match_id",
	}, bankRows); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize board pack")
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
