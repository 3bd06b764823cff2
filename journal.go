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
	"context"
	"sort"

	"github.com/minitug/reckon/internal/apierror"
	"github.com/minitug/reckon/model"
)

// Chart of accounts.
const (
	AccountRevenue = "4000-Revenue"
	AccountCash    = "1000-Cash"
	AccountAR      = "1200-Accounts Receivable"
	AccountPSPFees = "6060-Payment Processing Fees"
)

// refUnmatched marks postings for revenue not yet settled by any bank row.
const refUnmatched = "UNMATCHED"

// Journal materializes the double-entry journal for the whole store.
func (r *Reckon) Journal(ctx context.Context) ([]model.JournalRow, error) {
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
	return BuildJournal(invoices, bank, matches), nil
}

// BuildJournal derives double-entry rows from the store snapshot. Matched
// revenue posts cash against revenue, with the PSP fee as a separate expense
// row; unmatched revenue posts accounts receivable against revenue. Exactly
// one of debit/credit is non-zero on every row, and the sequence is
// chronological and fully materialized so exports get a stable total.
func BuildJournal(invoices []*model.Invoice, bank []*model.BankTransaction, matches []*model.Match) []model.JournalRow {
	invByID := make(map[string]*model.Invoice, len(invoices))
	for _, inv := range invoices {
		invByID[inv.InvoiceID] = inv
	}
	bankByID := make(map[string]*model.BankTransaction, len(bank))
	for _, txn := range bank {
		bankByID[txn.TransactionID] = txn
	}

	rows := []model.JournalRow{}
	for _, m := range matches {
		for _, id := range m.BankIDs {
			txn, ok := bankByID[id]
			if !ok {
				continue
			}
			rows = append(rows, model.JournalRow{
				Date:    txn.Date,
				Entity:  txn.Entity,
				Account: AccountCash,
				Debit:   model.Round2(txn.Amount),
				Ref:     m.MatchID,
			})
			if m.FeeApplied > 0 {
				rows = append(rows, model.JournalRow{
					Date:    txn.Date,
					Entity:  txn.Entity,
					Account: AccountPSPFees,
					Debit:   m.FeeApplied,
					Ref:     m.MatchID,
				})
			}
		}
		for _, id := range m.InvoiceIDs {
			inv, ok := invByID[id]
			if !ok {
				continue
			}
			rows = append(rows, model.JournalRow{
				Date:    inv.Date,
				Entity:  inv.Entity,
				Account: AccountRevenue,
				Credit:  model.Round2(inv.Amount),
				Ref:     m.MatchID,
			})
		}
	}

	for _, inv := range invoices {
		if inv.Type != model.InvoiceTypeRevenue || inv.Matched() {
			continue
		}
		rows = append(rows,
			model.JournalRow{
				Date:    inv.Date,
				Entity:  inv.Entity,
				Account: AccountAR,
				Debit:   model.Round2(inv.Amount),
				Ref:     refUnmatched,
			},
			model.JournalRow{
				Date:    inv.Date,
				Entity:  inv.Entity,
				Account: AccountRevenue,
				Credit:  model.Round2(inv.Amount),
				Ref:     refUnmatched,
			},
		)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].Ref != rows[j].Ref {
			return rows[i].Ref < rows[j].Ref
		}
		return rows[i].Account < rows[j].Account
	})
	return rows
}
