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
package model

import "time"

// Invoice types as produced by the upstream ingestion pipeline.
const (
	InvoiceTypeRevenue = "revenue"
	InvoiceTypeExpense = "expense"
)

// Bank transaction directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Invoice is a normalized accrual record. It is immutable once ingested
// except for MatchID, which is set exactly once when a reconciliation run
// persists a match that references it.
type Invoice struct {
	InvoiceID string    `json:"invoice_id"`
	Entity    string    `json:"entity"`
	Partner   string    `json:"partner"`
	InvoiceNo string    `json:"invoice_no"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	NetAmount float64   `json:"net_amount"`
	VATAmount float64   `json:"vat_amount"`
	Currency  string    `json:"currency"`
	Date      time.Time `json:"date"`
	MatchID   string    `json:"match_id,omitempty"`
}

// Matched reports whether the invoice is referenced by a persisted match.
func (i *Invoice) Matched() bool {
	return i.MatchID != ""
}

// Matchable reports whether the invoice participates in reconciliation.
// Expense invoices never match against inbound bank movements.
func (i *Invoice) Matchable() bool {
	return i.Type == InvoiceTypeRevenue && !i.Matched()
}

// BankTransaction is a normalized bank movement. IsPSPCandidate is derived at
// ingestion from the PSP-name allow-list and is immutable afterwards.
type BankTransaction struct {
	TransactionID  string    `json:"transaction_id"`
	Entity         string    `json:"entity"`
	Partner        string    `json:"partner"`
	Memo           string    `json:"memo"`
	Direction      string    `json:"direction"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Date           time.Time `json:"date"`
	IsPSPCandidate bool      `json:"is_psp_candidate"`
	MatchID        string    `json:"match_id,omitempty"`
}

// Matched reports whether the bank row is referenced by a persisted match.
func (b *BankTransaction) Matched() bool {
	return b.MatchID != ""
}

// Matchable reports whether the bank row participates in reconciliation.
// Only inbound movements settle invoices.
func (b *BankTransaction) Matchable() bool {
	return b.Direction == DirectionIn && !b.Matched()
}

// MonthKey buckets a date into its calendar month, the grain all reporting
// rollups use.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
