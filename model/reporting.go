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

// OverviewKPIs are the headline numbers on the dashboard.
type OverviewKPIs struct {
	MatchedCount    int      `json:"matched_count"`
	MatchedAmount   float64  `json:"matched_amount"`
	UnmatchedAmount float64  `json:"unmatched_amount"`
	RunwayMonths    *float64 `json:"runway_months"`
	VATTotal        float64  `json:"vat_total"`
	GrossProfit     float64  `json:"gross_profit"`
	CashBalance     float64  `json:"cash_balance"`
	CollectionRate  float64  `json:"collection_rate"`
	Currencies      []string `json:"currencies"`
}

// SeriesPoint is one (month, metric) row of a reporting time series.
type SeriesPoint struct {
	Month  string  `json:"month"`
	Metric string  `json:"metric"`
	Amount float64 `json:"amount"`
}

// RevenueRow is a per-entity per-month accrual rollup.
type RevenueRow struct {
	Entity  string  `json:"entity"`
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
}

// CashRow is a per-entity per-month cash rollup.
type CashRow struct {
	Entity  string  `json:"entity"`
	Month   string  `json:"month"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	NetCash float64 `json:"net_cash"`
}

// OverviewResponse is the full reporting overview for one entity filter.
type OverviewResponse struct {
	KPIs           OverviewKPIs  `json:"kpis"`
	RevVsCollected []SeriesPoint `json:"rev_vs_collected"`
	NetVAT         []SeriesPoint `json:"net_vat"`
	RevenueTable   []RevenueRow  `json:"revenue_table"`
	CashTable      []CashRow     `json:"cash_table"`
	TopAR          []*Invoice    `json:"top_ar"`
}

// ExceptionsResponse buckets every unmatched record exactly once.
type ExceptionsResponse struct {
	UnmatchedInvoices []*Invoice         `json:"unmatched_invoices"`
	UnmatchedBank     []*BankTransaction `json:"unmatched_bank"`
	PSPBatch          []*BankTransaction `json:"psp_batch"`
}

// JournalRow is one side of a double-entry posting. Exactly one of Debit and
// Credit is non-zero.
type JournalRow struct {
	Date    time.Time `json:"date"`
	Entity  string    `json:"entity"`
	Account string    `json:"account"`
	Debit   float64   `json:"debit"`
	Credit  float64   `json:"credit"`
	Ref     string    `json:"ref"`
}
