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
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/minitug/reckon/config"
	"github.com/minitug/reckon/internal/apierror"
	"github.com/minitug/reckon/model"
)

// EntityAll is the wildcard entity filter.
const EntityAll = "ALL"

// Time-series metric labels, kept stable for the dashboard.
const (
	metricRevenue    = "revenue"
	metricCollected  = "matched_revenue"
	metricNetRevenue = "Net revenue"
	metricVAT        = "VAT"
)

const (
	overviewGenKey   = "overview:gen"
	overviewCacheTTL = 30 * time.Second
)

// overviewParams tunes the aggregation. Values come from configuration; the
// entity filter comes from the request.
type overviewParams struct {
	entity               string
	topARLimit           int
	runwayTrailingMonths int
}

// Overview aggregates the reporting view for one entity filter. Filtering
// happens before aggregation. An empty store yields zeroed structures, not an
// error. Responses are cached briefly; any ingest, persist or reset bumps the
// cache generation so stale views never outlive a write.
func (r *Reckon) Overview(ctx context.Context, entity string) (*model.OverviewResponse, error) {
	if entity == "" {
		entity = EntityAll
	}

	cacheKey := r.overviewCacheKey(ctx, entity)
	if r.cache != nil && cacheKey != "" {
		var cached model.OverviewResponse
		// A hit always carries non-nil tables; a miss leaves the struct zeroed.
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil && cached.RevenueTable != nil {
			return &cached, nil
		}
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

	p := overviewParams{
		entity:               entity,
		topARLimit:           config.DefaultTopARLimit,
		runwayTrailingMonths: config.DefaultRunwayTrailingMonths,
	}
	if cnf, err := config.Fetch(); err == nil {
		p.topARLimit = cnf.Reconciliation.TopARLimit
		p.runwayTrailingMonths = cnf.Reconciliation.RunwayTrailingMonths
	}

	overview := buildOverview(invoices, bank, matches, p)

	if r.cache != nil && cacheKey != "" {
		if err := r.cache.Set(ctx, cacheKey, overview, overviewCacheTTL); err != nil {
			logrus.Warnf("failed to cache overview: %v", err)
		}
	}
	return overview, nil
}

// overviewCacheKey embeds the current cache generation so invalidation is a
// single counter bump. Returns "" when caching is unavailable.
func (r *Reckon) overviewCacheKey(ctx context.Context, entity string) string {
	if r.redis == nil {
		return ""
	}
	gen, err := r.redis.Get(ctx, overviewGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ""
	}
	return fmt.Sprintf("overview:%d:%s", gen, entity)
}

// invalidateOverview bumps the cache generation after any write. Old entries
// age out on their TTL.
func (r *Reckon) invalidateOverview(ctx context.Context) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Incr(ctx, overviewGenKey).Err(); err != nil {
		logrus.Warnf("failed to invalidate overview cache: %v", err)
	}
}

// buildOverview is the pure aggregation core. Inputs are snapshots; nothing
// is mutated.
func buildOverview(invoices []*model.Invoice, bank []*model.BankTransaction, matches []*model.Match, p overviewParams) *model.OverviewResponse {
	all := p.entity == EntityAll

	filteredInv := make([]*model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if all || inv.Entity == p.entity {
			filteredInv = append(filteredInv, inv)
		}
	}
	filteredBank := make([]*model.BankTransaction, 0, len(bank))
	for _, txn := range bank {
		if all || txn.Entity == p.entity {
			filteredBank = append(filteredBank, txn)
		}
	}

	revenueTable := rollupRevenue(filteredInv, all)
	cashTable := rollupCash(filteredBank, all)

	kpis := model.OverviewKPIs{Currencies: []string{}}

	// Matches are scoped through their member invoices.
	invByID := make(map[string]*model.Invoice, len(invoices))
	for _, inv := range invoices {
		invByID[inv.InvoiceID] = inv
	}
	for _, m := range matches {
		inScope := all
		if !inScope {
			for _, id := range m.InvoiceIDs {
				if inv, ok := invByID[id]; ok && inv.Entity == p.entity {
					inScope = true
					break
				}
			}
		}
		if inScope {
			kpis.MatchedCount++
			kpis.MatchedAmount += m.MatchedAmount
		}
	}
	kpis.MatchedAmount = model.Round2(kpis.MatchedAmount)

	var totalRevenue float64
	var openInvoices []*model.Invoice
	for _, inv := range filteredInv {
		kpis.VATTotal += inv.VATAmount
		if inv.Type != model.InvoiceTypeRevenue {
			continue
		}
		totalRevenue += inv.Amount
		if !inv.Matched() {
			kpis.UnmatchedAmount += inv.Amount
			openInvoices = append(openInvoices, inv)
		}
	}
	kpis.VATTotal = model.Round2(kpis.VATTotal)
	kpis.UnmatchedAmount = model.Round2(kpis.UnmatchedAmount)

	if totalRevenue > 0 {
		rate := kpis.MatchedAmount / totalRevenue
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		kpis.CollectionRate = rate
	}

	if len(revenueTable) > 0 {
		last := revenueTable[len(revenueTable)-1]
		kpis.GrossProfit = model.Round2(last.Revenue - last.Expense)
	}

	for _, row := range cashTable {
		kpis.CashBalance += row.NetCash
	}
	kpis.CashBalance = model.Round2(kpis.CashBalance)
	kpis.RunwayMonths = runwayMonths(kpis.CashBalance, cashTable, p.runwayTrailingMonths)

	kpis.Currencies = distinctCurrencies(filteredInv, filteredBank)

	return &model.OverviewResponse{
		KPIs:           kpis,
		RevVsCollected: revVsCollectedSeries(filteredInv),
		NetVAT:         netVATSeries(filteredInv),
		RevenueTable:   revenueTable,
		CashTable:      cashTable,
		TopAR:          topAR(openInvoices, p.topARLimit),
	}
}

// rollupRevenue groups revenue/expense accruals per entity per month. With
// the wildcard filter entities collapse into a single "ALL" series.
func rollupRevenue(invoices []*model.Invoice, collapse bool) []model.RevenueRow {
	type key struct{ entity, month string }
	acc := make(map[key]*model.RevenueRow)
	for _, inv := range invoices {
		entity := inv.Entity
		if collapse {
			entity = EntityAll
		}
		k := key{entity, model.MonthKey(inv.Date)}
		row, ok := acc[k]
		if !ok {
			row = &model.RevenueRow{Entity: k.entity, Month: k.month}
			acc[k] = row
		}
		switch inv.Type {
		case model.InvoiceTypeRevenue:
			row.Revenue += inv.Amount
		case model.InvoiceTypeExpense:
			row.Expense += inv.Amount
		}
	}

	rows := make([]model.RevenueRow, 0, len(acc))
	for _, row := range acc {
		row.Revenue = model.Round2(row.Revenue)
		row.Expense = model.Round2(row.Expense)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Entity != rows[j].Entity {
			return rows[i].Entity < rows[j].Entity
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// rollupCash groups inflow/outflow per entity per month.
func rollupCash(bank []*model.BankTransaction, collapse bool) []model.CashRow {
	type key struct{ entity, month string }
	acc := make(map[key]*model.CashRow)
	for _, txn := range bank {
		entity := txn.Entity
		if collapse {
			entity = EntityAll
		}
		k := key{entity, model.MonthKey(txn.Date)}
		row, ok := acc[k]
		if !ok {
			row = &model.CashRow{Entity: k.entity, Month: k.month}
			acc[k] = row
		}
		switch txn.Direction {
		case model.DirectionIn:
			row.Inflow += txn.Amount
		case model.DirectionOut:
			row.Outflow += txn.Amount
		}
	}

	rows := make([]model.CashRow, 0, len(acc))
	for _, row := range acc {
		row.Inflow = model.Round2(row.Inflow)
		row.Outflow = model.Round2(row.Outflow)
		row.NetCash = model.Round2(row.Inflow - row.Outflow)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Entity != rows[j].Entity {
			return rows[i].Entity < rows[j].Entity
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// runwayMonths divides the cash balance by the average monthly net outflow
// over the trailing window. Nil when the trailing months burned no cash; the
// division can never hit zero.
func runwayMonths(cashBalance float64, cashTable []model.CashRow, trailing int) *float64 {
	if len(cashTable) == 0 || trailing <= 0 {
		return nil
	}
	start := len(cashTable) - trailing
	if start < 0 {
		start = 0
	}
	window := cashTable[start:]

	var burn float64
	for _, row := range window {
		if row.NetCash < 0 {
			burn += -row.NetCash
		}
	}
	avg := burn / float64(len(window))
	if avg <= 0 {
		return nil
	}
	runway := model.Round2(cashBalance / avg)
	return &runway
}

// revVsCollectedSeries emits accrual revenue and collected (matched) revenue
// per month: all revenue points first, then all collected points, months
// ascending within each metric.
func revVsCollectedSeries(invoices []*model.Invoice) []model.SeriesPoint {
	accrual := make(map[string]float64)
	collected := make(map[string]float64)
	for _, inv := range invoices {
		if inv.Type != model.InvoiceTypeRevenue {
			continue
		}
		month := model.MonthKey(inv.Date)
		accrual[month] += inv.Amount
		if inv.Matched() {
			collected[month] += inv.Amount
		}
	}

	months := monthsUnion(accrual, collected)
	series := make([]model.SeriesPoint, 0, 2*len(months))
	for _, month := range months {
		series = append(series, model.SeriesPoint{Month: month, Metric: metricRevenue, Amount: model.Round2(accrual[month])})
	}
	for _, month := range months {
		series = append(series, model.SeriesPoint{Month: month, Metric: metricCollected, Amount: model.Round2(collected[month])})
	}
	return series
}

// netVATSeries emits net revenue and VAT per month across all invoice types.
func netVATSeries(invoices []*model.Invoice) []model.SeriesPoint {
	net := make(map[string]float64)
	vat := make(map[string]float64)
	for _, inv := range invoices {
		month := model.MonthKey(inv.Date)
		net[month] += inv.NetAmount
		vat[month] += inv.VATAmount
	}

	months := monthsUnion(net, vat)
	series := make([]model.SeriesPoint, 0, 2*len(months))
	for _, month := range months {
		series = append(series, model.SeriesPoint{Month: month, Metric: metricNetRevenue, Amount: model.Round2(net[month])})
	}
	for _, month := range months {
		series = append(series, model.SeriesPoint{Month: month, Metric: metricVAT, Amount: model.Round2(vat[month])})
	}
	return series
}

func monthsUnion(sets ...map[string]float64) []string {
	seen := make(map[string]bool)
	var months []string
	for _, set := range sets {
		for month := range set {
			if !seen[month] {
				seen[month] = true
				months = append(months, month)
			}
		}
	}
	sort.Strings(months)
	return months
}

// topAR returns open invoices by amount descending, date ascending as
// tie-break, capped at limit.
func topAR(open []*model.Invoice, limit int) []*model.Invoice {
	sorted := make([]*model.Invoice, len(open))
	copy(sorted, open)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].InvoiceID < sorted[j].InvoiceID
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func distinctCurrencies(invoices []*model.Invoice, bank []*model.BankTransaction) []string {
	seen := make(map[string]bool)
	currencies := []string{}
	add := func(currency string) {
		if currency != "" && !seen[currency] {
			seen[currency] = true
			currencies = append(currencies, currency)
		}
	}
	for _, inv := range invoices {
		add(inv.Currency)
	}
	for _, txn := range bank {
		add(txn.Currency)
	}
	sort.Strings(currencies)
	return currencies
}
