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
	"math"
	"sort"
	"time"

	"github.com/minitug/reckon/model"
)

// rule3ScanCap bounds the candidate scans per settlement row. Exceeding the
// cap is "no match found", not an error.
const rule3ScanCap = 10_000

// MatchResult is the outcome of one matching pass: the ordered match
// proposals plus the residual unmatched sets. Producing no matches is a
// normal outcome, not a failure.
type MatchResult struct {
	Matches           []model.Match
	UnmatchedInvoices []*model.Invoice
	UnmatchedBank     []*model.BankTransaction
}

// MatchRecords applies the three matching rules, in order, against snapshots
// of the unmatched invoice and bank sets. Each rule consumes its matches
// before the next rule runs. The function is pure: inputs are never mutated
// and persistence is the caller's responsibility.
func MatchRecords(invoices []*model.Invoice, bank []*model.BankTransaction, cfg model.MatchConfig, detect PSPDetector) MatchResult {
	if detect == nil {
		detect = HeuristicPSPDetector()
	}

	openInv := make([]*model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Matchable() {
			openInv = append(openInv, inv)
		}
	}
	openBank := make([]*model.BankTransaction, 0, len(bank))
	for _, txn := range bank {
		if txn.Matchable() {
			openBank = append(openBank, txn)
		}
	}
	sortInvoices(openInv)
	sortBank(openBank)

	takenInv := make(map[string]bool)
	takenBank := make(map[string]bool)

	var matches []model.Match
	matches = append(matches, matchPairs(openInv, openBank, cfg, true, takenInv, takenBank)...)
	matches = append(matches, matchPairs(openInv, openBank, cfg, false, takenInv, takenBank)...)
	matches = append(matches, matchBatches(openInv, openBank, cfg, detect, takenInv, takenBank)...)

	result := MatchResult{Matches: matches}
	for _, inv := range openInv {
		if !takenInv[inv.InvoiceID] {
			result.UnmatchedInvoices = append(result.UnmatchedInvoices, inv)
		}
	}
	for _, txn := range openBank {
		if !takenBank[txn.TransactionID] {
			result.UnmatchedBank = append(result.UnmatchedBank, txn)
		}
	}
	return result
}

// matchPairs implements rule1 (sameEntity) and rule2 (entity constraint
// dropped). For each open invoice the best candidate wins on smallest date
// difference, then smallest amount difference, then lowest bank id.
func matchPairs(invoices []*model.Invoice, bank []*model.BankTransaction, cfg model.MatchConfig, sameEntity bool, takenInv, takenBank map[string]bool) []model.Match {
	rule := model.RuleExactPair
	if !sameEntity {
		rule = model.RuleRelaxedPair
	}

	var matches []model.Match
	for _, inv := range invoices {
		if takenInv[inv.InvoiceID] {
			continue
		}
		var best *model.BankTransaction
		var bestDateDiff time.Duration
		var bestAmountDiff float64
		for _, txn := range bank {
			if takenBank[txn.TransactionID] {
				continue
			}
			if sameEntity && txn.Entity != inv.Entity {
				continue
			}
			dateDiff := absDuration(inv.Date.Sub(txn.Date))
			if dateDiff > cfg.DateWindow() {
				continue
			}
			amountDiff := model.Round2(math.Abs(inv.Amount - txn.Amount))
			if amountDiff > cfg.AmountTolerance {
				continue
			}
			if best == nil || betterCandidate(dateDiff, amountDiff, txn.TransactionID, bestDateDiff, bestAmountDiff, best.TransactionID) {
				best = txn
				bestDateDiff = dateDiff
				bestAmountDiff = amountDiff
			}
		}
		if best == nil {
			continue
		}
		takenInv[inv.InvoiceID] = true
		takenBank[best.TransactionID] = true
		matches = append(matches, model.Match{
			MatchID:       model.GenerateUUIDWithSuffix("match"),
			Rule:          rule,
			InvoiceIDs:    []string{inv.InvoiceID},
			BankIDs:       []string{best.TransactionID},
			MatchedAmount: model.Round2(inv.Amount),
			CreatedAt:     time.Now(),
		})
	}
	return matches
}

// matchBatches implements rule3: for each PSP settlement row, greedily
// accumulate same-entity invoices in ascending date order until the gross sum
// net of the fee lands within tolerance of the settlement amount. The first
// satisfying subset wins; the scan cap keeps pathological inputs bounded.
func matchBatches(invoices []*model.Invoice, bank []*model.BankTransaction, cfg model.MatchConfig, detect PSPDetector, takenInv, takenBank map[string]bool) []model.Match {
	var matches []model.Match
	for _, txn := range bank {
		if takenBank[txn.TransactionID] || !pspEligible(txn, cfg, detect) {
			continue
		}

		var picked []*model.Invoice
		var gross float64
		var fee float64
		found := false
		scans := 0
		for _, inv := range invoices {
			scans++
			if scans > rule3ScanCap {
				break
			}
			if takenInv[inv.InvoiceID] || inv.Entity != txn.Entity {
				continue
			}
			if absDuration(inv.Date.Sub(txn.Date)) > cfg.DateWindow() {
				continue
			}
			tentative := model.Round2(gross + inv.Amount)
			tentativeFee := cfg.Fee(tentative)
			if model.Round2(tentative-tentativeFee) > txn.Amount+cfg.AmountTolerance {
				continue
			}
			picked = append(picked, inv)
			gross = tentative
			fee = tentativeFee
			if math.Abs(model.Round2(gross-fee)-txn.Amount) <= cfg.AmountTolerance {
				found = true
				break
			}
		}
		if !found || len(picked) == 0 {
			continue
		}

		invoiceIDs := make([]string, len(picked))
		for i, inv := range picked {
			takenInv[inv.InvoiceID] = true
			invoiceIDs[i] = inv.InvoiceID
		}
		takenBank[txn.TransactionID] = true
		matches = append(matches, model.Match{
			MatchID:       model.GenerateUUIDWithSuffix("match"),
			Rule:          model.RulePSPBatch,
			InvoiceIDs:    invoiceIDs,
			BankIDs:       []string{txn.TransactionID},
			MatchedAmount: model.Round2(gross - fee),
			FeeApplied:    fee,
			CreatedAt:     time.Now(),
		})
	}
	return matches
}

// pspEligible gates rule3. With only_psp_names the ingestion flag is
// authoritative; without it the heuristic detector may also qualify a row.
func pspEligible(txn *model.BankTransaction, cfg model.MatchConfig, detect PSPDetector) bool {
	if txn.IsPSPCandidate {
		return true
	}
	if cfg.OnlyPSPNames {
		return false
	}
	return detect(txn)
}

func betterCandidate(dateDiff time.Duration, amountDiff float64, id string, bestDateDiff time.Duration, bestAmountDiff float64, bestID string) bool {
	if dateDiff != bestDateDiff {
		return dateDiff < bestDateDiff
	}
	if amountDiff != bestAmountDiff {
		return amountDiff < bestAmountDiff
	}
	return id < bestID
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// sortInvoices orders by date then id so greedy passes are deterministic and
// rule3 scans invoices in ascending date order.
func sortInvoices(invoices []*model.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		if !invoices[i].Date.Equal(invoices[j].Date) {
			return invoices[i].Date.Before(invoices[j].Date)
		}
		return invoices[i].InvoiceID < invoices[j].InvoiceID
	})
}

func sortBank(bank []*model.BankTransaction) {
	sort.SliceStable(bank, func(i, j int) bool {
		if !bank[i].Date.Equal(bank[j].Date) {
			return bank[i].Date.Before(bank[j].Date)
		}
		return bank[i].TransactionID < bank[j].TransactionID
	})
}
