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

import (
	"errors"
	"time"
)

// Matching rules, applied in this order. Each rule only sees records the
// previous rules left unmatched.
const (
	RuleExactPair   = "rule1" // same entity, date window, amount tolerance
	RuleRelaxedPair = "rule2" // rule1 without the entity constraint
	RulePSPBatch    = "rule3" // many invoices against one PSP settlement, net of fee
)

// Match associates one or more invoices with one or more bank rows. Rule1 and
// rule2 matches are always 1:1; rule3 holds many invoice ids against a single
// settlement row. Persisted matches are append-only.
type Match struct {
	MatchID       string    `json:"match_id"`
	Rule          string    `json:"rule"`
	InvoiceIDs    []string  `json:"invoice_ids"`
	BankIDs       []string  `json:"bank_ids"`
	MatchedAmount float64   `json:"matched_amount"`
	FeeApplied    float64   `json:"fee_applied"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchConfig carries the tolerances for one reconciliation run.
type MatchConfig struct {
	DateWindowDays  int     `json:"date_window_days"`
	AmountTolerance float64 `json:"amount_tolerance"`
	PSPFeeAbs       float64 `json:"psp_fee_abs"`
	PSPFeePct       float64 `json:"psp_fee_pct"`
	OnlyPSPNames    bool    `json:"only_psp_names"`
	Persist         bool    `json:"persist"`
}

// Validate rejects malformed tolerances before any matching runs.
func (c MatchConfig) Validate() error {
	if c.DateWindowDays < 0 {
		return errors.New("date_window_days must be non-negative")
	}
	if c.AmountTolerance < 0 {
		return errors.New("amount_tolerance must be non-negative")
	}
	if c.PSPFeeAbs < 0 {
		return errors.New("psp_fee_abs must be non-negative")
	}
	if c.PSPFeePct < 0 || c.PSPFeePct > 100 {
		return errors.New("psp_fee_pct must be between 0 and 100")
	}
	return nil
}

// DateWindow returns the window as a duration.
func (c MatchConfig) DateWindow() time.Duration {
	return time.Duration(c.DateWindowDays) * 24 * time.Hour
}

// Fee returns the PSP fee for a gross invoice sum: the larger of the absolute
// floor and the percentage cut.
func (c MatchConfig) Fee(gross float64) float64 {
	fee := gross * c.PSPFeePct / 100
	if c.PSPFeeAbs > fee {
		fee = c.PSPFeeAbs
	}
	return Round2(fee)
}

// RecentMatch is the summary projection of a proposed match.
type RecentMatch struct {
	Rule       string   `json:"rule"`
	MatchID    string   `json:"match_id"`
	InvoiceIDs []string `json:"invoice_ids"`
	BankIDs    []string `json:"bank_ids"`
}

// MatchSummary is the result of one reconciliation run.
type MatchSummary struct {
	TotalRule1 int           `json:"total_rule1"`
	TotalRule2 int           `json:"total_rule2"`
	TotalRule3 int           `json:"total_rule3"`
	Recent     []RecentMatch `json:"recent"`
}
