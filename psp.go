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
	"regexp"
	"strings"

	"github.com/minitug/reckon/model"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// PSPDetector decides whether a bank row looks like a payment-service-provider
// settlement. The allow-list detector is used at ingestion to derive
// IsPSPCandidate; the heuristic detector widens the net during rule3 when a
// run opts out of only_psp_names.
type PSPDetector func(txn *model.BankTransaction) bool

// Known PSP names. Settlements from these providers aggregate many invoices
// into one deposit minus a fee.
var pspNames = []string{"stripe", "adyen", "mollie", "paypal", "checkout.com", "braintree"}

var pspNamePattern = regexp.MustCompile(`(?i)stripe|adyen|mollie|paypal|checkout\.com|braintree`)

// settlement wording that shows up in memos when the partner field is blank
// or truncated by the bank feed.
var settlementKeywords = []string{"settlement", "payout", "batch"}

// NamedPSPDetector matches the partner or memo against the PSP allow-list.
func NamedPSPDetector() PSPDetector {
	return func(txn *model.BankTransaction) bool {
		return pspNamePattern.MatchString(txn.Partner) || pspNamePattern.MatchString(txn.Memo)
	}
}

// HeuristicPSPDetector accepts rows the allow-list accepts, plus rows whose
// memo carries settlement wording or whose partner is a near-miss spelling of
// a known PSP name (bank feeds routinely mangle counterparty names).
func HeuristicPSPDetector() PSPDetector {
	named := NamedPSPDetector()
	return func(txn *model.BankTransaction) bool {
		if named(txn) {
			return true
		}
		memo := strings.ToLower(txn.Memo)
		for _, kw := range settlementKeywords {
			if strings.Contains(memo, kw) {
				return true
			}
		}
		for _, token := range strings.Fields(strings.ToLower(txn.Partner)) {
			for _, name := range pspNames {
				if nearMatch(token, name) {
					return true
				}
			}
		}
		return false
	}
}

// nearMatch allows up to two character edits between a partner token and a
// known PSP name.
func nearMatch(token, name string) bool {
	if len(token) < 4 {
		return false
	}
	distance := levenshtein.DistanceForStrings([]rune(token), []rune(name), levenshtein.DefaultOptions)
	return distance <= 2
}
