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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minitug/reckon/model"
)

func TestNamedPSPDetector(t *testing.T) {
	detect := NamedPSPDetector()

	tests := []struct {
		name     string
		txn      *model.BankTransaction
		expected bool
	}{
		{"partner exact", &model.BankTransaction{Partner: "Stripe"}, true},
		{"partner mixed case", &model.BankTransaction{Partner: "ADYEN B.V."}, true},
		{"memo mention", &model.BankTransaction{Memo: "checkout.com weekly settlement"}, true},
		{"dot must not widen the match", &model.BankTransaction{Partner: "checkoutXcom"}, false},
		{"unrelated partner", &model.BankTransaction{Partner: "ACME GmbH"}, false},
		{"empty row", &model.BankTransaction{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detect(tt.txn))
		})
	}
}

func TestHeuristicPSPDetector(t *testing.T) {
	detect := HeuristicPSPDetector()

	tests := []struct {
		name     string
		txn      *model.BankTransaction
		expected bool
	}{
		{"allow-list still applies", &model.BankTransaction{Partner: "PayPal Europe"}, true},
		{"settlement wording in memo", &model.BankTransaction{Memo: "weekly payout ref 4711"}, true},
		{"batch wording in memo", &model.BankTransaction{Memo: "BATCH 2024-02"}, true},
		{"mangled partner name", &model.BankTransaction{Partner: "Stirpe"}, true},
		{"short token never fuzzy-matches", &model.BankTransaction{Partner: "Str"}, false},
		{"plain counterparty", &model.BankTransaction{Partner: "Mueller Consulting", Memo: "invoice 2024-17"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detect(tt.txn))
		})
	}
}
