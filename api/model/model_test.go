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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileRequestDefaults(t *testing.T) {
	req := &ReconcileRequest{}
	assert.NoError(t, req.ValidateReconcileRequest())

	cfg := req.ToMatchConfig()
	assert.Equal(t, DefaultDateWindowDays, cfg.DateWindowDays)
	assert.Equal(t, DefaultAmountTolerance, cfg.AmountTolerance)
	assert.Equal(t, float64(DefaultPSPFeeAbs), cfg.PSPFeeAbs)
	assert.Equal(t, float64(DefaultPSPFeePct), cfg.PSPFeePct)
	assert.False(t, cfg.Persist)
}

func TestReconcileRequestExplicitZeroBeatsDefault(t *testing.T) {
	window := 0
	tolerance := 0.0
	req := &ReconcileRequest{DateWindowDays: &window, AmountTolerance: &tolerance}
	assert.NoError(t, req.ValidateReconcileRequest())

	cfg := req.ToMatchConfig()
	assert.Equal(t, 0, cfg.DateWindowDays)
	assert.Equal(t, 0.0, cfg.AmountTolerance)
}

func TestReconcileRequestRejectsNegativeTolerances(t *testing.T) {
	tolerance := -1.0
	req := &ReconcileRequest{AmountTolerance: &tolerance}
	assert.Error(t, req.ValidateReconcileRequest())

	pct := 150.0
	req = &ReconcileRequest{PSPFeePct: &pct}
	assert.Error(t, req.ValidateReconcileRequest())
}

func TestInvoiceRecordConversion(t *testing.T) {
	record := &InvoiceRecord{
		InvoiceID: "inv1",
		Entity:    "TUG_NL",
		Partner:   "ACME",
		Type:      "revenue",
		Amount:    1000,
		NetAmount: 800,
		VATAmount: 200,
		Currency:  "EUR",
		Date:      "2024-01-10",
	}

	inv, err := record.ToInvoice()
	assert.NoError(t, err)
	assert.Equal(t, "inv1", inv.InvoiceID)
	assert.Equal(t, 2024, inv.Date.Year())
}

func TestInvoiceRecordValidation(t *testing.T) {
	tests := []struct {
		name   string
		record InvoiceRecord
	}{
		{"missing entity", InvoiceRecord{Type: "revenue", Amount: 1, Date: "2024-01-10"}},
		{"bad type", InvoiceRecord{Entity: "A", Type: "refund", Amount: 1, Date: "2024-01-10"}},
		{"missing amount", InvoiceRecord{Entity: "A", Type: "revenue", Date: "2024-01-10"}},
		{"bad date", InvoiceRecord{Entity: "A", Type: "revenue", Amount: 1, Date: "10.01.2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.record.ToInvoice()
			assert.Error(t, err)
		})
	}
}

func TestBankTransactionRecordConversion(t *testing.T) {
	record := &BankTransactionRecord{
		TransactionID: "txn1",
		Entity:        "TUG_NL",
		Partner:       "Stripe",
		Direction:     "in",
		Amount:        1000,
		Currency:      "EUR",
		Date:          "2024-01-11T00:00:00Z",
	}

	txn, err := record.ToBankTransaction()
	assert.NoError(t, err)
	assert.Equal(t, "txn1", txn.TransactionID)
	assert.Equal(t, "in", txn.Direction)
}

func TestBankTransactionRecordValidation(t *testing.T) {
	record := &BankTransactionRecord{Entity: "A", Direction: "sideways", Amount: 1, Date: "2024-01-11"}
	_, err := record.ToBankTransaction()
	assert.Error(t, err)
}
