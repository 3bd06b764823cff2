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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minitug/reckon/database/mocks"
	"github.com/minitug/reckon/model"
)

func TestIngestInvoicesAssignsIDs(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	engine := &Reckon{datasource: mockDS}

	invoices := []*model.Invoice{
		{Entity: "A", Type: model.InvoiceTypeRevenue, Amount: 1000, Date: day("2024-01-10")},
		{InvoiceID: "inv_custom", Entity: "A", Type: model.InvoiceTypeRevenue, Amount: 500, Date: day("2024-01-11")},
	}

	mockDS.On("RecordInvoices", mock.Anything, invoices).Return(2, nil)

	count, err := engine.IngestInvoices(context.Background(), invoices)

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, strings.HasPrefix(invoices[0].InvoiceID, "inv_"))
	assert.Equal(t, "inv_custom", invoices[1].InvoiceID)
	mockDS.AssertExpectations(t)
}

func TestIngestInvoicesRejectsEmptyBatch(t *testing.T) {
	engine := &Reckon{datasource: new(mocks.MockDataSource)}

	_, err := engine.IngestInvoices(context.Background(), nil)

	assert.Error(t, err)
}

func TestIngestBankTransactionsDerivesPSPFlag(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	engine := &Reckon{datasource: mockDS}

	txns := []*model.BankTransaction{
		{Entity: "A", Partner: "Stripe", Direction: model.DirectionIn, Amount: 1000, Date: day("2024-01-11")},
		{Entity: "A", Partner: "Mueller Consulting", Direction: model.DirectionIn, Amount: 120, Date: day("2024-01-12")},
		{Entity: "A", Partner: "Unknown", Direction: model.DirectionIn, Amount: 300, Date: day("2024-01-13"), IsPSPCandidate: true},
	}

	mockDS.On("RecordBankTransactions", mock.Anything, txns).Return(3, nil)

	count, err := engine.IngestBankTransactions(context.Background(), txns)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, txns[0].IsPSPCandidate, "allow-list name must set the flag")
	assert.False(t, txns[1].IsPSPCandidate, "ingestion only consults the allow-list")
	assert.True(t, txns[2].IsPSPCandidate, "upstream flag survives")
	mockDS.AssertExpectations(t)
}

func TestResetClearsStore(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	engine := &Reckon{datasource: mockDS}

	mockDS.On("ResetStore", mock.Anything).Return(nil)

	assert.NoError(t, engine.Reset(context.Background()))
	mockDS.AssertExpectations(t)
}
