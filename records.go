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

	"github.com/minitug/reckon/internal/apierror"
	"github.com/minitug/reckon/model"
)

// IngestInvoices bulk-inserts already-normalized invoices. Records arriving
// without an id get one assigned; everything else is stored as-is.
func (r *Reckon) IngestInvoices(ctx context.Context, invoices []*model.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, apierror.NewAPIError(apierror.ErrInvalidInput, "no invoices supplied", nil)
	}
	for _, inv := range invoices {
		if inv.InvoiceID == "" {
			inv.InvoiceID = model.GenerateUUIDWithSuffix("inv")
		}
	}

	count, err := r.datasource.RecordInvoices(ctx, invoices)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "failed to record invoices", err)
	}
	r.invalidateOverview(ctx)
	return count, nil
}

// IngestBankTransactions bulk-inserts already-normalized bank movements. The
// PSP flag is derived at insert from the PSP-name allow-list; rows flagged
// upstream keep their flag.
func (r *Reckon) IngestBankTransactions(ctx context.Context, txns []*model.BankTransaction) (int, error) {
	if len(txns) == 0 {
		return 0, apierror.NewAPIError(apierror.ErrInvalidInput, "no bank transactions supplied", nil)
	}
	named := NamedPSPDetector()
	for _, txn := range txns {
		if txn.TransactionID == "" {
			txn.TransactionID = model.GenerateUUIDWithSuffix("txn")
		}
		if !txn.IsPSPCandidate {
			txn.IsPSPCandidate = named(txn)
		}
	}

	count, err := r.datasource.RecordBankTransactions(ctx, txns)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "failed to record bank transactions", err)
	}
	r.invalidateOverview(ctx)
	return count, nil
}

// Reset clears every record and match.
func (r *Reckon) Reset(ctx context.Context) error {
	if err := r.datasource.ResetStore(ctx); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to reset store", err)
	}
	r.invalidateOverview(ctx)
	return nil
}

// HasData reports whether any records are loaded.
func (r *Reckon) HasData(ctx context.Context) (bool, error) {
	hasData, err := r.datasource.HasData(ctx)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "failed to check store state", err)
	}
	return hasData, nil
}
