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

// GetExceptions buckets every unmatched record exactly once: unmatched
// invoices, plain unmatched bank rows, and PSP candidates awaiting a batch
// match. Rows come back newest first, id as tie-break.
func (r *Reckon) GetExceptions(ctx context.Context) (*model.ExceptionsResponse, error) {
	invoices, err := r.datasource.GetUnmatchedInvoices(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load unmatched invoices", err)
	}
	bank, err := r.datasource.GetUnmatchedBankTransactions(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load unmatched bank transactions", err)
	}

	resp := &model.ExceptionsResponse{
		UnmatchedInvoices: []*model.Invoice{},
		UnmatchedBank:     []*model.BankTransaction{},
		PSPBatch:          []*model.BankTransaction{},
	}
	resp.UnmatchedInvoices = append(resp.UnmatchedInvoices, invoices...)
	for _, txn := range bank {
		if txn.IsPSPCandidate {
			resp.PSPBatch = append(resp.PSPBatch, txn)
		} else {
			resp.UnmatchedBank = append(resp.UnmatchedBank, txn)
		}
	}
	return resp, nil
}
