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

package database

import (
	"context"

	"github.com/minitug/reckon/model"
)

// IDataSource defines the interface for record store operations, grouping related functionalities.
type IDataSource interface {
	record // Interface for invoice and bank record operations
	match  // Interface for match persistence operations
}

// record defines methods for the normalized invoice and bank-transaction sets.
type record interface {
	RecordInvoices(ctx context.Context, invoices []*model.Invoice) (int, error)                      // Bulk-inserts normalized invoices
	RecordBankTransactions(ctx context.Context, txns []*model.BankTransaction) (int, error)          // Bulk-inserts normalized bank rows
	GetAllInvoices(ctx context.Context) ([]*model.Invoice, error)                                    // Retrieves every invoice with match state
	GetAllBankTransactions(ctx context.Context) ([]*model.BankTransaction, error)                    // Retrieves every bank row with match state
	GetUnmatchedInvoices(ctx context.Context) ([]*model.Invoice, error)                              // Retrieves matchable invoices, newest first
	GetUnmatchedBankTransactions(ctx context.Context) ([]*model.BankTransaction, error)              // Retrieves matchable bank rows, newest first
	HasData(ctx context.Context) (bool, error)                                                       // Reports whether any records are loaded
	ResetStore(ctx context.Context) error                                                            // Clears all records and matches
}

// match defines methods for persisted reconciliation matches.
type match interface {
	RecordMatches(ctx context.Context, matches []model.Match) error // Commits a run's matches atomically
	GetAllMatches(ctx context.Context) ([]*model.Match, error)      // Retrieves all persisted matches
}
