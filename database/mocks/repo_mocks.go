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
package mocks

import (
	"context"

	"github.com/minitug/reckon/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Record methods

func (m *MockDataSource) RecordInvoices(ctx context.Context, invoices []*model.Invoice) (int, error) {
	args := m.Called(ctx, invoices)
	return args.Int(0), args.Error(1)
}

func (m *MockDataSource) RecordBankTransactions(ctx context.Context, txns []*model.BankTransaction) (int, error) {
	args := m.Called(ctx, txns)
	return args.Int(0), args.Error(1)
}

func (m *MockDataSource) GetAllInvoices(ctx context.Context) ([]*model.Invoice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Invoice), args.Error(1)
}

func (m *MockDataSource) GetAllBankTransactions(ctx context.Context) ([]*model.BankTransaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.BankTransaction), args.Error(1)
}

func (m *MockDataSource) GetUnmatchedInvoices(ctx context.Context) ([]*model.Invoice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Invoice), args.Error(1)
}

func (m *MockDataSource) GetUnmatchedBankTransactions(ctx context.Context) ([]*model.BankTransaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.BankTransaction), args.Error(1)
}

func (m *MockDataSource) HasData(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) ResetStore(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Match methods

func (m *MockDataSource) RecordMatches(ctx context.Context, matches []model.Match) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *MockDataSource) GetAllMatches(ctx context.Context) ([]*model.Match, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Match), args.Error(1)
}
