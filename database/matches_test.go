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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/minitug/reckon/model"
)

func sampleMatch(createdAt time.Time) model.Match {
	return model.Match{
		MatchID:       "match_1",
		Rule:          model.RulePSPBatch,
		InvoiceIDs:    []string{"inv1", "inv2"},
		BankIDs:       []string{"txn1"},
		MatchedAmount: 1000,
		FeeApplied:    50,
		CreatedAt:     createdAt,
	}
}

func TestRecordMatchesCommitsAtomically(t *testing.T) {
	ds, mock := testDatasource(t)

	createdAt := time.Now()
	m := sampleMatch(createdAt)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE invoices SET match_id").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE bank_transactions SET match_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ds.RecordMatches(context.Background(), []model.Match{m})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMatchesConflictRollsBackWholeRun(t *testing.T) {
	ds, mock := testDatasource(t)

	m := sampleMatch(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Only one of the two invoices is still unmatched.
	mock.ExpectExec("UPDATE invoices SET match_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := ds.RecordMatches(context.Background(), []model.Match{m})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMatchConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMatchesBankClaimConflict(t *testing.T) {
	ds, mock := testDatasource(t)

	m := sampleMatch(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE invoices SET match_id").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE bank_transactions SET match_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := ds.RecordMatches(context.Background(), []model.Match{m})

	assert.True(t, errors.Is(err, ErrMatchConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMatchesEmptyRunIsNoOp(t *testing.T) {
	ds, mock := testDatasource(t)

	err := ds.RecordMatches(context.Background(), nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllMatches(t *testing.T) {
	ds, mock := testDatasource(t)

	createdAt := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"match_id", "rule", "invoice_ids", "bank_ids", "matched_amount", "fee_applied", "created_at",
	}).AddRow("match_1", "rule3", []byte("{inv1,inv2}"), []byte("{txn1}"), 1000.0, 50.0, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM matches").WillReturnRows(rows)

	matches, err := ds.GetAllMatches(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, len(matches))
	assert.Equal(t, []string{"inv1", "inv2"}, matches[0].InvoiceIDs)
	assert.Equal(t, []string{"txn1"}, matches[0].BankIDs)
	assert.Equal(t, 50.0, matches[0].FeeApplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
