package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/minitug/reckon/model"
)

const invoiceColumns = `invoice_id, entity, partner, invoice_no, type, amount, net_amount, vat_amount, currency, date, match_id`

const bankColumns = `transaction_id, entity, partner, memo, direction, amount, currency, date, is_psp_candidate, match_id`

// RecordInvoices bulk-inserts normalized invoices inside one transaction.
func (d Datasource) RecordInvoices(ctx context.Context, invoices []*model.Invoice) (int, error) {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Saving invoices to db")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning invoice insert")
	}
	for _, inv := range invoices {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoices(`+invoiceColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))`,
			inv.InvoiceID, inv.Entity, inv.Partner, inv.InvoiceNo, inv.Type,
			inv.Amount, inv.NetAmount, inv.VATAmount, inv.Currency, inv.Date, inv.MatchID,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrapf(err, "inserting invoice %s", inv.InvoiceID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing invoice insert")
	}
	return len(invoices), nil
}

// RecordBankTransactions bulk-inserts normalized bank rows inside one transaction.
func (d Datasource) RecordBankTransactions(ctx context.Context, txns []*model.BankTransaction) (int, error) {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Saving bank transactions to db")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning bank insert")
	}
	for _, txn := range txns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bank_transactions(`+bankColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))`,
			txn.TransactionID, txn.Entity, txn.Partner, txn.Memo, txn.Direction,
			txn.Amount, txn.Currency, txn.Date, txn.IsPSPCandidate, txn.MatchID,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrapf(err, "inserting bank transaction %s", txn.TransactionID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing bank insert")
	}
	return len(txns), nil
}

// GetAllInvoices retrieves every invoice with its match state.
func (d Datasource) GetAllInvoices(ctx context.Context) ([]*model.Invoice, error) {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Fetching invoices from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		ORDER BY date ASC, invoice_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "fetching invoices")
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// GetUnmatchedInvoices retrieves revenue invoices not referenced by any match,
// most recent first.
func (d Datasource) GetUnmatchedInvoices(ctx context.Context) ([]*model.Invoice, error) {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Fetching unmatched invoices from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE match_id IS NULL AND type = 'revenue'
		ORDER BY date DESC, invoice_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "fetching unmatched invoices")
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// GetAllBankTransactions retrieves every bank row with its match state.
func (d Datasource) GetAllBankTransactions(ctx context.Context) ([]*model.BankTransaction, error) {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Fetching bank transactions from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+bankColumns+`
		FROM bank_transactions
		ORDER BY date ASC, transaction_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "fetching bank transactions")
	}
	defer rows.Close()

	return scanBankTransactions(rows)
}

// GetUnmatchedBankTransactions retrieves inbound bank rows not referenced by
// any match, most recent first.
func (d Datasource) GetUnmatchedBankTransactions(ctx context.Context) ([]*model.BankTransaction, error) {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Fetching unmatched bank transactions from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+bankColumns+`
		FROM bank_transactions
		WHERE match_id IS NULL AND direction = 'in'
		ORDER BY date DESC, transaction_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "fetching unmatched bank transactions")
	}
	defer rows.Close()

	return scanBankTransactions(rows)
}

// HasData reports whether any invoice or bank row is loaded.
func (d Datasource) HasData(ctx context.Context) (bool, error) {
	var count int
	err := d.Conn.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM invoices) + (SELECT COUNT(*) FROM bank_transactions)
	`).Scan(&count)
	if err != nil {
		return false, errors.Wrap(err, "counting records")
	}
	return count > 0, nil
}

// ResetStore clears all records and matches. A full reset is the only way a
// persisted match is ever removed.
func (d Datasource) ResetStore(ctx context.Context) error {
	ctx, span := otel.Tracer("RecordStore").Start(ctx, "Resetting record store")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning reset")
	}
	for _, stmt := range []string{
		`DELETE FROM matches`,
		`DELETE FROM invoices`,
		`DELETE FROM bank_transactions`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "resetting record store")
		}
	}
	return errors.Wrap(tx.Commit(), "committing reset")
}

func scanInvoices(rows *sql.Rows) ([]*model.Invoice, error) {
	var invoices []*model.Invoice
	for rows.Next() {
		inv := &model.Invoice{}
		var matchID sql.NullString
		err := rows.Scan(
			&inv.InvoiceID, &inv.Entity, &inv.Partner, &inv.InvoiceNo, &inv.Type,
			&inv.Amount, &inv.NetAmount, &inv.VATAmount, &inv.Currency, &inv.Date, &matchID,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scanning invoice row")
		}
		inv.MatchID = matchID.String
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanBankTransactions(rows *sql.Rows) ([]*model.BankTransaction, error) {
	var txns []*model.BankTransaction
	for rows.Next() {
		txn := &model.BankTransaction{}
		var matchID sql.NullString
		err := rows.Scan(
			&txn.TransactionID, &txn.Entity, &txn.Partner, &txn.Memo, &txn.Direction,
			&txn.Amount, &txn.Currency, &txn.Date, &txn.IsPSPCandidate, &matchID,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scanning bank transaction row")
		}
		txn.MatchID = matchID.String
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
