package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/minitug/reckon/model"
)

// ErrMatchConflict is returned when a run tries to claim a record that a
// concurrent run already matched. The whole commit is rolled back; the caller
// must re-run against the current unmatched set.
var ErrMatchConflict = errors.New("record already claimed by another match")

// RecordMatches commits all matches of one reconciliation run atomically.
// Every referenced invoice and bank row must still be unmatched; otherwise
// nothing is written and ErrMatchConflict is returned.
func (d Datasource) RecordMatches(ctx context.Context, matches []model.Match) error {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Saving matches to db")
	defer span.End()

	if len(matches) == 0 {
		return nil
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning match commit")
	}

	for _, m := range matches {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO matches(match_id, rule, invoice_ids, bank_ids, matched_amount, fee_applied, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.MatchID, m.Rule, pq.Array(m.InvoiceIDs), pq.Array(m.BankIDs),
			m.MatchedAmount, m.FeeApplied, m.CreatedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting match %s", m.MatchID)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE invoices SET match_id = $1 WHERE invoice_id = ANY($2) AND match_id IS NULL`,
			m.MatchID, pq.Array(m.InvoiceIDs),
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "claiming invoices for match %s", m.MatchID)
		}
		if err := checkClaimed(res, len(m.InvoiceIDs)); err != nil {
			_ = tx.Rollback()
			return err
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE bank_transactions SET match_id = $1 WHERE transaction_id = ANY($2) AND match_id IS NULL`,
			m.MatchID, pq.Array(m.BankIDs),
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "claiming bank transactions for match %s", m.MatchID)
		}
		if err := checkClaimed(res, len(m.BankIDs)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return errors.Wrap(tx.Commit(), "committing matches")
}

// GetAllMatches retrieves every persisted match, oldest first.
func (d Datasource) GetAllMatches(ctx context.Context) ([]*model.Match, error) {
	ctx, span := otel.Tracer("Reconciliation").Start(ctx, "Fetching matches from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT match_id, rule, invoice_ids, bank_ids, matched_amount, fee_applied, created_at
		FROM matches
		ORDER BY created_at ASC, match_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "fetching matches")
	}
	defer rows.Close()

	var matches []*model.Match
	for rows.Next() {
		m := &model.Match{}
		err = rows.Scan(
			&m.MatchID, &m.Rule, pq.Array(&m.InvoiceIDs), pq.Array(&m.BankIDs),
			&m.MatchedAmount, &m.FeeApplied, &m.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scanning match row")
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// checkClaimed enforces the at-most-one-match invariant: the guarded UPDATE
// must touch exactly the rows the match references.
func checkClaimed(res sql.Result, want int) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking claimed rows")
	}
	if affected != int64(want) {
		return ErrMatchConflict
	}
	return nil
}
